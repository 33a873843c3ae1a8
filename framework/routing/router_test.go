package routing_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/logos/framework/container"
	"github.com/km-arc/logos/framework/container/containertest"
	"github.com/km-arc/logos/framework/logging"
	"github.com/km-arc/logos/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router *routing.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// journal is a per-request buffer.
type journal struct {
	entries []string
}

func (j *journal) Clone() any {
	return &journal{entries: append([]string(nil), j.entries...)}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r := routing.New(logging.Nop())
	r.Get("/users", okHandler)
	r.Post("/users", okHandler)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/users", http.StatusOK},
		{http.MethodPost, "/users", http.StatusOK},
		{http.MethodPut, "/users", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, r, tt.method, tt.path).Code)
		})
	}
}

func TestRouter_PrefixAndParam(t *testing.T) {
	r := routing.New(logging.Nop())
	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(chi.URLParam(req, "id")))
		})
	})

	rr := do(t, r, http.MethodGet, "/api/v1/users/42")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "42", rr.Body.String())
}

func TestRouter_GroupMiddleware(t *testing.T) {
	r := routing.New(logging.Nop())
	r.Get("/public", okHandler)
	r.Group(func(protected *routing.Router) {
		protected.Middleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})
		})
		protected.Get("/profile", okHandler)
	})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/public").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/profile").Code)
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := routing.New(logging.Nop())
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, do(t, r, http.MethodGet, "/panic").Code)
}

func TestLogger_WritesRequestLine(t *testing.T) {
	var logs bytes.Buffer
	r := routing.New(logging.New(logging.Config{Level: slog.LevelInfo, Format: logging.FormatJSON, Output: &logs}))
	r.Get("/hello", okHandler)

	do(t, r, http.MethodGet, "/hello")

	assert.Contains(t, logs.String(), `"path":"/hello"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

// ── Scoped ───────────────────────────────────────────────────────────────────

func TestScoped_ExposesRequest(t *testing.T) {
	containertest.NewApplication(t, nil, nil)

	r := routing.New(logging.Nop())
	r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
		got, err := container.Resolve[*http.Request](req.Context(), routing.RequestName)
		require.NoError(t, err)
		_, _ = w.Write([]byte(got.URL.Path))
	})

	assert.Equal(t, "/whoami", do(t, r, http.MethodGet, "/whoami").Body.String())
}

func TestScoped_RequestScopeIsActive(t *testing.T) {
	containertest.NewApplication(t, nil, nil)
	root := container.Instance().Root()

	var scopes []*container.Scope
	r := routing.New(logging.Nop())
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		active, ok := container.Active(req.Context())
		require.True(t, ok)
		scopes = append(scopes, active)
	})

	do(t, r, http.MethodGet, "/")
	do(t, r, http.MethodGet, "/")

	require.Len(t, scopes, 2)
	assert.NotSame(t, scopes[0], scopes[1])
	assert.NotSame(t, root, scopes[0])
	assert.False(t, root.Has(routing.RequestName))
}

func TestScoped_ClonesParentValues(t *testing.T) {
	shared := &journal{entries: []string{"boot"}}
	containertest.RegisterModule(t, container.ModuleOf("routing.journal", container.NewRegistry(
		map[string]container.Resource{"request.journal": container.Parameter(shared)},
	)))
	containertest.NewApplication(t, []string{"routing.journal"}, nil)

	// Warm the root cache so requests derive from it.
	_, err := container.Get(context.Background(), "request.journal")
	require.NoError(t, err)

	var seen []*journal
	r := routing.New(logging.Nop())
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		j, err := container.Resolve[*journal](req.Context(), "request.journal")
		require.NoError(t, err)
		j.entries = append(j.entries, req.URL.Query().Get("n"))
		seen = append(seen, j)
	})

	do(t, r, http.MethodGet, "/?n=1")
	do(t, r, http.MethodGet, "/?n=2")

	require.Len(t, seen, 2)
	assert.Equal(t, []string{"boot", "1"}, seen[0].entries)
	assert.Equal(t, []string{"boot", "2"}, seen[1].entries)
	assert.Equal(t, []string{"boot"}, shared.entries)
}

func TestScoped_ExtraRegistry(t *testing.T) {
	containertest.NewApplication(t, nil, nil)

	r := routing.New(logging.Nop(), container.WithRegistry(container.NewRegistry(map[string]container.Resource{
		"http.greeting": container.Parameter("hello"),
	})))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		greeting, err := container.Resolve[string](req.Context(), "http.greeting")
		require.NoError(t, err)
		_, _ = w.Write([]byte(greeting))
	})

	assert.Equal(t, "hello", do(t, r, http.MethodGet, "/").Body.String())
	assert.False(t, container.Has(context.Background(), "http.greeting"))
}
