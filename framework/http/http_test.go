package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/logos/framework/container"
	"github.com/km-arc/logos/framework/container/containertest"
	gohttp "github.com/km-arc/logos/framework/http"
	"github.com/km-arc/logos/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

// ── Request ──────────────────────────────────────────────────────────────────

func TestRequest_Bind(t *testing.T) {
	raw := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alice"}`))

	var body struct {
		Name string `json:"name"`
	}
	require.NoError(t, gohttp.NewRequest(raw).Bind(&body))
	assert.Equal(t, "Alice", body.Name)
}

func TestRequest_BindEmptyBody(t *testing.T) {
	raw := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))

	var body map[string]any
	assert.EqualError(t, gohttp.NewRequest(raw).Bind(&body), "empty request body")
}

func TestRequest_Inputs(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/search?q=logos", nil)
	raw.Header.Set("Authorization", "Bearer secret")
	raw.Header.Set("X-Trace", "abc")
	req := gohttp.NewRequest(raw)

	assert.Equal(t, "logos", req.Query("q"))
	assert.Equal(t, "10", req.Query("limit", "10"))
	assert.Equal(t, "secret", req.BearerToken())
	assert.Equal(t, "abc", req.Header("X-Trace"))
	assert.Equal(t, http.MethodGet, req.Method())
	assert.Equal(t, "/search", req.Path())
}

func TestRequest_BearerTokenMissing(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/", nil)
	raw.Header.Set("Authorization", "Basic abc")

	assert.Empty(t, gohttp.NewRequest(raw).BearerToken())
}

func TestRequest_RouteParam(t *testing.T) {
	mux := chi.NewRouter()
	var got string
	mux.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		got = gohttp.NewRequest(r).RouteParam("id")
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil))
	assert.Equal(t, "7", got)
}

func TestRequest_ResourceFromActiveScope(t *testing.T) {
	containertest.NewApplication(t, nil, nil)
	scope := container.Current(context.Background()).Derive(
		container.WithOverrides(map[string]any{"tenant": "acme"}),
	)

	raw := httptest.NewRequest(http.MethodGet, "/", nil)
	raw = raw.WithContext(container.Activate(raw.Context(), scope))
	req := gohttp.NewRequest(raw)

	got, err := req.Resource("tenant")
	require.NoError(t, err)
	assert.Equal(t, "acme", got)
	assert.Same(t, scope, req.Scope())
}

func TestRequest_ScopeFallsBackToRoot(t *testing.T) {
	app := containertest.NewApplication(t, nil, nil)

	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Same(t, app.Root(), req.Scope())
}

// ── Response ─────────────────────────────────────────────────────────────────

func TestResponse_Success(t *testing.T) {
	res, rr := newResponse(t)
	res.Success(map[string]any{"id": float64(1)})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"data": map[string]any{"id": float64(1)}}, decodeJSON(t, rr))
}

func TestResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		send    func(*gohttp.Response)
		status  int
		message string
	}{
		{"error", func(r *gohttp.Response) { r.Error(http.StatusTeapot, "short and stout") }, http.StatusTeapot, "short and stout"},
		{"not found default", func(r *gohttp.Response) { r.NotFound() }, http.StatusNotFound, "Not found."},
		{"not found custom", func(r *gohttp.Response) { r.NotFound("no user") }, http.StatusNotFound, "no user"},
		{"server error default", func(r *gohttp.Response) { r.ServerError() }, http.StatusInternalServerError, "Server Error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.send(res)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, decodeJSON(t, rr)["message"])
		})
	}
}

func TestResponse_ValidationError(t *testing.T) {
	v := validation.Make(map[string]string{}, validation.Rules{"name": "required"})
	require.True(t, v.Fails())

	res, rr := newResponse(t)
	res.ValidationError(v.Errors())

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, map[string]any{
		"errors": map[string]any{"name": []any{"The name argument is required."}},
	}, decodeJSON(t, rr))
}

func TestResponse_Problem(t *testing.T) {
	containertest.NewApplication(t, nil, nil)
	_, notRegistered := container.Get(context.Background(), "missing.service")
	require.Error(t, notRegistered)

	res, rr := newResponse(t)
	res.Problem(notRegistered)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	res, rr = newResponse(t)
	res.Problem(errors.New("database down"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "database down", decodeJSON(t, rr)["message"])
}
