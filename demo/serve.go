package demo

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/km-arc/logos/framework/container"
	gohttp "github.com/km-arc/logos/framework/http"
	"github.com/km-arc/logos/framework/routing"
	"github.com/km-arc/logos/framework/validation"
)

const (
	shutdownTimeout = 5 * time.Second
	defaultPort     = 8000
	maxGreetings    = 10

	// tokenKey names the env value guarding POST routes.
	tokenKey = "DEMO_TOKEN"
)

// Journal records what happened in one scope. Request scopes receive a copy
// of the server's journal.
type Journal struct {
	mu      sync.Mutex
	Owner   string
	entries []string
}

func (j *Journal) Add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func (j *Journal) Clone() any {
	return &Journal{Owner: j.Owner, entries: j.Entries()}
}

type journalFactory struct{}

func (journalFactory) Create(_ context.Context, params map[string]any) (any, error) {
	return &Journal{Owner: appName(params["configuration"])}, nil
}

// Serve runs an HTTP server until its context is cancelled.
type Serve struct {
	addr   string
	token  string
	logger *slog.Logger
}

func newServe(_ context.Context, params map[string]any) (any, error) {
	cfg, ok := params["configuration"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("demo: configuration parameter is %T, want map[string]any", params["configuration"])
	}
	port := defaultPort
	if app, ok := cfg["app"].(map[string]any); ok {
		if p, ok := app["port"].(int); ok {
			port = p
		}
	}
	values, _ := cfg["values"].(map[string]any)
	token, _ := values[tokenKey].(string)
	return &Serve{addr: ":" + strconv.Itoa(port), token: token, logger: slog.Default()}, nil
}

// Routes returns the server's handler.
//
//	GET  /api/resources?pattern=  names known to the request scope
//	GET  /api/resources/{name}    resolves one name and reports its type
//	GET  /api/journal             the request's copy of the server journal
//	POST /api/greetings           greets {"name", "times", "style", "formal", "ref"}
//
// POST routes require "Authorization: Bearer $DEMO_TOKEN" when DEMO_TOKEN is
// set.
func (s *Serve) Routes() *routing.Router {
	r := routing.New(s.logger)

	r.Prefix("/api", func(api *routing.Router) {
		api.Get("/resources", s.listResources)
		api.Get("/resources/{name}", s.showResource)
		api.Get("/journal", s.showJournal)

		api.Group(func(guarded *routing.Router) {
			guarded.Middleware(s.requireToken)
			guarded.Post("/greetings", s.greet)
		})
	})

	return r
}

func (s *Serve) listResources(w http.ResponseWriter, req *http.Request) {
	res := gohttp.NewResponse(w)
	names, err := container.Find(req.Context(), gohttp.NewRequest(req).Query("pattern"))
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}
	res.Success(names)
}

func (s *Serve) showResource(w http.ResponseWriter, req *http.Request) {
	request, res := gohttp.NewRequest(req), gohttp.NewResponse(w)
	name := request.RouteParam("name")
	value, err := request.Resource(name)
	if err != nil {
		res.Problem(err)
		return
	}
	res.Success(map[string]any{"name": name, "type": fmt.Sprintf("%T", value)})
}

func (s *Serve) showJournal(w http.ResponseWriter, req *http.Request) {
	request, res := gohttp.NewRequest(req), gohttp.NewResponse(w)
	journal, err := container.Resolve[*Journal](req.Context(), JournalName)
	if err != nil {
		res.Problem(err)
		return
	}
	entry := request.Method() + " " + request.Path()
	if note := request.Header("X-Journal-Note"); note != "" {
		entry += " (" + note + ")"
	}
	journal.Add(entry)
	res.Success(map[string]any{"owner": journal.Owner, "entries": journal.Entries()})
}

var greetingRules = validation.Rules{
	"name":   "required|not_in:admin,root|regex:^[A-Za-z][A-Za-z '-]*$",
	"times":  "sometimes|integer",
	"style":  "sometimes|in:plain,shout",
	"formal": "sometimes|boolean",
	"ref":    "sometimes|alpha_dash",
}

func (s *Serve) greet(w http.ResponseWriter, req *http.Request) {
	request, res := gohttp.NewRequest(req), gohttp.NewResponse(w)

	var body map[string]any
	if err := request.Bind(&body); err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}
	input := make(map[string]string, len(greetingRules))
	for field := range greetingRules {
		if v, ok := body[field]; ok && v != nil {
			input[field] = fmt.Sprint(v)
		}
	}

	v := validation.Make(input, greetingRules)
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	greeting, err := container.Resolve[string](req.Context(), GreetingName)
	if err != nil {
		res.Problem(err)
		return
	}

	times := 1
	if input["times"] != "" {
		times, _ = strconv.Atoi(input["times"])
	}
	times = min(max(times, 1), maxGreetings)

	line := fmt.Sprintf("%s, %s", greeting, input["name"])
	switch strings.ToLower(input["formal"]) {
	case "true", "1", "yes":
		line += "."
	default:
		line += "!"
	}
	if input["style"] == "shout" {
		line = strings.ToUpper(line)
	}

	lines := make([]string, times)
	for i := range lines {
		lines[i] = line
	}
	data := map[string]any{"lines": lines}
	if ref := input["ref"]; ref != "" {
		data["ref"] = ref
	}
	res.Success(data)
}

func (s *Serve) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		given := gohttp.NewRequest(req).BearerToken()
		if s.token != "" && subtle.ConstantTimeCompare([]byte(given), []byte(s.token)) != 1 {
			gohttp.NewResponse(w).Error(http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (s *Serve) Execute(ctx context.Context) error {
	journal, err := container.Resolve[*Journal](ctx, JournalName)
	if err != nil {
		return err
	}
	journal.Add("serve " + s.addr)

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Serve) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.InfoContext(ctx, "listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func appName(configuration any) string {
	cfg, _ := configuration.(map[string]any)
	app, _ := cfg["app"].(map[string]any)
	name, _ := app["name"].(string)
	return name
}
