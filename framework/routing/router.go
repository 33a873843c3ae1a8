// Package routing serves HTTP through chi, giving every request its own
// container scope.
package routing

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/logos/framework/container"
)

// RequestName is the name under which Scoped exposes the current
// *http.Request.
const RequestName = "http.request"

// Router wraps chi.Router.
type Router struct {
	mux chi.Router
}

// New creates a Router with request IDs, panic recovery, request logging and
// a per-request scope. opts are applied to every derived scope.
func New(logger *slog.Logger, opts ...container.DeriveOption) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(Scoped(opts...))
	return &Router{mux: r}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)  { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc) { r.mux.Post(pattern, h) }

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's prefix.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Prefix creates a sub-router mounted under pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Scoped derives a child of the scope current in the request context, seeds
// it with the request under RequestName and activates it for the handler.
// Cloneable values cached in the parent are copied, so handlers never share
// them.
func Scoped(opts ...container.DeriveOption) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			derive := append([]container.DeriveOption{
				container.WithOverrides(map[string]any{RequestName: req}),
			}, opts...)
			scope := container.Current(req.Context()).Derive(derive...)
			ctx := container.Activate(req.Context(), scope)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// Logger logs one line per request at info level.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.InfoContext(req.Context(), "request",
					"method", req.Method,
					"path", req.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(req.Context()),
				)
			}()
			next.ServeHTTP(ww, req)
		})
	}
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.Server.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
