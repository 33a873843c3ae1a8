package container

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

// ContextName is the name under which the root scope exposes itself.
const ContextName = "context"

type activeKey struct{}

// frame is one entry of the active-scope stack carried by a context.Context.
// Frames are never mutated, so each goroutine sees only the scopes activated
// on the context it was handed.
type frame struct {
	scope  *Scope
	parent *frame
}

// Activate returns a copy of ctx in which s is the innermost active scope.
// Dropping the returned context deactivates s.
func Activate(ctx context.Context, s *Scope) context.Context {
	parent, _ := ctx.Value(activeKey{}).(*frame)
	return context.WithValue(ctx, activeKey{}, &frame{scope: s, parent: parent})
}

// Within runs fn with s active. s is not active in ctx before or after the
// call, whether fn returns normally, returns an error or panics.
//
//	err := container.Within(ctx, container.Current(ctx).Derive(), func(ctx context.Context) error {
//	    buf, err := container.Resolve[*Buffer](ctx, "request.buffer")
//	    ...
//	})
func Within(ctx context.Context, s *Scope, fn func(ctx context.Context) error) error {
	return fn(Activate(ctx, s))
}

// Active returns the innermost scope activated on ctx.
func Active(ctx context.Context) (*Scope, bool) {
	f, ok := ctx.Value(activeKey{}).(*frame)
	if !ok || f == nil {
		return nil, false
	}
	return f.scope, true
}

// Current returns the innermost active scope, or the root scope of the
// application when none is active.
func Current(ctx context.Context) *Scope {
	if s, ok := Active(ctx); ok {
		return s
	}
	if app := Instance(); app != nil {
		return app.Root()
	}
	return detachedRoot()
}

var (
	detachedOnce  sync.Once
	detachedScope *Scope
)

// detachedRoot serves lookups made before any application exists.
func detachedRoot() *Scope {
	detachedOnce.Do(func() {
		detachedScope = NewScope(NewStack(), nil)
	})
	return detachedScope
}

// ambientResolver is what a registry hands to its resources: the ambient
// scope, or the registry itself when there is neither an active scope nor an
// application.
func ambientResolver(ctx context.Context, fallback Resolver) Resolver {
	if s, ok := Active(ctx); ok {
		return s
	}
	if app := Instance(); app != nil {
		return app.Root()
	}
	return fallback
}

// Get resolves name in the current scope.
func Get(ctx context.Context, name string) (any, error) {
	return Current(ctx).Get(ctx, name)
}

// Has reports whether name is known to the current scope.
func Has(ctx context.Context, name string) bool {
	return Current(ctx).Has(name)
}

// Find returns the sorted names known to the current scope that match
// pattern at their start.
func Find(ctx context.Context, pattern string) ([]string, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, newError(ErrCodeConfiguration, pattern, "invalid pattern", err)
	}
	var out []string
	for _, name := range Current(ctx).Names() {
		if re.MatchString(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Resolve resolves name in the current scope and asserts it to T.
//
//	mailer, err := container.Resolve[*mail.SMTP](ctx, "mailer")
func Resolve[T any](ctx context.Context, name string) (T, error) {
	var zero T
	value, err := Get(ctx, name)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, errTypeMismatch(name, fmt.Sprintf("%T", &zero)[1:], value)
	}
	return typed, nil
}
