// Package containertest builds throwaway applications for tests.
//
//	func TestCheckout(t *testing.T) {
//	    containertest.RegisterModule(t, container.ModuleOf("shop", shopRegistry))
//	    app := containertest.NewApplication(t, []string{"shop"}, nil)
//	    svc := containertest.RequireGet[*shop.Checkout](t, context.Background(), "shop.checkout")
//	    ...
//	}
//
// Tests using this package share the process-wide singleton and must not
// call t.Parallel.
package containertest

import (
	"context"

	"github.com/km-arc/logos/framework/container"
	"github.com/km-arc/logos/framework/container/internal/testhook"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

// Reset discards any existing application singleton now and again when the
// test ends, so code under test may call container.NewApplication itself.
func Reset(tb TB) {
	tb.Helper()

	testhook.ResetApplication()
	tb.Cleanup(testhook.ResetApplication)
}

// NewApplication discards any existing singleton and creates a new one that
// is discarded again when the test ends.
func NewApplication(tb TB, modules []string, configuration map[string]any, opts ...container.Option) *container.Application {
	tb.Helper()

	Reset(tb)

	app, err := container.NewApplication(modules, configuration, opts...)
	if err != nil {
		tb.Fatalf("failed to create application: %v", err)
	}
	return app
}

// RegisterModule registers m for the duration of the test.
func RegisterModule(tb TB, m container.Module) {
	tb.Helper()

	container.RegisterModule(m)
	tb.Cleanup(func() { testhook.UnregisterModule(m.Name()) })
}

// RequireGet resolves name in the current scope of ctx and fails the test
// on error or type mismatch.
func RequireGet[T any](tb TB, ctx context.Context, name string) T {
	tb.Helper()

	value, err := container.Resolve[T](ctx, name)
	if err != nil {
		tb.Fatalf("failed to resolve %s: %v", name, err)
	}
	return value
}
