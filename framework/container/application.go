package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/km-arc/logos/framework/container/internal/testhook"
)

// Well-known names exposed by every application.
const (
	ModulesName       = "app.modules"
	ConfigurationName = "app.configuration"
	ArgumentsName     = "app.arguments"
	OutputName        = "app.output"
	CommandName       = "app.command"
)

// Executor is the capability Run expects from the app.command resource.
type Executor interface {
	Execute(ctx context.Context) error
}

// Application is the process-wide layered registry assembled from the
// module list. Exactly one may be created per process.
type Application struct {
	modules       []string
	configuration map[string]any
	arguments     []string
	output        io.Writer
	logger        *slog.Logger

	assembleOnce sync.Once
	stack        *Stack
	err          error

	rootOnce sync.Once
	root     *Scope
}

// Option configures NewApplication.
type Option func(*Application)

// WithLogger sets the logger used during assembly and Run.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) {
		a.logger = logger
	}
}

// WithArguments sets app.arguments. Defaults to os.Args[1:].
func WithArguments(args []string) Option {
	return func(a *Application) {
		a.arguments = append([]string(nil), args...)
	}
}

// WithOutput sets app.output. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *Application) {
		a.output = w
	}
}

var instance atomic.Pointer[Application]

// NewApplication creates the application singleton. modules are layered in
// order, later ones shadowing earlier ones, with FrameworkModule on top.
// A second call fails with a configuration error.
func NewApplication(modules []string, configuration map[string]any, opts ...Option) (*Application, error) {
	if configuration == nil {
		configuration = map[string]any{}
	}
	var arguments []string
	if len(os.Args) > 1 {
		arguments = append(arguments, os.Args[1:]...)
	}
	a := &Application{
		modules:       append(append([]string(nil), modules...), FrameworkModule),
		configuration: configuration,
		arguments:     arguments,
		output:        os.Stdout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if !instance.CompareAndSwap(nil, a) {
		return nil, errConfiguration("", "application container already initialized")
	}
	return a, nil
}

// Instance returns the application singleton, or nil before NewApplication.
func Instance() *Application {
	return instance.Load()
}

// Modules returns the module list, FrameworkModule included.
func (a *Application) Modules() []string {
	return append([]string(nil), a.modules...)
}

// Stack assembles the application stack on first call and returns it.
func (a *Application) Stack() (*Stack, error) {
	a.assembleOnce.Do(a.assemble)
	return a.stack, a.err
}

func (a *Application) assemble() {
	layers := []Container{
		NewRegistry(map[string]Resource{
			ModulesName:       Value(a.Modules()),
			ConfigurationName: Parameter(a.configuration),
			ArgumentsName:     Value(a.arguments),
			OutputName:        Value(a.output),
		}),
	}

	for _, name := range a.modules {
		m, ok := LookupModule(name)
		if !ok {
			if name == FrameworkModule {
				a.logger.Debug("framework module not linked, skipping", "module", name)
				continue
			}
			a.err = errDynamicLoad(name, fmt.Errorf("module %q is not registered", name))
			return
		}

		provider, ok := m.(RegistryProvider)
		if !ok || provider.Registry() == nil {
			a.logger.Debug("module has no registry, skipping", "module", name)
			continue
		}

		registry := provider.Registry()
		layers = append(layers, registry)
		a.logger.Debug("module layered", "module", name, "resources", registry.Len())
	}

	a.stack = NewStack(layers...)
}

// Get resolves name through the application stack.
func (a *Application) Get(ctx context.Context, name string) (any, error) {
	stack, err := a.Stack()
	if err != nil {
		return nil, err
	}
	return stack.Get(ctx, name)
}

// Has reports whether any layer of the application stack declares name.
func (a *Application) Has(name string) bool {
	stack, err := a.Stack()
	if err != nil {
		return false
	}
	return stack.Has(name)
}

// Unwrap exposes the application stack to Stack.Names.
func (a *Application) Unwrap() Container {
	stack, err := a.Stack()
	if err != nil {
		return NewStack()
	}
	return stack
}

// Root returns the scope used when no scope is active. It is built once and
// exposes itself under ContextName.
func (a *Application) Root() *Scope {
	a.rootOnce.Do(func() {
		root := &Scope{cache: make(map[string]any)}
		root.stack = NewStack(a, NewRegistry(map[string]Resource{
			ContextName: Value(root),
		}))
		a.root = root
	})
	return a.root
}

// Run resolves app.command in the current scope and executes it.
func (a *Application) Run(ctx context.Context) error {
	if _, err := a.Stack(); err != nil {
		return err
	}

	cmd, err := Resolve[Executor](ctx, CommandName)
	if err != nil {
		return err
	}

	a.logger.Debug("executing command", "command", fmt.Sprintf("%T", cmd))
	return cmd.Execute(ctx)
}

func init() {
	testhook.ResetApplication = func() { instance.Store(nil) }
	testhook.UnregisterModule = unregisterModule
}
