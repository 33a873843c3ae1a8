// Package app boots a logos application: configuration, logging and the
// application container, with the command dispatcher linked in.
package app

import (
	"context"
	"io"
	"log/slog"

	// Links the framework module providing app.command.
	_ "github.com/km-arc/logos/framework/command"
	"github.com/km-arc/logos/framework/config"
	"github.com/km-arc/logos/framework/container"
	"github.com/km-arc/logos/framework/logging"
)

// Version of the framework.
const Version = "0.1.0"

// Kernel is the bootstrapped application.
type Kernel struct {
	Config    *config.Config
	Logger    *slog.Logger
	Container *container.Application
}

type options struct {
	modules   []string
	envFiles  []string
	arguments []string
	argsSet   bool
	output    io.Writer
	logOutput io.Writer
}

// Option configures New.
type Option func(*options)

// WithModules sets the module list, lowest layer first.
func WithModules(modules ...string) Option {
	return func(o *options) { o.modules = append(o.modules, modules...) }
}

// WithEnvFiles loads the given files instead of .env.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = append(o.envFiles, files...) }
}

// WithArguments overrides the command-line arguments.
func WithArguments(args []string) Option {
	return func(o *options) {
		o.arguments = args
		o.argsSet = true
	}
}

// WithOutput sets where commands write their output.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithLogOutput sets where logs go. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// New loads configuration, installs the configured logger as the slog
// default and creates the application container.
//
//	k, err := app.New(app.WithModules("billing"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = k.Run(ctx)
func New(opts ...Option) (*Kernel, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load(o.envFiles...)
	if err != nil {
		return nil, err
	}

	k := &Kernel{Config: cfg}
	cfg.Log = k.logConfig()

	logger := logging.FromConfig(cfg.Log, o.logOutput)
	slog.SetDefault(logger)
	k.Logger = logger

	containerOpts := []container.Option{container.WithLogger(logger)}
	if o.argsSet {
		containerOpts = append(containerOpts, container.WithArguments(o.arguments))
	}
	if o.output != nil {
		containerOpts = append(containerOpts, container.WithOutput(o.output))
	}

	application, err := container.NewApplication(o.modules, cfg.Map(), containerOpts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("application created",
		"name", cfg.App.Name,
		"env", cfg.App.Env,
		"modules", application.Modules(),
	)

	k.Container = application
	return k, nil
}

// logConfig fills unset log settings: APP_DEBUG selects the debug level and
// production defaults to JSON output.
func (k *Kernel) logConfig() config.LogConfig {
	cfg := k.Config.Log
	if cfg.Level == "" {
		cfg.Level = "info"
		if k.IsDebug() {
			cfg.Level = "debug"
		}
	}
	if cfg.Format == "" {
		cfg.Format = string(logging.FormatText)
		if k.IsProduction() {
			cfg.Format = string(logging.FormatJSON)
		}
	}
	return cfg
}

// Run dispatches to the command selected on the command line.
func (k *Kernel) Run(ctx context.Context) error {
	return k.Container.Run(ctx)
}

// Environment returns APP_ENV value.
func (k *Kernel) Environment() string { return k.Config.App.Env }
func (k *Kernel) IsProduction() bool  { return k.Environment() == "production" }
func (k *Kernel) IsDebug() bool       { return k.Config.App.Debug }
