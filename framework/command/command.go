// Package command dispatches the application to one of its registered
// commands.
//
// Any resource named "app.command.<name>" that resolves to a Command is
// selectable with --command=<name>:
//
//	"app.command.build": container.MustService(container.ServiceSpec{Class: "build:Command"}),
//
//	$ app --command build
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/km-arc/logos/framework/container"
	"github.com/km-arc/logos/framework/validation"
)

// Command is a runnable unit selected by the dispatcher.
type Command interface {
	Execute(ctx context.Context) error
}

// Func adapts a function to Command.
type Func func(ctx context.Context) error

func (f Func) Execute(ctx context.Context) error { return f(ctx) }

// ArgumentError reports arguments rejected before any command was resolved.
type ArgumentError struct {
	Choices []string
	Err     error
}

func (e *ArgumentError) Error() string {
	return "command: invalid arguments: " + e.Err.Error()
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// Delegate selects a command by its --command flag and executes it.
type Delegate struct {
	commands  map[string]string
	arguments []string
	output    io.Writer
	logger    *slog.Logger
}

// NewDelegate creates a dispatcher over commands (short name → resource
// name) reading its flag from arguments.
func NewDelegate(commands map[string]string, arguments []string, output io.Writer) *Delegate {
	if output == nil {
		output = io.Discard
	}
	return &Delegate{
		commands:  commands,
		arguments: arguments,
		output:    output,
		logger:    slog.Default(),
	}
}

// Choices returns the selectable command names, sorted.
func (d *Delegate) Choices() []string {
	choices := make([]string, 0, len(d.commands))
	for name := range d.commands {
		choices = append(choices, name)
	}
	sort.Strings(choices)
	return choices
}

// Parse extracts and validates --command. Flags the dispatcher does not
// know are ignored so commands can define their own.
func (d *Delegate) Parse() (string, error) {
	fs := pflag.NewFlagSet("logos", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}

	choices := d.Choices()
	var name string
	fs.StringVar(&name, "command", "", "command to execute ("+strings.Join(choices, ", ")+")")

	if err := fs.Parse(d.arguments); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return "", err
		}
		return "", &ArgumentError{Choices: choices, Err: err}
	}

	v := validation.Make(
		map[string]string{"command": name},
		validation.Rules{"command": "required"},
	).OneOf("command", choices)
	if v.Fails() {
		return "", &ArgumentError{Choices: choices, Err: v.Errors()}
	}
	return name, nil
}

// Execute resolves the selected command in the current scope and runs it.
func (d *Delegate) Execute(ctx context.Context) error {
	name, err := d.Parse()
	if errors.Is(err, pflag.ErrHelp) {
		d.usage()
		return nil
	}
	if err != nil {
		return err
	}

	resource := d.commands[name]
	cmd, err := container.Resolve[Command](ctx, resource)
	if err != nil {
		return err
	}

	d.logger.DebugContext(ctx, "dispatching command", "command", name, "resource", resource)
	return cmd.Execute(ctx)
}

func (d *Delegate) usage() {
	fmt.Fprintln(d.output, "Usage: --command <name>")
	fmt.Fprintln(d.output)
	fmt.Fprintln(d.output, "Commands:")
	for _, name := range d.Choices() {
		fmt.Fprintf(d.output, "  %-16s %s\n", name, d.commands[name])
	}
}

// newDelegate is the loader constructor behind DelegateRef.
func newDelegate(_ context.Context, params map[string]any) (any, error) {
	commands, ok := params["commands"].(map[string]string)
	if !ok {
		return nil, fmt.Errorf("command: commands parameter is %T, want map[string]string", params["commands"])
	}

	var arguments []string
	if raw, present := params["arguments"]; present && raw != nil {
		arguments, ok = raw.([]string)
		if !ok {
			return nil, fmt.Errorf("command: arguments parameter is %T, want []string", raw)
		}
	}

	var output io.Writer
	if raw, present := params["output"]; present && raw != nil {
		output, ok = raw.(io.Writer)
		if !ok {
			return nil, fmt.Errorf("command: output parameter is %T, want io.Writer", raw)
		}
	}

	return NewDelegate(commands, arguments, output), nil
}
