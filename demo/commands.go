package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/km-arc/logos/framework/container"
)

// Hello prints a greeting.
type Hello struct {
	greeting  string
	arguments []string
	output    io.Writer
}

func (h *Hello) Execute(context.Context) error {
	fs := flagSet("hello")
	name := fs.String("name", "world", "who to greet")
	if err := fs.Parse(h.arguments); err != nil {
		return err
	}
	_, err := fmt.Fprintf(h.output, "%s, %s!\n", h.greeting, *name)
	return err
}

func newHello(_ context.Context, params map[string]any) (any, error) {
	greeting, ok := params["greeting"].(string)
	if !ok {
		return nil, fmt.Errorf("demo: greeting parameter is %T, want string", params["greeting"])
	}
	arguments, output, err := commandIO(params)
	if err != nil {
		return nil, err
	}
	return &Hello{greeting: greeting, arguments: arguments, output: output}, nil
}

// Resources lists the names known to the current scope, optionally filtered
// by --pattern.
type Resources struct {
	arguments []string
	output    io.Writer
}

func (r *Resources) Execute(ctx context.Context) error {
	fs := flagSet("resources")
	pattern := fs.String("pattern", "", "regular expression matched at the start of each name")
	if err := fs.Parse(r.arguments); err != nil {
		return err
	}

	names, err := container.Find(ctx, *pattern)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(r.output, name); err != nil {
			return err
		}
	}
	return nil
}

func newResources(_ context.Context, params map[string]any) (any, error) {
	arguments, output, err := commandIO(params)
	if err != nil {
		return nil, err
	}
	return &Resources{arguments: arguments, output: output}, nil
}

// flagSet parses a command's own flags, leaving --command and other flags
// to their owners.
func flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}
	return fs
}

func commandIO(params map[string]any) ([]string, io.Writer, error) {
	arguments, ok := params["arguments"].([]string)
	if !ok && params["arguments"] != nil {
		return nil, nil, fmt.Errorf("demo: arguments parameter is %T, want []string", params["arguments"])
	}
	output, ok := params["output"].(io.Writer)
	if !ok {
		return nil, nil, fmt.Errorf("demo: output parameter is %T, want io.Writer", params["output"])
	}
	return arguments, output, nil
}
