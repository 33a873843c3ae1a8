// Package demo is a sample module: a greeting, a resource listing and an
// HTTP server with per-request scopes.
//
//	$ logos --command hello --name Ada
//	$ logos --command resources --pattern 'app\.'
//	$ logos --command serve
package demo

import (
	"github.com/km-arc/logos/framework/container"
	"github.com/km-arc/logos/framework/loader"
)

// Name is the module name to list in the application modules.
const Name = "demo"

// Resource names.
const (
	GreetingName = "demo.greeting"
	JournalName  = "demo.journal"
	journalsName = "demo.journals"
)

// Registry returns the module's resources.
func Registry() *container.Registry {
	return container.NewRegistry(map[string]container.Resource{
		GreetingName: container.Parameter("Hello"),
		journalsName: container.Parameter(journalFactory{}),
		JournalName: container.MustService(container.ServiceSpec{
			Factory:    journalsName,
			Parameters: map[string]any{"configuration": "%" + container.ConfigurationName + "%"},
		}),

		"app.command.hello": container.MustService(container.ServiceSpec{
			Class: "demo:Hello",
			Parameters: map[string]any{
				"greeting":  "%" + GreetingName + "%",
				"arguments": "%" + container.ArgumentsName + "%",
				"output":    "%" + container.OutputName + "%",
			},
		}),
		"app.command.resources": container.MustService(container.ServiceSpec{
			Class: "demo:Resources",
			Parameters: map[string]any{
				"arguments": "%" + container.ArgumentsName + "%",
				"output":    "%" + container.OutputName + "%",
			},
		}),
		"app.command.serve": container.MustService(container.ServiceSpec{
			Class: "demo:Serve",
			Parameters: map[string]any{
				"configuration": "%" + container.ConfigurationName + "%",
			},
		}),
	})
}

func init() {
	loader.MustRegister("demo:Hello", newHello)
	loader.MustRegister("demo:Resources", newResources)
	loader.MustRegister("demo:Serve", newServe)
	container.RegisterModule(container.ModuleOf(Name, Registry()))
}
