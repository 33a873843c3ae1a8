package command

import (
	"github.com/km-arc/logos/framework/container"
	"github.com/km-arc/logos/framework/loader"
)

// DelegateRef is the loader reference of the dispatcher.
const DelegateRef = "logos/command:Delegate"

// GroupName is the resource discovering every app.command.* resource.
const GroupName = "groups.commands"

// Pattern selects command resources; the match is stripped to form the
// --command value.
const Pattern = `^app\.command\.`

// Registry returns the built-in framework resources. They are layered above
// every application module, so app.command always dispatches through
// Delegate.
func Registry() *container.Registry {
	return container.NewRegistry(map[string]container.Resource{
		GroupName: container.MustGroup(Pattern),
		container.CommandName: container.MustService(container.ServiceSpec{
			Class: DelegateRef,
			Parameters: map[string]any{
				"commands":  "%" + GroupName + "%",
				"arguments": "%" + container.ArgumentsName + "%",
				"output":    "%" + container.OutputName + "%",
			},
		}),
	})
}

func init() {
	loader.MustRegister(DelegateRef, newDelegate)
	container.RegisterModule(container.ModuleOf(container.FrameworkModule, Registry()))
}
