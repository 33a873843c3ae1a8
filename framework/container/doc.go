// Package container is the logos resolution engine: a registry of named
// resources resolved on demand through layered, memoizing scopes.
//
// # Resources
//
// A Resource describes how a name turns into a value:
//
//	container.Parameter(value)                    // literal, with %name% interpolation
//	container.MustService(container.ServiceSpec{  // instance built by a constructor...
//	    Class:      "mail:SMTP",
//	    Parameters: map[string]any{"host": "%mail.host%"},
//	})
//	container.MustService(container.ServiceSpec{  // ...or by a Factory resource
//	    Factory: "mail.factory",
//	})
//	container.Class("mail:SMTP")                  // the constructor itself
//	container.MustGroup(`^app\.command\.`)        // short key → full name of matching resources
//
// Class references are "module:Type" strings registered with package loader.
//
// # Registries and stacks
//
// A Registry is an immutable name → Resource map. A Stack layers containers;
// the most recently appended layer that has a name wins:
//
//	stack := container.NewStack(defaults, appRegistry, overrides)
//
// # Scopes
//
// A Scope resolves through a Stack and caches every value it produces:
//
//	root := container.NewScope(stack, nil)
//	svc, err := root.Get(ctx, "mailer")   // built once per scope
//
//	request := root.Derive(
//	    container.WithRegistry(requestRegistry),
//	    container.WithOverrides(map[string]any{"http.request": r}),
//	)
//
// A derived scope starts with the overrides plus a Clone of every parent
// cached value that implements Cloner.
//
// # Ambient scope
//
// The active scope travels in a context.Context, so concurrent goroutines
// never share an active-scope stack:
//
//	ctx = container.Activate(ctx, request)
//	mailer, err := container.Resolve[*mail.SMTP](ctx, "mailer")
//
// With no active scope, lookups go to the application's root scope.
//
// # Application
//
// NewApplication may be called once per process. Modules register themselves
// with RegisterModule (usually from init) and are layered in list order, with
// the built-in FrameworkModule on top:
//
//	app, err := container.NewApplication([]string{"billing"}, cfg)
//	if err != nil { ... }
//	err = app.Run(ctx) // resolves and executes app.command
package container
