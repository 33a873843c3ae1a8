package container

import (
	"context"
	"errors"
	"sort"
)

// Registry is a flat, immutable name → Resource namespace. Build one per
// module and expose it from the module's Registry method.
//
//	var registry = container.NewRegistry(map[string]container.Resource{
//	    "mailer.host": container.Parameter("smtp.local"),
//	    "mailer": container.MustService(container.ServiceSpec{
//	        Class:      "mail:SMTP",
//	        Parameters: map[string]any{"host": "%mailer.host%"},
//	    }),
//	})
type Registry struct {
	resources map[string]Resource
}

// NewRegistry copies resources into a new Registry.
func NewRegistry(resources map[string]Resource) *Registry {
	r := &Registry{resources: make(map[string]Resource, len(resources))}
	for name, res := range resources {
		r.resources[name] = res
	}
	return r
}

// Get resolves name. Nested lookups made by the resource go through the
// ambient scope of ctx.
func (r *Registry) Get(ctx context.Context, name string) (any, error) {
	res, ok := r.resources[name]
	if !ok {
		return nil, errNotRegistered(name)
	}

	value, err := res.Resolve(ctx, ambientResolver(ctx, r))
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, errResolutionFailed(name, err)
	}
	return value, nil
}

// Has reports membership without resolving.
func (r *Registry) Has(name string) bool {
	_, ok := r.resources[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of resources.
func (r *Registry) Len() int { return len(r.resources) }
