package container

import (
	"context"
	"sort"
	"sync"
)

// Container is one layer of a Stack.
type Container = Resolver

// Stack is an ordered composition of containers where later layers shadow
// earlier ones. It is immutable once built; Append returns a new Stack.
type Stack struct {
	layers []Container

	namesOnce sync.Once
	names     []string
}

// NewStack layers containers bottom (first) to top (last).
func NewStack(layers ...Container) *Stack {
	return &Stack{layers: append([]Container(nil), layers...)}
}

// Append returns a new Stack with layers added on top.
func (s *Stack) Append(layers ...Container) *Stack {
	out := make([]Container, 0, len(s.layers)+len(layers))
	out = append(out, s.layers...)
	out = append(out, layers...)
	return &Stack{layers: out}
}

// Layers returns a copy of the layers, bottom first.
func (s *Stack) Layers() []Container {
	return append([]Container(nil), s.layers...)
}

// Get returns the resolution from the topmost layer that has name. When no
// layer has it the bottom layer is asked anyway so the error comes from it.
func (s *Stack) Get(ctx context.Context, name string) (any, error) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if s.layers[i].Has(name) {
			return s.layers[i].Get(ctx, name)
		}
	}
	if len(s.layers) == 0 {
		return nil, errNotRegistered(name)
	}
	return s.layers[0].Get(ctx, name)
}

// Has reports whether any layer has name.
func (s *Stack) Has(name string) bool {
	for _, layer := range s.layers {
		if layer.Has(name) {
			return true
		}
	}
	return false
}

// Names returns the sorted union of names declared by every flat Registry
// reachable from this stack. Nested stacks are flattened and wrappers
// exposing Unwrap are unwrapped; other containers contribute nothing.
// Membership is fixed at construction so the union is computed once.
func (s *Stack) Names() []string {
	s.namesOnce.Do(func() {
		set := make(map[string]struct{})
		for _, layer := range s.layers {
			collectNames(layer, set)
		}
		s.names = make([]string, 0, len(set))
		for name := range set {
			s.names = append(s.names, name)
		}
		sort.Strings(s.names)
	})
	return append([]string(nil), s.names...)
}

type unwrapper interface {
	Unwrap() Container
}

func collectNames(c Container, set map[string]struct{}) {
	if w, ok := c.(unwrapper); ok {
		c = w.Unwrap()
	}
	switch layer := c.(type) {
	case *Registry:
		for name := range layer.resources {
			set[name] = struct{}{}
		}
	case *Stack:
		for _, name := range layer.Names() {
			set[name] = struct{}{}
		}
	}
}
