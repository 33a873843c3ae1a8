package container

import (
	"context"
	"sync"
)

// Cloner is implemented by cached values that must be copied, not shared,
// when a child scope is derived: request buffers, unit-of-work trackers and
// the like. Values that do not implement it are resolved again by the child.
type Cloner interface {
	Clone() any
}

// Scope is a resolution context: a Stack plus a private cache. Every name is
// resolved at most once per scope; later Gets return the cached value.
type Scope struct {
	stack *Stack

	mu    sync.Mutex
	cache map[string]any
}

// NewScope creates a scope over c. A *Stack is used as is, any other
// container becomes a single-layer stack. overrides pre-seed the cache.
func NewScope(c Container, overrides map[string]any) *Scope {
	stack, ok := c.(*Stack)
	if !ok {
		stack = NewStack(c)
	}
	s := &Scope{stack: stack, cache: make(map[string]any, len(overrides))}
	for name, value := range overrides {
		s.cache[name] = value
	}
	return s
}

// Get returns the cached value for name, resolving and caching it on first
// use. While resolving, s is the ambient scope for nested lookups.
func (s *Scope) Get(ctx context.Context, name string) (any, error) {
	if value, ok := s.Cached(name); ok {
		return value, nil
	}

	value, err := s.stack.Get(s.enter(ctx), name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// First stored value wins if another goroutine resolved the same name.
	if existing, ok := s.cache[name]; ok {
		return existing, nil
	}
	s.cache[name] = value
	return value, nil
}

// Has reports whether name is cached or resolvable through the stack.
func (s *Scope) Has(name string) bool {
	if _, ok := s.Cached(name); ok {
		return true
	}
	return s.stack.Has(name)
}

// Cached returns the cached value for name without resolving anything.
func (s *Scope) Cached(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.cache[name]
	return value, ok
}

// Names returns every name declared in the scope's stack.
func (s *Scope) Names() []string {
	return s.stack.Names()
}

// Stack returns the layered registry the scope resolves against.
func (s *Scope) Stack() *Stack {
	return s.stack
}

func (s *Scope) enter(ctx context.Context) context.Context {
	if active, ok := Active(ctx); ok && active == s {
		return ctx
	}
	return Activate(ctx, s)
}

// ── Derivation ───────────────────────────────────────────────────────────────

type deriveConfig struct {
	registry  Container
	overrides map[string]any
}

// DeriveOption configures Scope.Derive.
type DeriveOption func(*deriveConfig)

// WithRegistry layers c on top of the parent's stack in the child scope.
func WithRegistry(c Container) DeriveOption {
	return func(cfg *deriveConfig) {
		cfg.registry = c
	}
}

// WithOverrides pre-seeds the child's cache. Overrides take precedence over
// values cloned from the parent. Repeated options merge, later keys win.
func WithOverrides(values map[string]any) DeriveOption {
	return func(cfg *deriveConfig) {
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]any, len(values))
		}
		for name, value := range values {
			cfg.overrides[name] = value
		}
	}
}

// Derive creates a child scope. The child resolves through the parent's
// stack (plus an optional extra layer) and starts with the overrides plus a
// clone of every parent-cached value implementing Cloner. The parent is
// never modified.
func (s *Scope) Derive(opts ...DeriveOption) *Scope {
	cfg := &deriveConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	layers := []Container{s.stack}
	if cfg.registry != nil {
		layers = append(layers, cfg.registry)
	}
	child := NewScope(NewStack(layers...), cfg.overrides)

	s.mu.Lock()
	cloneable := make(map[string]Cloner)
	for name, value := range s.cache {
		if c, ok := value.(Cloner); ok {
			cloneable[name] = c
		}
	}
	s.mu.Unlock()

	for name, c := range cloneable {
		if _, overridden := child.cache[name]; !overridden {
			child.cache[name] = c.Clone()
		}
	}
	return child
}
