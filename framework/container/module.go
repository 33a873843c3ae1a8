package container

import (
	"fmt"
	"sort"
	"sync"
)

// FrameworkModule is the built-in module appended to every application's
// module list. Its resources are layered above all user modules.
const FrameworkModule = "logos"

// Module is a unit listed in the application's module list. A module that
// also implements RegistryProvider contributes a layer to the application
// stack; one that does not is skipped.
type Module interface {
	Name() string
}

// RegistryProvider is implemented by modules that contribute resources.
//
//	type billingModule struct{ container.BaseModule }
//
//	func (billingModule) Registry() *container.Registry { return registry }
//
//	func init() {
//	    container.RegisterModule(billingModule{container.NewBaseModule("billing")})
//	}
type RegistryProvider interface {
	Module
	Registry() *Registry
}

// BaseModule is an embeddable Module carrying only a name.
type BaseModule struct {
	name string
}

// NewBaseModule returns a BaseModule named name.
func NewBaseModule(name string) BaseModule { return BaseModule{name: name} }

func (m BaseModule) Name() string { return m.name }

// registryModule adapts a plain *Registry into a RegistryProvider.
type registryModule struct {
	BaseModule
	registry *Registry
}

func (m registryModule) Registry() *Registry { return m.registry }

// ModuleOf returns a module named name contributing registry. A nil registry
// yields a module that contributes nothing.
func ModuleOf(name string, registry *Registry) Module {
	if registry == nil {
		return NewBaseModule(name)
	}
	return registryModule{BaseModule: NewBaseModule(name), registry: registry}
}

// ── Module catalog ───────────────────────────────────────────────────────────

var modules = struct {
	mu      sync.RWMutex
	entries map[string]Module
}{entries: make(map[string]Module)}

// RegisterModule makes m available to NewApplication under m.Name().
// Registering the same name twice panics.
func RegisterModule(m Module) {
	modules.mu.Lock()
	defer modules.mu.Unlock()

	name := m.Name()
	if _, exists := modules.entries[name]; exists {
		panic(fmt.Sprintf("container: module %q registered twice", name))
	}
	modules.entries[name] = m
}

// LookupModule returns the module registered under name.
func LookupModule(name string) (Module, bool) {
	modules.mu.RLock()
	defer modules.mu.RUnlock()
	m, ok := modules.entries[name]
	return m, ok
}

// Modules returns the names of all registered modules, sorted.
func Modules() []string {
	modules.mu.RLock()
	defer modules.mu.RUnlock()

	names := make([]string, 0, len(modules.entries))
	for name := range modules.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unregisterModule(name string) {
	modules.mu.Lock()
	defer modules.mu.Unlock()
	delete(modules.entries, name)
}
