// Package loader maps "module:Type" references to constructors.
//
// Go cannot import a package or look up a type by name at runtime, so every
// type the container may build from a class reference registers itself here,
// usually from an init function:
//
//	func init() {
//	    loader.MustRegister("billing:Invoicer", NewInvoicer)
//	}
//
// The container then resolves Service and Class resources by reference string
// without knowing the concrete package.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Constructor builds an instance from already-interpolated parameters.
type Constructor func(ctx context.Context, params map[string]any) (any, error)

var (
	// ErrUnknownRef is returned when no constructor is registered for a reference.
	ErrUnknownRef = errors.New("loader: unknown reference")

	// ErrMalformedRef is returned for references not shaped like "module:Type".
	ErrMalformedRef = errors.New("loader: malformed reference")

	// ErrDuplicateRef is returned when a reference is registered twice.
	ErrDuplicateRef = errors.New("loader: reference already registered")
)

// Catalog is a concurrency-safe reference → constructor table.
type Catalog struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{ctors: make(map[string]Constructor)}
}

// Register associates ref with ctor.
func (c *Catalog) Register(ref string, ctor Constructor) error {
	if _, _, err := Split(ref); err != nil {
		return err
	}
	if ctor == nil {
		return fmt.Errorf("loader: nil constructor for %q", ref)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.ctors[ref]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRef, ref)
	}
	c.ctors[ref] = ctor
	return nil
}

// Lookup returns the constructor registered for ref.
func (c *Catalog) Lookup(ref string) (Constructor, error) {
	if _, _, err := Split(ref); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	ctor, ok := c.ctors[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	}
	return ctor, nil
}

// Refs returns every registered reference, sorted.
func (c *Catalog) Refs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	refs := make([]string, 0, len(c.ctors))
	for ref := range c.ctors {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// Split breaks "module:Type" into its two parts.
func Split(ref string) (module, typeName string, err error) {
	module, typeName, ok := strings.Cut(ref, ":")
	if !ok || module == "" || typeName == "" || strings.Contains(typeName, ":") {
		return "", "", fmt.Errorf("%w: %q (want module:Type)", ErrMalformedRef, ref)
	}
	return module, typeName, nil
}

// ── process-wide catalog ─────────────────────────────────────────────────────

var std = New()

// Default returns the process-wide catalog used by the container.
func Default() *Catalog { return std }

// Register adds ref to the process-wide catalog.
func Register(ref string, ctor Constructor) error { return std.Register(ref, ctor) }

// MustRegister is like Register but panics on error. Intended for init functions.
func MustRegister(ref string, ctor Constructor) {
	if err := std.Register(ref, ctor); err != nil {
		panic(err)
	}
}

// Lookup finds ref in the process-wide catalog.
func Lookup(ref string) (Constructor, error) { return std.Lookup(ref) }
