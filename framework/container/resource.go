package container

import (
	"context"
	"fmt"
	"regexp"

	"github.com/km-arc/logos/framework/loader"
)

// Resolver is anything names can be resolved against: a Registry, a Stack,
// a Scope or the Application.
type Resolver interface {
	Get(ctx context.Context, name string) (any, error)
	Has(name string) bool
}

// Resource is a declared, not-yet-resolved description of how to produce a value.
type Resource interface {
	Resolve(ctx context.Context, r Resolver) (any, error)
}

// Factory is implemented by resources referenced from ServiceSpec.Factory.
type Factory interface {
	Create(ctx context.Context, params map[string]any) (any, error)
}

// ── Parameter ────────────────────────────────────────────────────────────────

// ParameterResource wraps a literal value; see Interpolate.
type ParameterResource struct {
	value any
}

// Parameter declares a literal value. Strings of the form "%name%" (also
// nested inside map[string]any, []any, map[string]string and []string) are
// replaced by the resolved value of name.
//
//	"db.dsn":  container.Parameter("postgres://localhost/app"),
//	"db.opts": container.Parameter(map[string]any{"dsn": "%db.dsn%"}),
//
// Use Value for data that must never be interpolated, such as raw
// command-line arguments.
func Parameter(value any) *ParameterResource {
	return &ParameterResource{value: value}
}

func (p *ParameterResource) Resolve(ctx context.Context, r Resolver) (any, error) {
	return Interpolate(ctx, p.value, r)
}

// ValueResource wraps a value returned exactly as declared.
type ValueResource struct {
	value any
}

// Value declares a literal that is never interpolated.
func Value(value any) *ValueResource {
	return &ValueResource{value: value}
}

func (v *ValueResource) Resolve(context.Context, Resolver) (any, error) {
	return v.value, nil
}

// Interpolate substitutes "%name%" templates in value, recursing into
// map[string]any and []any to any depth. Only a string that is entirely one
// template is substituted; anything else is returned unchanged. Inside
// map[string]string and []string a template must resolve to a string, so
// the collection keeps its type.
func Interpolate(ctx context.Context, value any, r Resolver) (any, error) {
	switch v := value.(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, item := range v {
			resolved, err := interpolateString(ctx, item, r)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			resolved, err := interpolateString(ctx, item, r)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := Interpolate(ctx, item, r)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := Interpolate(ctx, item, r)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case string:
		name, ok := templateName(v)
		if !ok {
			return v, nil
		}
		resolved, err := r.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		return Interpolate(ctx, resolved, r)
	default:
		return value, nil
	}
}

func interpolateString(ctx context.Context, s string, r Resolver) (string, error) {
	name, ok := templateName(s)
	if !ok {
		return s, nil
	}
	resolved, err := Interpolate(ctx, s, r)
	if err != nil {
		return "", err
	}
	str, ok := resolved.(string)
	if !ok {
		return "", errTypeMismatch(name, "string", resolved)
	}
	return str, nil
}

func templateName(s string) (string, bool) {
	if len(s) < 2 || s[0] != '%' || s[len(s)-1] != '%' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// ── Service ──────────────────────────────────────────────────────────────────

// ServiceSpec declares how a Service is built. Exactly one of Class and
// Factory must be set.
type ServiceSpec struct {
	// Class is a loader reference ("module:Type") whose constructor is called.
	Class string

	// Factory names another resource implementing Factory.
	Factory string

	// Parameters are interpolated and passed to the constructor or factory.
	Parameters map[string]any

	// Loader overrides the process-wide loader catalog.
	Loader *loader.Catalog
}

// Service instantiates a value each time it is resolved.
type Service struct {
	spec ServiceSpec
}

// NewService validates spec and returns the Service resource.
func NewService(spec ServiceSpec) (*Service, error) {
	switch {
	case spec.Class == "" && spec.Factory == "":
		return nil, errConfiguration("", "class or factory is required")
	case spec.Class != "" && spec.Factory != "":
		return nil, errConfiguration(spec.Class, "class and factory are mutually exclusive")
	}
	if spec.Class != "" {
		if _, _, err := loader.Split(spec.Class); err != nil {
			return nil, newError(ErrCodeConfiguration, spec.Class, "invalid class reference", err)
		}
	}
	if spec.Loader == nil {
		spec.Loader = loader.Default()
	}
	return &Service{spec: spec}, nil
}

// MustService is like NewService but panics on a malformed declaration.
func MustService(spec ServiceSpec) *Service {
	s, err := NewService(spec)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Service) Resolve(ctx context.Context, r Resolver) (any, error) {
	var params map[string]any
	if s.spec.Parameters != nil {
		resolved, err := Interpolate(ctx, s.spec.Parameters, r)
		if err != nil {
			return nil, err
		}
		params = resolved.(map[string]any)
	} else {
		params = map[string]any{}
	}

	if s.spec.Class != "" {
		ctor, err := s.spec.Loader.Lookup(s.spec.Class)
		if err != nil {
			return nil, errDynamicLoad(s.spec.Class, err)
		}
		return ctor(ctx, params)
	}

	target, err := r.Get(ctx, s.spec.Factory)
	if err != nil {
		return nil, err
	}
	factory, ok := target.(Factory)
	if !ok {
		return nil, errTypeMismatch(s.spec.Factory, "container.Factory", target)
	}
	return factory.Create(ctx, params)
}

// ── Class ────────────────────────────────────────────────────────────────────

// ClassResource resolves to a loader.Constructor rather than an instance.
type ClassResource struct {
	ref    string
	loader *loader.Catalog
}

// Class declares a reference to a constructor registered with the loader.
func Class(ref string) *ClassResource {
	return &ClassResource{ref: ref, loader: loader.Default()}
}

func (c *ClassResource) Resolve(_ context.Context, _ Resolver) (any, error) {
	ctor, err := c.loader.Lookup(c.ref)
	if err != nil {
		return nil, errDynamicLoad(c.ref, err)
	}
	return ctor, nil
}

// ── Group ────────────────────────────────────────────────────────────────────

// Group resolves to map[string]string of short key → full name for every
// name matching its pattern.
type Group struct {
	pattern *regexp.Regexp
	match   *regexp.Regexp
}

// NewGroup compiles pattern. A name belongs to the group when pattern
// matches at its start; its short key is the name with every match of
// pattern removed, so `^app\.command\.` maps "app.command.build" to "build".
func NewGroup(pattern string) (*Group, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, newError(ErrCodeConfiguration, pattern, "invalid group pattern", err)
	}
	return &Group{pattern: re, match: regexp.MustCompile(`^(?:` + pattern + `)`)}, nil
}

// MustGroup is like NewGroup but panics on an invalid pattern.
func MustGroup(pattern string) *Group {
	g, err := NewGroup(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Group) Resolve(ctx context.Context, r Resolver) (any, error) {
	var names []string
	if lister, ok := r.(nameLister); ok {
		names = lister.Names()
	} else {
		names = Current(ctx).Names()
	}

	out := make(map[string]string)
	for _, name := range names {
		if g.match.MatchString(name) {
			out[g.pattern.ReplaceAllString(name, "")] = name
		}
	}
	return out, nil
}

func (g *Group) String() string {
	return fmt.Sprintf("Group(%s)", g.pattern)
}

type nameLister interface {
	Names() []string
}
