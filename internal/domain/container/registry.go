package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDefinition = errors.New("invalid container definition")
	ErrDefaultContainer  = errors.New("default container cannot be removed")
)

type DuplicateContainerError struct {
	Name string
}

func (e *DuplicateContainerError) Error() string {
	return fmt.Sprintf("container %q is already defined", e.Name)
}

// Registry is the container namespace plus the single-item and multi-item
// defaults. It is not safe for concurrent use.
type Registry struct {
	defs   map[string]Definition
	order  []string
	single string
	multi  string
}

// NewRegistry builds a registry around its two defaults. They may be the same
// container.
func NewRegistry(single, multi Definition) (*Registry, error) {
	r := &Registry{defs: map[string]Definition{}}
	if err := r.SetDefaultSingle(single); err != nil {
		return nil, err
	}
	if err := r.SetDefaultMulti(multi); err != nil {
		return nil, err
	}
	return r, nil
}

// Define adds a container. Names are never overwritten.
func (r *Registry) Define(def Definition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	if _, ok := r.defs[def.Name]; ok {
		return &DuplicateContainerError{Name: def.Name}
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Remove deregisters a container. Placements that cached it re-resolve on
// their next load.
func (r *Registry) Remove(name string) error {
	if name == r.single || name == r.multi {
		return fmt.Errorf("%w: %s", ErrDefaultContainer, name)
	}
	if _, ok := r.defs[name]; !ok {
		return nil
	}
	delete(r.defs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetDefaultSingle makes def the single-item default, defining it first when
// the registry does not know it. The single-item default has to instantiate
// and support every kernel capability.
func (r *Registry) SetDefaultSingle(def Definition) error {
	if !def.SupportsAll(true, KernelDefined) {
		return fmt.Errorf("%w: single-item default %q must instantiate and support %s", ErrInvalidDefinition, def.Name, KernelDefined)
	}
	name, err := r.ensure(def)
	if err != nil {
		return err
	}
	r.single = name
	return nil
}

// SetDefaultMulti makes def the multi-item default. It may support fewer
// capabilities; the resolver falls back to the single-item default.
func (r *Registry) SetDefaultMulti(def Definition) error {
	name, err := r.ensure(def)
	if err != nil {
		return err
	}
	r.multi = name
	return nil
}

func (r *Registry) ensure(def Definition) (string, error) {
	name := strings.TrimSpace(def.Name)
	def.Name = name
	existing, ok := r.defs[name]
	if !ok {
		if err := r.Define(def); err != nil {
			return "", err
		}
		return name, nil
	}
	if existing != def {
		return "", &DuplicateContainerError{Name: name}
	}
	return name, nil
}

func (r *Registry) DefaultSingle() Definition { return r.defs[r.single] }

func (r *Registry) DefaultMulti() Definition { return r.defs[r.multi] }

// Definitions returns every container in definition order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Clone copies the registry so a session can define and remove containers
// without touching the shared one.
func (r *Registry) Clone() *Registry {
	out := &Registry{
		defs:   make(map[string]Definition, len(r.defs)),
		order:  append([]string(nil), r.order...),
		single: r.single,
		multi:  r.multi,
	}
	for name, def := range r.defs {
		out.defs[name] = def
	}
	return out
}
