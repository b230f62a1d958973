package container

import (
	"fmt"
	"strings"
)

// Catalog is a declarative container set: every definition plus the names of
// the two defaults.
type Catalog struct {
	Name       string
	Single     string
	Multi      string
	Containers []Definition
}

// Build turns the catalog into a registry. Both defaults must be listed.
func (c Catalog) Build() (*Registry, error) {
	byName := make(map[string]Definition, len(c.Containers))
	for _, def := range c.Containers {
		def.Name = strings.TrimSpace(def.Name)
		if _, dup := byName[def.Name]; dup {
			return nil, &DuplicateContainerError{Name: def.Name}
		}
		byName[def.Name] = def
	}
	single, ok := byName[strings.TrimSpace(c.Single)]
	if !ok {
		return nil, fmt.Errorf("%w: single default %q is not in catalog %q", ErrInvalidDefinition, c.Single, c.Name)
	}
	multi, ok := byName[strings.TrimSpace(c.Multi)]
	if !ok {
		return nil, fmt.Errorf("%w: multi default %q is not in catalog %q", ErrInvalidDefinition, c.Multi, c.Name)
	}
	reg, err := NewRegistry(single, multi)
	if err != nil {
		return nil, err
	}
	for _, def := range c.Containers {
		if reg.Has(strings.TrimSpace(def.Name)) {
			continue
		}
		if err := reg.Define(def); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
