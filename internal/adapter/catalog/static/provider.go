// Package staticcatalog serves container catalogs from YAML files, either from
// a directory on disk or from the catalogs compiled into the binary.
package staticcatalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/container"

	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var builtin embed.FS

const ext = ".yaml"

var ErrInvalidCatalogPath = errors.New("invalid catalog filepath")

// Provider reads <name>.yaml under Root. An empty Root serves the built-in
// catalogs.
type Provider struct {
	Root string
}

func (p Provider) Index(_ context.Context) ([]string, error) {
	var (
		entries []fs.DirEntry
		err     error
	)
	if p.Root == "" {
		entries, err = builtin.ReadDir("catalogs")
	} else {
		entries, err = os.ReadDir(p.Root)
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

func (p Provider) Load(_ context.Context, name string) (container.Catalog, error) {
	b, err := p.read(strings.TrimSpace(name) + ext)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return container.Catalog{}, fmt.Errorf("catalog %q: %w", name, ports.ErrNotFound)
		}
		return container.Catalog{}, err
	}
	return Parse(b)
}

func (p Provider) read(rel string) ([]byte, error) {
	if p.Root == "" {
		if !fs.ValidPath(rel) || strings.Contains(rel, "/") {
			return nil, ErrInvalidCatalogPath
		}
		return builtin.ReadFile("catalogs/" + rel)
	}
	safePath, err := secureJoin(p.Root, rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(safePath)
}

func secureJoin(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || rel == ext {
		return "", ErrInvalidCatalogPath
	}
	if filepath.IsAbs(rel) {
		return "", ErrInvalidCatalogPath
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(rootAbs, rel))
	prefix := rootAbs + string(filepath.Separator)
	if !strings.HasPrefix(target, prefix) {
		return "", ErrInvalidCatalogPath
	}
	return target, nil
}

type catalogFile struct {
	Name     string `yaml:"name"`
	Defaults struct {
		Single string `yaml:"single"`
		Multi  string `yaml:"multi"`
	} `yaml:"defaults"`
	Containers []containerFile `yaml:"containers"`
}

type containerFile struct {
	Name         string       `yaml:"name"`
	Instantiate  *bool        `yaml:"instantiate"`
	Capabilities capabilities `yaml:"capabilities"`
}

// capabilities accepts names ("pay_costs", "host_3") or raw integer masks.
type capabilities container.Capability

func (c *capabilities) UnmarshalYAML(node *yaml.Node) error {
	var items []*yaml.Node
	switch node.Kind {
	case yaml.SequenceNode:
		items = node.Content
	case yaml.ScalarNode:
		items = []*yaml.Node{node}
	default:
		return fmt.Errorf("line %d: capabilities must be a list", node.Line)
	}
	var mask container.Capability
	for _, item := range items {
		var n uint32
		if item.ShortTag() == "!!int" {
			if err := item.Decode(&n); err != nil {
				return fmt.Errorf("line %d: %w", item.Line, err)
			}
			mask |= container.Capability(n)
			continue
		}
		capability, err := container.ParseCapability(item.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		mask |= capability
	}
	*c = capabilities(mask)
	return nil
}

// Parse decodes one catalog document. Containers are instantiable unless they
// say otherwise.
func Parse(b []byte) (container.Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return container.Catalog{}, fmt.Errorf("%w: %v", container.ErrInvalidDefinition, err)
	}
	out := container.Catalog{
		Name:       strings.TrimSpace(f.Name),
		Single:     strings.TrimSpace(f.Defaults.Single),
		Multi:      strings.TrimSpace(f.Defaults.Multi),
		Containers: make([]container.Definition, 0, len(f.Containers)),
	}
	for _, c := range f.Containers {
		instantiate := true
		if c.Instantiate != nil {
			instantiate = *c.Instantiate
		}
		out.Containers = append(out.Containers, container.Definition{
			Name:                strings.TrimSpace(c.Name),
			SupportsInstantiate: instantiate,
			Capabilities:        container.Capability(c.Capabilities),
		})
	}
	if out.Multi == "" {
		out.Multi = out.Single
	}
	return out, nil
}
