// Package catalog serves the container catalog new sessions start from and
// swaps it when a catalog file is reloaded.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/lifecycle"
)

var ErrInvalidRequest = errors.New("invalid catalog request")

// Holder is the current shared registry. Registries handed out are never
// mutated afterwards: sessions clone them and Replace swaps the pointer.
type Holder struct {
	mu   sync.RWMutex
	name string
	reg  *container.Registry
}

func NewHolder(name string, reg *container.Registry) *Holder {
	return &Holder{name: name, reg: reg}
}

func (h *Holder) Current() *container.Registry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.reg
}

func (h *Holder) Name() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.name
}

func (h *Holder) Replace(name string, reg *container.Registry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.name, h.reg = name, reg
}

type UseCase struct {
	Provider ports.CatalogProvider
	Holder   *Holder
	Logger   lifecycle.Logger
}

func (u UseCase) List(ctx context.Context) (ListResponse, error) {
	var available []string
	if u.Provider != nil {
		names, err := u.Provider.Index(ctx)
		if err != nil {
			return ListResponse{}, err
		}
		available = names
	}
	return view(u.Holder.Name(), u.Holder.Current(), available), nil
}

// Reload builds a registry from the named catalog and makes it current. Open
// sessions keep the registry they started with.
func (u UseCase) Reload(ctx context.Context, name string) (ListResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" || u.Provider == nil {
		return ListResponse{}, ErrInvalidRequest
	}
	cat, err := u.Provider.Load(ctx, name)
	if err != nil {
		return ListResponse{}, err
	}
	reg, err := cat.Build()
	if err != nil {
		return ListResponse{}, err
	}
	u.Holder.Replace(name, reg)
	if u.Logger != nil {
		u.Logger.Info("container catalog reloaded", "catalog", name, "containers", reg.Len())
	}
	return u.List(ctx)
}

func view(name string, reg *container.Registry, available []string) ListResponse {
	out := ListResponse{Catalog: name, Available: available}
	if reg == nil {
		return out
	}
	out.DefaultSingle = reg.DefaultSingle().Name
	out.DefaultMulti = reg.DefaultMulti().Name
	for _, def := range reg.Definitions() {
		out.Containers = append(out.Containers, ContainerView{
			Name:         def.Name,
			Instantiate:  def.SupportsInstantiate,
			Capabilities: def.Capabilities.String(),
		})
	}
	return out
}
