package fulfillment

import (
	"errors"
	"fmt"
	"sort"

	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/lifecycle"
)

// Module is profile-wide behavior loaded before any placement.
type Module interface {
	Kind() string
	Lifecycle() *lifecycle.State
	OnLoad(h *Host) error
	OnUnload(h *Host) error
}

type ModuleBase struct {
	state lifecycle.State
}

func (m *ModuleBase) Lifecycle() *lifecycle.State { return &m.state }
func (*ModuleBase) OnLoad(*Host) error            { return nil }
func (*ModuleBase) OnUnload(*Host) error          { return nil }

func LoadModule(h *Host, m Module) {
	m.Lifecycle().LoadOnce(h.Log, "module "+m.Kind(), func() error { return m.OnLoad(h) })
}

func UnloadModule(h *Host, m Module) {
	m.Lifecycle().UnloadOnce(h.Log, "module "+m.Kind(), func() error { return m.OnUnload(h) })
}

const (
	kindContainerCatalogModule  = "container_catalog"
	kindStartingResourcesModule = "starting_resources"
	kindEventLogModule          = "event_log"
)

// ContainerCatalogModule ships container definitions with the profile. It
// defines the ones the host registry lacks and removes only those on unload.
type ContainerCatalogModule struct {
	ModuleBase
	Containers []container.Definition `json:"containers"`

	added []string
}

func (*ContainerCatalogModule) Kind() string { return kindContainerCatalogModule }

func (m *ContainerCatalogModule) OnLoad(h *Host) error {
	m.added = m.added[:0]
	var errs []error
	for _, def := range m.Containers {
		if h.Containers.Has(def.Name) {
			continue
		}
		if err := h.Containers.Define(def); err != nil {
			errs = append(errs, err)
			continue
		}
		m.added = append(m.added, def.Name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("container catalog module: %w", errors.Join(errs...))
	}
	return nil
}

func (m *ContainerCatalogModule) OnUnload(h *Host) error {
	for i := len(m.added) - 1; i >= 0; i-- {
		if err := h.Containers.Remove(m.added[i]); err != nil {
			h.Log.Warn("container catalog module could not remove container", "container", m.added[i], "error", err.Error())
		}
	}
	m.added = nil
	return nil
}

// StartingResourcesModule grants resources once per save when a new game
// starts.
type StartingResourcesModule struct {
	ModuleBase
	Grants  map[string]int `json:"grants"`
	Granted bool           `json:"granted,omitempty"`

	handle lifecycle.Handle
}

func (*StartingResourcesModule) Kind() string { return kindStartingResourcesModule }

func (m *StartingResourcesModule) OnLoad(h *Host) error {
	m.handle = h.Events.Subscribe(lifecycle.AfterStartNewGame, func(any) { m.grant(h) })
	return nil
}

func (m *StartingResourcesModule) OnUnload(h *Host) error {
	h.Events.Unsubscribe(m.handle)
	m.handle = lifecycle.Handle{}
	return nil
}

func (m *StartingResourcesModule) grant(h *Host) {
	if m.Granted {
		return
	}
	names := make([]string, 0, len(m.Grants))
	for name := range m.Grants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Game.Grant(name, m.Grants[name])
	}
	m.Granted = true
	h.Log.Info("starting resources granted", "resources", len(names))
}

// EventLogModule logs every game event while loaded.
type EventLogModule struct {
	ModuleBase

	handles []lifecycle.Handle
}

func (*EventLogModule) Kind() string { return kindEventLogModule }

func (m *EventLogModule) OnLoad(h *Host) error {
	for _, e := range lifecycle.GameEvents() {
		m.handles = append(m.handles, h.Events.Subscribe(e, func(payload any) {
			if scene, ok := payload.(string); ok {
				h.Log.Info("game event", "event", string(e), "scene", scene)
				return
			}
			h.Log.Info("game event", "event", string(e))
		}))
	}
	return nil
}

func (m *EventLogModule) OnUnload(h *Host) error {
	for _, handle := range m.handles {
		h.Events.Unsubscribe(handle)
	}
	m.handles = nil
	return nil
}
