package fulfillment

import (
	"errors"

	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/lifecycle"
)

const (
	kindOriginalContainerTag    = "original_container"
	kindUnsupportedContainerTag = "unsupported_container"
	kindCapabilityTag           = "capability"
	kindObtainFlagTag           = "obtain_flag"
)

// OriginalContainerTag names the container the location had in the vanilla
// game. Force always uses it; Priority prefers it over item preferences.
type OriginalContainerTag struct {
	TagBase
	Container string `json:"container"`
	Force     bool   `json:"force,omitempty"`
	Priority  bool   `json:"priority,omitempty"`
}

func (*OriginalContainerTag) Kind() string { return kindOriginalContainerTag }

func (t *OriginalContainerTag) OriginalContainer() OriginalContainerInfo {
	return OriginalContainerInfo{Name: t.Container, Force: t.Force, Priority: t.Priority}
}

// UnsupportedContainerTag vetoes one container.
type UnsupportedContainerTag struct {
	TagBase
	Container string `json:"container"`
}

func (*UnsupportedContainerTag) Kind() string { return kindUnsupportedContainerTag }

func (t *UnsupportedContainerTag) UnsupportedContainer() string { return t.Container }

// CapabilityTag asks for extra container capabilities.
type CapabilityTag struct {
	TagBase
	Capabilities container.Capability `json:"capabilities"`
}

func (*CapabilityTag) Kind() string { return kindCapabilityTag }

func (t *CapabilityTag) RequestedCapabilities() container.Capability { return t.Capabilities }

// ObtainFlagTag sets a save flag when its parent item is given.
type ObtainFlagTag struct {
	TagBase
	Flag string `json:"flag"`

	handle lifecycle.Handle
}

func (*ObtainFlagTag) Kind() string { return kindObtainFlagTag }

func (t *ObtainFlagTag) OnLoad(h *Host, parent Tagged) error {
	item, ok := parent.(Item)
	if !ok {
		return errors.New("obtain_flag tag must be attached to an item")
	}
	t.handle = h.Events.Subscribe(lifecycle.ItemGiven, func(payload any) {
		given, ok := payload.(ItemGivenEvent)
		if !ok || given.Item != item {
			return
		}
		h.Game.SetFlag(t.Flag, true)
	})
	return nil
}

func (t *ObtainFlagTag) OnUnload(h *Host, _ Tagged) error {
	h.Events.Unsubscribe(t.handle)
	t.handle = lifecycle.Handle{}
	return nil
}
