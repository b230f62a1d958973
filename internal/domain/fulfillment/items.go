package fulfillment

import (
	"fmt"
	"strings"

	"rewardcore/internal/domain/lifecycle"
)

type Item interface {
	Tagged
	Kind() string
	ItemName() string
	// PreferredContainer is the container this item would like to be
	// presented in, or "".
	PreferredContainer() string
	Obtained() bool
	SetObtained(obtained bool)
	Lifecycle() *lifecycle.State
	OnLoad(h *Host) error
	OnUnload(h *Host) error
	// Give applies the item's effect to the game state.
	Give(h *Host, info GiveInfo) error
}

// GiveInfo describes where an item is being given from.
type GiveInfo struct {
	Placement string
	Location  string
	Container string
}

// ItemGivenEvent is the payload dispatched on lifecycle.ItemGiven.
type ItemGivenEvent struct {
	Item Item
	Info GiveInfo
}

// ItemBase carries the fields and default hooks shared by concrete items.
type ItemBase struct {
	Name       string `json:"name"`
	Preferred  string `json:"preferred_container,omitempty"`
	TagList    TagSet `json:"tags"`
	IsObtained bool   `json:"obtained,omitempty"`

	state lifecycle.State
}

func (b *ItemBase) ItemName() string            { return b.Name }
func (b *ItemBase) PreferredContainer() string  { return b.Preferred }
func (b *ItemBase) Tags() *TagSet               { return &b.TagList }
func (b *ItemBase) Obtained() bool              { return b.IsObtained }
func (b *ItemBase) SetObtained(obtained bool)   { b.IsObtained = obtained }
func (b *ItemBase) Lifecycle() *lifecycle.State { return &b.state }
func (*ItemBase) OnLoad(*Host) error            { return nil }
func (*ItemBase) OnUnload(*Host) error          { return nil }

// LoadItem activates an item and its tags once.
func LoadItem(h *Host, it Item) {
	it.Lifecycle().LoadOnce(h.Log, "item "+it.ItemName(), func() error {
		it.Tags().Load(h, it)
		return it.OnLoad(h)
	})
}

func UnloadItem(h *Host, it Item) {
	it.Lifecycle().UnloadOnce(h.Log, "item "+it.ItemName(), func() error {
		err := it.OnUnload(h)
		it.Tags().Unload(h, it)
		return err
	})
}

// GiveItem applies an item, marks it obtained and announces it. A failing
// effect is logged and the item is left unobtained.
func GiveItem(h *Host, it Item, info GiveInfo) bool {
	ok := lifecycle.Guard(h.Log, "give", "item "+it.ItemName(), func() error {
		return it.Give(h, info)
	})
	if !ok {
		return false
	}
	it.SetObtained(true)
	h.Events.Dispatch(h.Log, lifecycle.ItemGiven, ItemGivenEvent{Item: it, Info: info})
	return true
}

const (
	kindResourceItem = "resource"
	kindFlagItem     = "flag"
)

// ResourceItem grants an amount of a resource.
type ResourceItem struct {
	ItemBase
	Resource string `json:"resource"`
	Amount   int    `json:"amount"`
}

func NewResourceItem(name, resource string, amount int) *ResourceItem {
	return &ResourceItem{ItemBase: ItemBase{Name: name}, Resource: resource, Amount: amount}
}

func (*ResourceItem) Kind() string { return kindResourceItem }

func (i *ResourceItem) Give(h *Host, _ GiveInfo) error {
	if strings.TrimSpace(i.Resource) == "" {
		return fmt.Errorf("item %q has no resource", i.Name)
	}
	h.Game.Grant(i.Resource, i.Amount)
	return nil
}

// FlagItem sets a save flag, e.g. an ability unlock.
type FlagItem struct {
	ItemBase
	Flag string `json:"flag"`
}

func NewFlagItem(name, flag string) *FlagItem {
	return &FlagItem{ItemBase: ItemBase{Name: name}, Flag: flag}
}

func (*FlagItem) Kind() string { return kindFlagItem }

func (i *FlagItem) Give(h *Host, _ GiveInfo) error {
	if strings.TrimSpace(i.Flag) == "" {
		return fmt.Errorf("item %q has no flag", i.Name)
	}
	h.Game.SetFlag(i.Flag, true)
	return nil
}
