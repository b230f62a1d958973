package fulfillment

import (
	"fmt"

	"rewardcore/internal/domain/cost"
)

// Placement binds items to a location with an optional shared cost. The
// resolved container is cached in ContainerType and persisted with it.
type Placement interface {
	Tagged
	Kind() string
	PlacementName() string
	Items() []Item
	AddItems(items ...Item)
	ReplaceItems(items []Item)
	Cost() cost.Cost
	SetCost(c cost.Cost)
	// Location is the currently active location.
	Location() Location
	ContainerType() string
	Loaded() bool
	Load(h *Host) error
	Unload(h *Host)
}

// PlacementBase holds the state every placement kind shares.
type PlacementBase struct {
	Name      string
	ItemList  []Item
	Price     cost.Cost
	TagList   TagSet
	Container string

	loaded bool
}

func (b *PlacementBase) PlacementName() string  { return b.Name }
func (b *PlacementBase) Items() []Item          { return append([]Item(nil), b.ItemList...) }
func (b *PlacementBase) AddItems(items ...Item) { b.ItemList = append(b.ItemList, items...) }
func (b *PlacementBase) ReplaceItems(items []Item) {
	b.ItemList = append([]Item(nil), items...)
}
func (b *PlacementBase) Cost() cost.Cost       { return b.Price }
func (b *PlacementBase) SetCost(c cost.Cost)   { b.Price = c }
func (b *PlacementBase) Tags() *TagSet         { return &b.TagList }
func (b *PlacementBase) ContainerType() string { return b.Container }
func (b *PlacementBase) Loaded() bool          { return b.loaded }

// cachedValid reports whether the persisted container can still be used.
func (b *PlacementBase) cachedValid(h *Host) bool {
	if b.Container == "" {
		return false
	}
	def, ok := h.Containers.Get(b.Container)
	return ok && def.SupportsInstantiate
}

func (b *PlacementBase) resolveInput(loc Location) ResolveInput {
	in := ResolveInput{
		Placement: b.Name,
		Cost:      b.Price,
		Tags:      []*TagSet{&b.TagList},
		Items:     b.ItemList,
	}
	if loc != nil {
		in.Tags = append(in.Tags, loc.Tags())
		if cl, ok := loc.(ContainerLocation); ok {
			in.Location = cl
		}
	}
	return in
}

// resolveContainer keeps a valid cached container, otherwise runs the
// resolver. A container the location rejects falls back to the single-item
// default; forced choices are kept as they are.
func (b *PlacementBase) resolveContainer(h *Host, loc Location) error {
	if b.cachedValid(h) {
		h.observe(b.Name, b.Container, RuleCached)
		return nil
	}
	in := b.resolveInput(loc)
	name, rule := ChooseContainer(h, in)
	if in.Location != nil && rule != RuleForcedDefault && rule != RuleOriginalForced && !in.Location.Supports(name) {
		fallback := h.Containers.DefaultSingle().Name
		if !in.Location.Supports(fallback) {
			return &UnsupportedContainerError{Placement: b.Name, Location: loc.LocationName(), Container: name}
		}
		h.Log.Info("location rejected container, using default",
			"placement", b.Name, "location", loc.LocationName(), "container", name, "default", fallback)
		name, rule = fallback, RuleSingleDefault
	}
	b.Container = name
	h.observe(b.Name, name, rule)
	return nil
}

func (b *PlacementBase) loadContents(h *Host) {
	if b.Price != nil {
		b.Price.Load(h.Log)
	}
	for _, it := range b.ItemList {
		LoadItem(h, it)
	}
}

func (b *PlacementBase) unloadContents(h *Host) {
	for i := len(b.ItemList) - 1; i >= 0; i-- {
		UnloadItem(h, b.ItemList[i])
	}
	if b.Price != nil {
		b.Price.Unload(h.Log)
	}
}

// GiveAll gives every item not yet obtained and then calls done with the
// items that were given. done runs before GiveAll returns.
func GiveAll(h *Host, p Placement, info GiveInfo, done func(given []Item)) {
	var given []Item
	for _, it := range p.Items() {
		if it.Obtained() {
			continue
		}
		if GiveItem(h, it, info) {
			given = append(given, it)
		}
	}
	if done != nil {
		done(given)
	}
}

// Claim pays the placement cost and gives its items. A placement whose items
// are all obtained is not charged again.
func Claim(h *Host, p Placement) ([]Item, error) {
	if !p.Loaded() {
		return nil, fmt.Errorf("%w: placement %q is not loaded", ErrInvalidPlacement, p.PlacementName())
	}
	pending := false
	for _, it := range p.Items() {
		if !it.Obtained() {
			pending = true
			break
		}
	}
	if !pending {
		return nil, nil
	}
	if c := p.Cost(); c != nil {
		if !c.Paid() || c.Recurring() {
			if !c.CanPay(h.Game) {
				return nil, fmt.Errorf("%w: %q", ErrCannotPay, p.PlacementName())
			}
			if err := c.Pay(h.Game); err != nil {
				return nil, fmt.Errorf("pay placement %q: %w", p.PlacementName(), err)
			}
		}
	}
	info := GiveInfo{Placement: p.PlacementName(), Container: p.ContainerType()}
	if loc := p.Location(); loc != nil {
		info.Location = loc.LocationName()
	}
	var out []Item
	GiveAll(h, p, info, func(given []Item) { out = given })
	return out, nil
}
