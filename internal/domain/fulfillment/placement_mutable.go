package fulfillment

import (
	"encoding/json"
	"fmt"

	"rewardcore/internal/domain/cost"
)

const (
	kindMutablePlacement = "mutable"
	kindDualPlacement    = "dual"
)

// placementFields is the persisted form of PlacementBase.
type placementFields struct {
	Name          string            `json:"name"`
	Cost          json.RawMessage   `json:"cost"`
	Items         []json.RawMessage `json:"items"`
	Tags          TagSet            `json:"tags"`
	ContainerType string            `json:"container_type,omitempty"`
}

func (b *PlacementBase) fields() (placementFields, error) {
	c, err := cost.Encode(b.Price)
	if err != nil {
		return placementFields{}, fmt.Errorf("placement %q: %w", b.Name, err)
	}
	items, err := ItemKinds.EncodeList(b.ItemList)
	if err != nil {
		return placementFields{}, fmt.Errorf("placement %q: %w", b.Name, err)
	}
	return placementFields{
		Name:          b.Name,
		Cost:          c,
		Items:         items,
		Tags:          b.TagList,
		ContainerType: b.Container,
	}, nil
}

func (b *PlacementBase) setFields(f placementFields) error {
	c, err := cost.Decode(f.Cost)
	if err != nil {
		return fmt.Errorf("placement %q: %w", f.Name, err)
	}
	items, err := ItemKinds.DecodeList(f.Items)
	if err != nil {
		return fmt.Errorf("placement %q: %w", f.Name, err)
	}
	b.Name = f.Name
	b.Price = c
	b.ItemList = items
	b.TagList = f.Tags
	b.Container = f.ContainerType
	return nil
}

// MutablePlacement has one location that is active for its whole life.
type MutablePlacement struct {
	PlacementBase
	Loc Location
}

func NewMutablePlacement(name string, loc Location, items ...Item) *MutablePlacement {
	return &MutablePlacement{PlacementBase: PlacementBase{Name: name, ItemList: items}, Loc: loc}
}

func (*MutablePlacement) Kind() string { return kindMutablePlacement }

func (p *MutablePlacement) Location() Location { return p.Loc }

// Load activates tags, resolves the container, then activates the location,
// cost and items. A resolution error is returned after everything else is
// loaded.
func (p *MutablePlacement) Load(h *Host) error {
	if p.loaded {
		return nil
	}
	p.loaded = true
	p.TagList.Load(h, p)
	err := p.resolveContainer(h, p.Loc)
	LoadLocation(h, p.Loc, p)
	p.loadContents(h)
	return err
}

func (p *MutablePlacement) Unload(h *Host) {
	if !p.loaded {
		return
	}
	p.unloadContents(h)
	UnloadLocation(h, p.Loc, p)
	p.TagList.Unload(h, p)
	p.loaded = false
}

type mutableJSON struct {
	placementFields
	Location json.RawMessage `json:"location"`
}

func (p *MutablePlacement) MarshalJSON() ([]byte, error) {
	f, err := p.fields()
	if err != nil {
		return nil, err
	}
	loc, err := LocationKinds.Encode(p.Loc)
	if err != nil {
		return nil, fmt.Errorf("placement %q: %w", p.Name, err)
	}
	return json.Marshal(mutableJSON{placementFields: f, Location: loc})
}

func (p *MutablePlacement) UnmarshalJSON(b []byte) error {
	var doc mutableJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	loc, err := LocationKinds.Decode(doc.Location)
	if err != nil {
		return fmt.Errorf("placement %q: %w", doc.Name, err)
	}
	if err := p.setFields(doc.placementFields); err != nil {
		return err
	}
	p.Loc = loc
	return nil
}
