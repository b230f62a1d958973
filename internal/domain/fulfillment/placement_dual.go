package fulfillment

import (
	"encoding/json"
	"fmt"

	"rewardcore/internal/domain/lifecycle"
)

// BoolTest is a condition over the game state.
type BoolTest interface {
	Kind() string
	Evaluate(g GameState) bool
}

const (
	kindFlagTest     = "flag"
	kindResourceTest = "resource_at_least"
)

type FlagTest struct {
	Flag string `json:"flag"`
}

func (*FlagTest) Kind() string                { return kindFlagTest }
func (t *FlagTest) Evaluate(g GameState) bool { return g.Flag(t.Flag) }

type ResourceAtLeastTest struct {
	Resource string `json:"resource"`
	Amount   int    `json:"amount"`
}

func (*ResourceAtLeastTest) Kind() string { return kindResourceTest }

func (t *ResourceAtLeastTest) Evaluate(g GameState) bool {
	return g.Balance(t.Resource) >= t.Amount
}

// DualPlacement switches between two locations depending on Test. The test
// is evaluated on load and again on every scene transition; swapping the
// location keeps the resolved container.
type DualPlacement struct {
	PlacementBase
	WhenTrue  Location
	WhenFalse Location
	Test      BoolTest
	Value     bool

	handle lifecycle.Handle
}

func NewDualPlacement(name string, test BoolTest, whenTrue, whenFalse Location, items ...Item) *DualPlacement {
	return &DualPlacement{
		PlacementBase: PlacementBase{Name: name, ItemList: items},
		WhenTrue:      whenTrue,
		WhenFalse:     whenFalse,
		Test:          test,
	}
}

func (*DualPlacement) Kind() string { return kindDualPlacement }

func (p *DualPlacement) Location() Location {
	if p.Value {
		return p.WhenTrue
	}
	return p.WhenFalse
}

func (p *DualPlacement) evaluate(h *Host) bool {
	if p.Test == nil {
		return p.Value
	}
	v := p.Value
	lifecycle.Guard(h.Log, "evaluate", "placement "+p.Name, func() error {
		v = p.Test.Evaluate(h.Game)
		return nil
	})
	return v
}

func (p *DualPlacement) Load(h *Host) error {
	if p.loaded {
		return nil
	}
	p.loaded = true
	p.TagList.Load(h, p)
	p.Value = p.evaluate(h)
	err := p.resolveContainer(h, p.Location())
	LoadLocation(h, p.Location(), p)
	p.loadContents(h)
	p.handle = h.Events.Subscribe(lifecycle.SceneTransition, func(any) { p.Reevaluate(h) })
	return err
}

func (p *DualPlacement) Unload(h *Host) {
	if !p.loaded {
		return
	}
	h.Events.Unsubscribe(p.handle)
	p.handle = lifecycle.Handle{}
	p.unloadContents(h)
	UnloadLocation(h, p.Location(), p)
	p.TagList.Unload(h, p)
	p.loaded = false
}

// Reevaluate runs the test and swaps the active location if the result
// changed. It reports whether a swap happened.
func (p *DualPlacement) Reevaluate(h *Host) bool {
	if !p.loaded {
		return false
	}
	v := p.evaluate(h)
	if v == p.Value {
		return false
	}
	UnloadLocation(h, p.Location(), p)
	p.Value = v
	LoadLocation(h, p.Location(), p)
	h.Log.Info("placement switched location", "placement", p.Name, "value", v, "container", p.Container)
	return true
}

type dualJSON struct {
	placementFields
	WhenTrue  json.RawMessage `json:"when_true"`
	WhenFalse json.RawMessage `json:"when_false"`
	Test      json.RawMessage `json:"test"`
	Value     bool            `json:"value"`
}

func (p *DualPlacement) MarshalJSON() ([]byte, error) {
	f, err := p.fields()
	if err != nil {
		return nil, err
	}
	doc := dualJSON{placementFields: f, Value: p.Value}
	if doc.WhenTrue, err = LocationKinds.Encode(p.WhenTrue); err != nil {
		return nil, fmt.Errorf("placement %q: %w", p.Name, err)
	}
	if doc.WhenFalse, err = LocationKinds.Encode(p.WhenFalse); err != nil {
		return nil, fmt.Errorf("placement %q: %w", p.Name, err)
	}
	if doc.Test, err = TestKinds.Encode(p.Test); err != nil {
		return nil, fmt.Errorf("placement %q: %w", p.Name, err)
	}
	return json.Marshal(doc)
}

func (p *DualPlacement) UnmarshalJSON(b []byte) error {
	var doc dualJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	whenTrue, err := LocationKinds.Decode(doc.WhenTrue)
	if err != nil {
		return fmt.Errorf("placement %q: %w", doc.Name, err)
	}
	whenFalse, err := LocationKinds.Decode(doc.WhenFalse)
	if err != nil {
		return fmt.Errorf("placement %q: %w", doc.Name, err)
	}
	test, err := TestKinds.Decode(doc.Test)
	if err != nil {
		return fmt.Errorf("placement %q: %w", doc.Name, err)
	}
	if err := p.setFields(doc.placementFields); err != nil {
		return err
	}
	p.WhenTrue, p.WhenFalse, p.Test, p.Value = whenTrue, whenFalse, test, doc.Value
	return nil
}
