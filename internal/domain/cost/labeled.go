package cost

import (
	"encoding/json"
	"errors"

	"rewardcore/internal/domain/lifecycle"
)

// LabeledCost decorates one cost with a host display label.
type LabeledCost struct {
	Label string
	Inner Cost
}

func NewLabeledCost(label string, inner Cost) *LabeledCost {
	return &LabeledCost{Label: label, Inner: inner}
}

func (*LabeledCost) Kind() string { return kindLabeled }

func (c *LabeledCost) Paid() bool                   { return c.Inner.Paid() }
func (c *LabeledCost) SetPaid(paid bool)            { c.Inner.SetPaid(paid) }
func (c *LabeledCost) Recurring() bool              { return c.Inner.Recurring() }
func (c *LabeledCost) DiscountRate() float64        { return c.Inner.DiscountRate() }
func (c *LabeledCost) SetDiscountRate(rate float64) { c.Inner.SetDiscountRate(rate) }
func (c *LabeledCost) CanPay(w Wallet) bool         { return c.Inner.CanPay(w) }
func (c *LabeledCost) Pay(w Wallet) error           { return c.Inner.Pay(w) }
func (c *LabeledCost) HasPayEffects() bool          { return c.Inner.HasPayEffects() }
func (c *LabeledCost) Loaded() bool                 { return c.Inner.Loaded() }
func (c *LabeledCost) Load(log lifecycle.Logger)    { c.Inner.Load(log) }
func (c *LabeledCost) Unload(log lifecycle.Logger)  { c.Inner.Unload(log) }

func (c *LabeledCost) Includes(other Cost) bool {
	if isNil(other) {
		return true
	}
	return c.Inner.Includes(other.BaseCost())
}

func (c *LabeledCost) BaseCost() Cost { return c.Inner.BaseCost() }

type labeledJSON struct {
	Label string          `json:"label"`
	Inner json.RawMessage `json:"inner"`
}

func (c *LabeledCost) MarshalJSON() ([]byte, error) {
	inner, err := Kinds.Encode(c.Inner)
	if err != nil {
		return nil, err
	}
	return json.Marshal(labeledJSON{Label: c.Label, Inner: inner})
}

func (c *LabeledCost) UnmarshalJSON(b []byte) error {
	var raw labeledJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	inner, err := Kinds.Decode(raw.Inner)
	if err != nil {
		return err
	}
	if isNil(inner) {
		return errors.New("labeled cost without inner cost")
	}
	c.Label = raw.Label
	c.Inner = inner
	return nil
}
