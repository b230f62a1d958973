package cost

import (
	"encoding/json"
	"errors"

	"rewardcore/internal/domain/lifecycle"
)

// Composite is an ordered list of non-composite costs, payable only when every
// member is.
type Composite struct {
	Costs []Cost
	Base
}

// NewComposite drops nils, flattens nested composites and removes redundant
// members.
func NewComposite(costs ...Cost) *Composite {
	flat := make([]Cost, 0, len(costs))
	for _, c := range costs {
		if isNil(c) {
			continue
		}
		flat = append(flat, Flatten(c)...)
	}
	return &Composite{Costs: ReduceRedundant(flat)}
}

// Flatten yields the members of a composite, or the cost itself.
func Flatten(c Cost) []Cost {
	if isNil(c) {
		return nil
	}
	if m, ok := c.(*Composite); ok {
		out := make([]Cost, 0, len(m.Costs))
		for _, child := range m.Costs {
			out = append(out, Flatten(child)...)
		}
		return out
	}
	return []Cost{c}
}

// ReduceRedundant removes every cost included by another one. The first cost
// in iteration order that includes another is kept.
func ReduceRedundant(list []Cost) []Cost {
	out := append([]Cost(nil), list...)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); {
			switch {
			case out[i].Includes(out[j]):
				out = append(out[:j], out[j+1:]...)
			case out[j].Includes(out[i]):
				out = append(out[:i], out[i+1:]...)
				if i >= len(out) {
					return out
				}
				j = i + 1
			default:
				j++
			}
		}
	}
	return out
}

func (*Composite) Kind() string { return kindComposite }

// Paid reports whether every member is paid. An empty composite uses its own flag.
func (m *Composite) Paid() bool {
	if len(m.Costs) == 0 {
		return m.IsPaid
	}
	for _, c := range m.Costs {
		if !c.Paid() {
			return false
		}
	}
	return true
}

func (m *Composite) SetPaid(paid bool) {
	m.IsPaid = paid
	for _, c := range m.Costs {
		c.SetPaid(paid)
	}
}

func (m *Composite) SetDiscountRate(rate float64) {
	m.Base.SetDiscountRate(rate)
	for _, c := range m.Costs {
		c.SetDiscountRate(rate)
	}
}

func (m *Composite) CanPay(w Wallet) bool {
	for _, c := range m.Costs {
		if !c.Paid() && !c.CanPay(w) {
			return false
		}
	}
	return true
}

// Pay pays the unpaid members in order. A failing member does not stop the
// members after it.
func (m *Composite) Pay(w Wallet) error {
	var errs []error
	for _, c := range m.Costs {
		if c.Paid() {
			continue
		}
		if err := c.Pay(w); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 && !m.IsRecurring {
		m.IsPaid = true
	}
	return errors.Join(errs...)
}

func (m *Composite) HasPayEffects() bool {
	for _, c := range m.Costs {
		if c.HasPayEffects() {
			return true
		}
	}
	return false
}

func (m *Composite) Includes(other Cost) bool {
	if isNil(other) {
		return true
	}
	for _, o := range Flatten(other) {
		covered := false
		for _, c := range m.Costs {
			if c.Includes(o) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

func (m *Composite) BaseCost() Cost { return m }

func (m *Composite) Load(log lifecycle.Logger) {
	m.state.LoadOnce(log, "cost composite", func() error {
		for _, c := range m.Costs {
			c.Load(log)
		}
		return nil
	})
}

func (m *Composite) Unload(log lifecycle.Logger) {
	m.state.UnloadOnce(log, "cost composite", func() error {
		for i := len(m.Costs) - 1; i >= 0; i-- {
			m.Costs[i].Unload(log)
		}
		return nil
	})
}

type compositeJSON struct {
	Costs     []json.RawMessage `json:"costs"`
	Paid      bool              `json:"paid"`
	Recurring bool              `json:"recurring,omitempty"`
	Rate      *float64          `json:"discount_rate,omitempty"`
}

func (m *Composite) MarshalJSON() ([]byte, error) {
	costs, err := Kinds.EncodeList(m.Costs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(compositeJSON{Costs: costs, Paid: m.IsPaid, Recurring: m.IsRecurring, Rate: m.Rate})
}

func (m *Composite) UnmarshalJSON(b []byte) error {
	var raw compositeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	costs, err := Kinds.DecodeList(raw.Costs)
	if err != nil {
		return err
	}
	m.Costs = costs
	m.IsPaid = raw.Paid
	m.IsRecurring = raw.Recurring
	m.Rate = raw.Rate
	return nil
}
