// Package cost is the payment-requirement algebra: single costs, their
// composition into a flattened and deduplicated Composite, and the Wallet
// port costs are checked and paid against.
package cost

import (
	"encoding/json"

	"rewardcore/internal/domain/codec"
	"rewardcore/internal/domain/lifecycle"
)

// Wallet is the save data a cost reads and spends.
type Wallet interface {
	Balance(resource string) int
	Spend(resource string, amount int) error
	Flag(name string) bool
}

type Cost interface {
	Kind() string

	Paid() bool
	SetPaid(paid bool)
	Recurring() bool
	DiscountRate() float64
	SetDiscountRate(rate float64)

	CanPay(w Wallet) bool
	// Pay applies the cost once. A paid, non-recurring cost is not paid again.
	Pay(w Wallet) error
	HasPayEffects() bool
	// Includes reports whether paying this cost also satisfies other.
	Includes(other Cost) bool
	// BaseCost strips single-cost decorators.
	BaseCost() Cost

	Loaded() bool
	Load(log lifecycle.Logger)
	Unload(log lifecycle.Logger)
}

// Kinds is the codec registry for persisted costs. Hosts register their own
// cost kinds here.
var Kinds = codec.NewRegistry[Cost]("cost")

func init() {
	Kinds.MustRegister(kindResource, func() Cost { return &ResourceCost{} })
	Kinds.MustRegister(kindThreshold, func() Cost { return &ThresholdCost{} })
	Kinds.MustRegister(kindFlag, func() Cost { return &FlagCost{} })
	Kinds.MustRegister(kindLabeled, func() Cost { return &LabeledCost{} })
	Kinds.MustRegister(kindComposite, func() Cost { return &Composite{} })
}

func Encode(c Cost) (json.RawMessage, error) { return Kinds.Encode(c) }

func Decode(raw json.RawMessage) (Cost, error) { return Kinds.Decode(raw) }

// Base carries the state every concrete cost shares.
type Base struct {
	IsPaid      bool `json:"paid"`
	IsRecurring bool `json:"recurring,omitempty"`
	// Rate is the price multiplier; nil means full price.
	Rate *float64 `json:"discount_rate,omitempty"`

	state lifecycle.State
}

func (b *Base) Paid() bool          { return b.IsPaid }
func (b *Base) SetPaid(paid bool)   { b.IsPaid = paid }
func (b *Base) Recurring() bool     { return b.IsRecurring }
func (b *Base) SetRecurring(r bool) { b.IsRecurring = r }
func (b *Base) Loaded() bool        { return b.state.Loaded() }

func (b *Base) Load(log lifecycle.Logger) { b.state.LoadOnce(log, "cost", nil) }

func (b *Base) Unload(log lifecycle.Logger) { b.state.UnloadOnce(log, "cost", nil) }

func (b *Base) DiscountRate() float64 {
	if b.Rate == nil {
		return 1
	}
	return *b.Rate
}

// SetDiscountRate sets the price multiplier, clamped to [0,1]. A full rate
// clears the stored value.
func (b *Base) SetDiscountRate(rate float64) {
	switch {
	case rate < 0:
		rate = 0
	case rate >= 1:
		b.Rate = nil
		return
	}
	b.Rate = &rate
}

func (b *Base) pay(effect func() error) error {
	if b.IsPaid && !b.IsRecurring {
		return nil
	}
	if effect != nil {
		if err := effect(); err != nil {
			return err
		}
	}
	if !b.IsRecurring {
		b.IsPaid = true
	}
	return nil
}

// Combine is the null-coalescing sum of two costs.
func Combine(a, b Cost) Cost {
	if isNil(a) {
		return b
	}
	if isNil(b) {
		return a
	}
	return NewComposite(a, b)
}

func isNil(c Cost) bool {
	return codec.IsNil(c)
}
