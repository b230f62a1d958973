package cost

import (
	"errors"
	"fmt"
	"math"
)

// priceEpsilon absorbs float error so exact products are not floored one short.
const priceEpsilon = 1e-9

const (
	kindResource  = "resource"
	kindThreshold = "threshold"
	kindFlag      = "flag"
	kindLabeled   = "labeled"
	kindComposite = "composite"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// ResourceCost consumes an amount of a resource, scaled by the discount rate.
type ResourceCost struct {
	Resource string `json:"resource"`
	Amount   int    `json:"amount"`
	Base
}

func NewResourceCost(resource string, amount int) *ResourceCost {
	return &ResourceCost{Resource: resource, Amount: amount}
}

func (*ResourceCost) Kind() string { return kindResource }

// Price is the amount actually spent after discount.
func (c *ResourceCost) Price() int {
	return int(math.Floor(float64(c.Amount)*c.DiscountRate() + priceEpsilon))
}

func (c *ResourceCost) CanPay(w Wallet) bool {
	return w.Balance(c.Resource) >= c.Price()
}

func (c *ResourceCost) Pay(w Wallet) error {
	return c.pay(func() error {
		price := c.Price()
		if price <= 0 {
			return nil
		}
		if err := w.Spend(c.Resource, price); err != nil {
			return fmt.Errorf("spend %d %s: %w", price, c.Resource, err)
		}
		return nil
	})
}

func (c *ResourceCost) HasPayEffects() bool { return true }

func (c *ResourceCost) Includes(other Cost) bool {
	if isNil(other) {
		return true
	}
	o, ok := other.(*ResourceCost)
	return ok && o.Resource == c.Resource && o.Amount == c.Amount && o.IsRecurring == c.IsRecurring
}

func (c *ResourceCost) BaseCost() Cost { return c }

// ThresholdCost requires a resource balance without consuming it.
type ThresholdCost struct {
	Resource string `json:"resource"`
	Amount   int    `json:"amount"`
	Base
}

func NewThresholdCost(resource string, amount int) *ThresholdCost {
	return &ThresholdCost{Resource: resource, Amount: amount}
}

func (*ThresholdCost) Kind() string { return kindThreshold }

func (c *ThresholdCost) CanPay(w Wallet) bool { return w.Balance(c.Resource) >= c.Amount }

func (c *ThresholdCost) Pay(Wallet) error { return c.pay(nil) }

func (c *ThresholdCost) HasPayEffects() bool { return false }

// Includes: a larger threshold over the same resource includes a smaller one.
func (c *ThresholdCost) Includes(other Cost) bool {
	if isNil(other) {
		return true
	}
	o, ok := other.(*ThresholdCost)
	return ok && o.Resource == c.Resource && o.Amount <= c.Amount
}

func (c *ThresholdCost) BaseCost() Cost { return c }

// FlagCost requires a save flag to be set.
type FlagCost struct {
	Flag string `json:"flag"`
	Base
}

func NewFlagCost(flag string) *FlagCost { return &FlagCost{Flag: flag} }

func (*FlagCost) Kind() string { return kindFlag }

func (c *FlagCost) CanPay(w Wallet) bool { return w.Flag(c.Flag) }

func (c *FlagCost) Pay(Wallet) error { return c.pay(nil) }

func (c *FlagCost) HasPayEffects() bool { return false }

func (c *FlagCost) Includes(other Cost) bool {
	if isNil(other) {
		return true
	}
	o, ok := other.(*FlagCost)
	return ok && o.Flag == c.Flag
}

func (c *FlagCost) BaseCost() Cost { return c }
