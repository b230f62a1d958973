package cost

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testWallet struct {
	balances map[string]int
	flags    map[string]bool
	failOn   string
}

func newTestWallet() *testWallet {
	return &testWallet{balances: map[string]int{}, flags: map[string]bool{}}
}

func (w *testWallet) Balance(resource string) int { return w.balances[resource] }
func (w *testWallet) Flag(name string) bool       { return w.flags[name] }

func (w *testWallet) Spend(resource string, amount int) error {
	if resource == w.failOn {
		return errors.New("wallet offline")
	}
	if w.balances[resource] < amount {
		return ErrInsufficientBalance
	}
	w.balances[resource] -= amount
	return nil
}

func TestComposite_FlattensNestedComposites(t *testing.T) {
	a := NewResourceCost("geo", 100)
	b := NewFlagCost("has_key")
	c := NewThresholdCost("grubs", 5)

	m := NewComposite(NewComposite(a, b), c)

	require.Len(t, m.Costs, 3)
	assert.Same(t, a, m.Costs[0])
	assert.Same(t, b, m.Costs[1])
	assert.Same(t, c, m.Costs[2])
}

func TestComposite_DropsNils(t *testing.T) {
	a := NewResourceCost("geo", 1)
	var typedNil *FlagCost

	m := NewComposite(nil, a, typedNil)

	require.Len(t, m.Costs, 1)
	assert.Same(t, a, m.Costs[0])
}

func TestComposite_SubsumedCostIsRemoved(t *testing.T) {
	big := NewThresholdCost("grubs", 10)
	small := NewThresholdCost("grubs", 3)

	m := NewComposite(big, small)
	require.Len(t, m.Costs, 1)
	assert.Same(t, big, m.Costs[0])

	m = NewComposite(small, big)
	require.Len(t, m.Costs, 1)
	assert.Same(t, big, m.Costs[0])
}

func TestReduceRedundant_FirstEqualWins(t *testing.T) {
	first := NewResourceCost("geo", 50)
	second := NewResourceCost("geo", 50)
	other := NewResourceCost("essence", 50)

	out := ReduceRedundant([]Cost{first, other, second})

	require.Len(t, out, 2)
	assert.Same(t, first, out[0])
	assert.Same(t, other, out[1])
}

func TestReduceRedundant_SupersededHeadRestartsScan(t *testing.T) {
	a := NewThresholdCost("grubs", 1)
	b := NewThresholdCost("grubs", 2)
	c := NewThresholdCost("grubs", 3)
	d := NewFlagCost("x")

	out := ReduceRedundant([]Cost{a, d, b, c})

	require.Len(t, out, 2)
	assert.Same(t, d, out[0])
	assert.Same(t, c, out[1])
}

func TestCombine_NullCoalescing(t *testing.T) {
	a := NewResourceCost("geo", 1)
	b := NewFlagCost("f")

	assert.Nil(t, Combine(nil, nil))
	assert.Same(t, a, Combine(a, nil))
	assert.Same(t, b, Combine(nil, b))

	sum, ok := Combine(NewComposite(a), b).(*Composite)
	require.True(t, ok)
	assert.Equal(t, []Cost{a, b}, sum.Costs)
}

func TestResourceCost_PayIsIdempotentUnlessRecurring(t *testing.T) {
	w := newTestWallet()
	w.balances["geo"] = 250

	c := NewResourceCost("geo", 100)
	require.True(t, c.CanPay(w))
	require.NoError(t, c.Pay(w))
	require.NoError(t, c.Pay(w))
	assert.True(t, c.Paid())
	assert.Equal(t, 150, w.balances["geo"])

	r := NewResourceCost("geo", 50)
	r.SetRecurring(true)
	require.NoError(t, r.Pay(w))
	require.NoError(t, r.Pay(w))
	assert.False(t, r.Paid())
	assert.Equal(t, 50, w.balances["geo"])
}

func TestResourceCost_Discount(t *testing.T) {
	w := newTestWallet()
	w.balances["geo"] = 60

	c := NewResourceCost("geo", 100)
	assert.Equal(t, 1.0, c.DiscountRate())
	assert.False(t, c.CanPay(w))

	c.SetDiscountRate(0.5)
	assert.Equal(t, 50, c.Price())
	assert.True(t, c.CanPay(w))

	c.SetDiscountRate(7)
	assert.Equal(t, 1.0, c.DiscountRate())
	c.SetDiscountRate(-1)
	assert.Equal(t, 0, c.Price())
}

func TestResourceCost_DiscountPriceIsExact(t *testing.T) {
	cases := []struct {
		amount int
		rate   float64
		want   int
	}{
		{100, 0.57, 57},
		{100, 0.29, 29},
		{100, 0.58, 58},
		{10, 0.7, 7},
		{3, 0.5, 1},
		{7, 0.99, 6},
	}
	for _, tc := range cases {
		c := NewResourceCost("geo", tc.amount)
		c.SetDiscountRate(tc.rate)
		if got := c.Price(); got != tc.want {
			t.Fatalf("price(%d, %v): got=%d want=%d", tc.amount, tc.rate, got, tc.want)
		}
	}
}

func TestResourceCost_DiscountRateSurvivesEncode(t *testing.T) {
	c := NewResourceCost("geo", 100)
	c.SetDiscountRate(0.29)

	raw, err := Encode(c)
	require.NoError(t, err)
	back, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.29, back.DiscountRate())
	assert.Equal(t, 29, back.(*ResourceCost).Price())

	full, err := Encode(NewResourceCost("geo", 100))
	require.NoError(t, err)
	assert.NotContains(t, string(full), "discount_rate")
	back, err = Decode(full)
	require.NoError(t, err)
	assert.Equal(t, 1.0, back.DiscountRate())
}

func TestComposite_CanPayAndPay(t *testing.T) {
	w := newTestWallet()
	w.balances["geo"] = 100
	w.flags["door_open"] = true

	geo := NewResourceCost("geo", 80)
	door := NewFlagCost("door_open")
	m := NewComposite(geo, door)

	assert.True(t, m.CanPay(w))
	require.NoError(t, m.Pay(w))
	assert.True(t, m.Paid())
	assert.Equal(t, 20, w.balances["geo"])

	// already paid members are skipped when checking
	w.flags["door_open"] = false
	assert.True(t, m.CanPay(w))
}

func TestComposite_FailingMemberDoesNotBlockSiblings(t *testing.T) {
	w := newTestWallet()
	w.balances["geo"] = 100
	w.balances["essence"] = 100
	w.failOn = "essence"

	essence := NewResourceCost("essence", 10)
	geo := NewResourceCost("geo", 10)
	m := NewComposite(essence, geo)

	err := m.Pay(w)
	require.Error(t, err)
	assert.False(t, essence.Paid())
	assert.True(t, geo.Paid())
	assert.False(t, m.Paid())
	assert.Equal(t, 90, w.balances["geo"])
}

func TestComposite_DiscountBroadcasts(t *testing.T) {
	a := NewResourceCost("geo", 10)
	b := NewResourceCost("essence", 10)
	m := NewComposite(a, b)

	m.SetDiscountRate(0.25)

	assert.InDelta(t, 0.25, m.DiscountRate(), 1e-9)
	assert.InDelta(t, 0.25, a.DiscountRate(), 1e-9)
	assert.InDelta(t, 0.25, b.DiscountRate(), 1e-9)
}

func TestComposite_HasPayEffectsAndIncludes(t *testing.T) {
	threshold := NewThresholdCost("grubs", 10)
	flag := NewFlagCost("f")
	m := NewComposite(threshold, flag)

	assert.False(t, m.HasPayEffects())
	assert.True(t, m.Includes(nil))
	assert.True(t, m.Includes(NewThresholdCost("grubs", 4)))
	assert.True(t, m.Includes(NewComposite(NewFlagCost("f"), NewThresholdCost("grubs", 9))))
	assert.False(t, m.Includes(NewResourceCost("geo", 1)))

	m = NewComposite(m, NewResourceCost("geo", 1))
	assert.True(t, m.HasPayEffects())
}

func TestLabeledCost_UnwrapsAndDelegates(t *testing.T) {
	inner := NewThresholdCost("grubs", 5)
	labeled := NewLabeledCost("Grub Father", inner)

	assert.Same(t, inner, labeled.BaseCost())
	assert.True(t, labeled.Includes(NewLabeledCost("other", NewThresholdCost("grubs", 2))))

	w := newTestWallet()
	w.balances["grubs"] = 5
	require.True(t, labeled.CanPay(w))
	require.NoError(t, labeled.Pay(w))
	assert.True(t, inner.Paid())
}

func TestLoadUnloadCascadesToMembers(t *testing.T) {
	a := NewResourceCost("geo", 1)
	b := NewFlagCost("f")
	m := NewComposite(a, b)

	m.Load(nil)
	assert.True(t, m.Loaded())
	assert.True(t, a.Loaded())
	assert.True(t, b.Loaded())

	m.Unload(nil)
	assert.False(t, a.Loaded())
	assert.False(t, b.Loaded())
}

func TestEncodeDecode_Stable(t *testing.T) {
	m := NewComposite(
		NewLabeledCost("price", NewResourceCost("geo", 300)),
		NewThresholdCost("grubs", 46),
		NewFlagCost("shade_cloak"),
	)
	m.SetDiscountRate(0.8)
	m.Costs[1].SetPaid(true)

	first, err := Encode(m)
	require.NoError(t, err)

	decoded, err := Decode(first)
	require.NoError(t, err)
	second, err := Encode(decoded)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	back, ok := decoded.(*Composite)
	require.True(t, ok)
	require.Len(t, back.Costs, 3)
	assert.True(t, back.Costs[1].Paid())
	assert.InDelta(t, 0.8, back.Costs[0].DiscountRate(), 1e-9)
}

func TestDecode_RejectsLabeledWithoutInner(t *testing.T) {
	_, err := Decode(json.RawMessage(`{"type":"labeled","data":{"label":"x","inner":null}}`))
	require.Error(t, err)
}
