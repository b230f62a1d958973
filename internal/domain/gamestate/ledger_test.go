package gamestate

import (
	"testing"

	"rewardcore/internal/domain/cost"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_SpendAndGrant(t *testing.T) {
	l := NewLedger()
	l.Grant("geo", 100)
	l.Grant("  ", 5)

	require.NoError(t, l.Spend("geo", 40))
	assert.Equal(t, 60, l.Balance("geo"))

	err := l.Spend("geo", 61)
	assert.ErrorIs(t, err, cost.ErrInsufficientBalance)
	assert.Error(t, l.Spend("geo", -1))
	assert.Len(t, l.Resources, 1)
}

func TestLedger_Flags(t *testing.T) {
	var l Ledger
	l.SetFlag("lantern", true)
	assert.True(t, l.Flag("lantern"))
	l.SetFlag("lantern", false)
	assert.False(t, l.Flag("lantern"))
	assert.Empty(t, l.Flags)
}

func TestLedger_EncodeDecode(t *testing.T) {
	l := NewLedger()
	l.Grant("geo", 12)
	l.SetFlag("dash", true)

	raw, err := l.Encode()
	require.NoError(t, err)

	back, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, l, back)

	empty, err := Decode(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Resources)

	_, err = Decode([]byte("{"))
	assert.Error(t, err)
}

func TestLedger_SatisfiesCostWallet(t *testing.T) {
	var w cost.Wallet = NewLedger()
	c := cost.NewResourceCost("geo", 1)
	assert.False(t, c.CanPay(w))
}

func TestLedger_ZeroValueIsUsable(t *testing.T) {
	var l Ledger

	require.NoError(t, l.Spend("geo", 0))
	assert.Equal(t, 0, l.Balance("geo"))
	assert.ErrorIs(t, l.Spend("geo", 1), cost.ErrInsufficientBalance)

	var flags Ledger
	flags.SetFlag("has_dash", true)
	assert.True(t, flags.Flag("has_dash"))
}
