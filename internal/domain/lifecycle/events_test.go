package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DispatchIsolatesFailingSubscriber(t *testing.T) {
	bus := NewBus()
	log := &recordLogger{}
	var got []any

	bus.Subscribe(OnEnterGame, func(any) { panic("bad subscriber") })
	bus.Subscribe(OnEnterGame, func(p any) { got = append(got, p) })

	bus.Dispatch(log, OnEnterGame, "payload")

	assert.Equal(t, []any{"payload"}, got)
	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], "bad subscriber")
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	h := bus.Subscribe(OnLeaveGame, func(any) { calls++ })
	other := bus.Subscribe(OnLeaveGame, func(any) { calls += 10 })

	bus.Unsubscribe(h)
	bus.Unsubscribe(h)
	bus.Dispatch(Discard(), OnLeaveGame, nil)

	assert.Equal(t, 10, calls)
	assert.Equal(t, 1, bus.Count(OnLeaveGame))

	bus.Unsubscribe(other)
	assert.Equal(t, 0, bus.Count(OnLeaveGame))
	assert.Empty(t, bus.Events())
}

func TestBus_UnsubscribeDuringDispatchKeepsSnapshot(t *testing.T) {
	bus := NewBus()
	calls := 0
	var second Handle
	bus.Subscribe(SceneTransition, func(any) { bus.Unsubscribe(second) })
	second = bus.Subscribe(SceneTransition, func(any) { calls++ })

	bus.Dispatch(Discard(), SceneTransition, nil)
	bus.Dispatch(Discard(), SceneTransition, nil)

	assert.Equal(t, 1, calls)
}

func TestIsGameEvent(t *testing.T) {
	assert.True(t, IsGameEvent(OnSafeToGiveItems))
	assert.False(t, IsGameEvent(ItemGiven))
	assert.False(t, IsGameEvent(Event("bogus")))
}
