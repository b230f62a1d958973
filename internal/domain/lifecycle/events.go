package lifecycle

import "sort"

type Event string

const (
	BeforeStartNewGame Event = "before_start_new_game"
	OnEnterGame        Event = "on_enter_game"
	AfterStartNewGame  Event = "after_start_new_game"
	AfterContinueGame  Event = "after_continue_game"
	OnSafeToGiveItems  Event = "on_safe_to_give_items"
	OnLeaveGame        Event = "on_leave_game"
	SceneTransition    Event = "scene_transition"
	ItemGiven          Event = "item_given"
)

// GameEvents lists the host-originated notifications in the order a session
// usually sees them.
func GameEvents() []Event {
	return []Event{
		BeforeStartNewGame,
		OnEnterGame,
		AfterStartNewGame,
		AfterContinueGame,
		OnSafeToGiveItems,
		SceneTransition,
		OnLeaveGame,
	}
}

func IsGameEvent(e Event) bool {
	for _, ev := range GameEvents() {
		if ev == e {
			return true
		}
	}
	return false
}

// Handle identifies one subscription.
type Handle struct {
	event Event
	id    uint64
}

type subscriber struct {
	id uint64
	fn func(payload any)
}

// Bus keeps an explicit subscriber list per event. Dispatch isolates each
// subscriber: a failing one is logged and the rest still run.
type Bus struct {
	next uint64
	subs map[Event][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: map[Event][]subscriber{}}
}

func (b *Bus) Subscribe(e Event, fn func(payload any)) Handle {
	if b.subs == nil {
		b.subs = map[Event][]subscriber{}
	}
	b.next++
	b.subs[e] = append(b.subs[e], subscriber{id: b.next, fn: fn})
	return Handle{event: e, id: b.next}
}

// Unsubscribe removes the subscription. Unknown or zero handles are ignored.
func (b *Bus) Unsubscribe(h Handle) {
	list := b.subs[h.event]
	for i, s := range list {
		if s.id == h.id {
			b.subs[h.event] = append(list[:i:i], list[i+1:]...)
			if len(b.subs[h.event]) == 0 {
				delete(b.subs, h.event)
			}
			return
		}
	}
}

// Count returns the number of live subscriptions for e.
func (b *Bus) Count(e Event) int {
	return len(b.subs[e])
}

// Events returns every event with at least one subscriber, sorted.
func (b *Bus) Events() []Event {
	out := make([]Event, 0, len(b.subs))
	for e := range b.subs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch calls every subscriber of e registered at the time of the call.
func (b *Bus) Dispatch(log Logger, e Event, payload any) {
	list := append([]subscriber(nil), b.subs[e]...)
	for _, s := range list {
		fn := s.fn
		Guard(log, "dispatch", string(e), func() error {
			fn(payload)
			return nil
		})
	}
}
