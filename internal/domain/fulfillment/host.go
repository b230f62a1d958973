// Package fulfillment decides when the items, locations and placements of a
// save profile are activated, which container presents each placement, and
// sequences both through the profile load state machine.
package fulfillment

import (
	"fmt"

	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/cost"
	"rewardcore/internal/domain/gamestate"
	"rewardcore/internal/domain/lifecycle"
)

// GameState is the save data items write to and costs are paid from.
type GameState interface {
	cost.Wallet
	Grant(resource string, amount int)
	SetFlag(name string, value bool)
}

// Observer receives resolver decisions. Metrics adapters implement it.
type Observer interface {
	ContainerResolved(placement, container string, rule Rule)
}

type HostConfig struct {
	Logger     lifecycle.Logger
	Containers *container.Registry
	Game       GameState
	Observer   Observer
}

// Host is the context every kernel operation runs against: logger, container
// registry, event bus, game state and the single active profile slot.
type Host struct {
	Log        lifecycle.Logger
	Containers *container.Registry
	Events     *lifecycle.Bus
	Game       GameState
	Observer   Observer

	active *Profile
}

func NewHost(cfg HostConfig) (*Host, error) {
	if cfg.Containers == nil {
		return nil, fmt.Errorf("%w: container registry is required", ErrHostMisconfigured)
	}
	h := &Host{
		Log:        cfg.Logger,
		Containers: cfg.Containers,
		Events:     lifecycle.NewBus(),
		Game:       cfg.Game,
		Observer:   cfg.Observer,
	}
	if h.Log == nil {
		h.Log = lifecycle.Discard()
	}
	if h.Game == nil {
		h.Game = gamestate.NewLedger()
	}
	return h, nil
}

// Attach makes p the active profile. Attaching a second profile while one is
// active is a configuration error.
func (h *Host) Attach(p *Profile) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", ErrHostMisconfigured)
	}
	if h.active == p {
		return nil
	}
	if h.active != nil || (p.host != nil && p.host != h) {
		return &ProfileAlreadyActiveError{}
	}
	h.active = p
	p.host = h
	return nil
}

// Detach unloads the active profile if needed and releases the slot.
func (h *Host) Detach() error {
	p := h.active
	if p == nil {
		return nil
	}
	var err error
	if p.state == LoadCompleted {
		err = p.Unload()
	}
	p.host = nil
	h.active = nil
	return err
}

func (h *Host) Active() *Profile { return h.active }

func (h *Host) NotifyBeforeStartNewGame() {
	h.Events.Dispatch(h.Log, lifecycle.BeforeStartNewGame, nil)
}

// NotifyOnEnterGame loads the attached profile, then tells subscribers.
func (h *Host) NotifyOnEnterGame() error {
	var err error
	if p := h.active; p != nil && p.state == Unloaded {
		err = p.Load()
	}
	h.Events.Dispatch(h.Log, lifecycle.OnEnterGame, nil)
	return err
}

func (h *Host) NotifyAfterStartNewGame() {
	h.Events.Dispatch(h.Log, lifecycle.AfterStartNewGame, nil)
}

func (h *Host) NotifyAfterContinueGame() {
	h.Events.Dispatch(h.Log, lifecycle.AfterContinueGame, nil)
}

func (h *Host) NotifyOnSafeToGiveItems() {
	h.Events.Dispatch(h.Log, lifecycle.OnSafeToGiveItems, nil)
}

func (h *Host) NotifySceneTransition(scene string) {
	h.Events.Dispatch(h.Log, lifecycle.SceneTransition, scene)
}

// NotifyOnLeaveGame tells subscribers, then unloads the attached profile.
func (h *Host) NotifyOnLeaveGame() error {
	h.Events.Dispatch(h.Log, lifecycle.OnLeaveGame, nil)
	if p := h.active; p != nil && p.state == LoadCompleted {
		return p.Unload()
	}
	return nil
}

// Notify routes a game event by name. arg is the scene for SceneTransition.
func (h *Host) Notify(e lifecycle.Event, arg string) error {
	switch e {
	case lifecycle.BeforeStartNewGame:
		h.NotifyBeforeStartNewGame()
	case lifecycle.OnEnterGame:
		return h.NotifyOnEnterGame()
	case lifecycle.AfterStartNewGame:
		h.NotifyAfterStartNewGame()
	case lifecycle.AfterContinueGame:
		h.NotifyAfterContinueGame()
	case lifecycle.OnSafeToGiveItems:
		h.NotifyOnSafeToGiveItems()
	case lifecycle.SceneTransition:
		h.NotifySceneTransition(arg)
	case lifecycle.OnLeaveGame:
		return h.NotifyOnLeaveGame()
	default:
		return fmt.Errorf("unknown game event %q", e)
	}
	return nil
}

func (h *Host) observe(placement, name string, rule Rule) {
	if h.Observer != nil {
		h.Observer.ContainerResolved(placement, name, rule)
	}
}
