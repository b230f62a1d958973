package fulfillment

import (
	"rewardcore/internal/domain/lifecycle"
)

type Location interface {
	Tagged
	Kind() string
	LocationName() string
	Lifecycle() *lifecycle.State
	OnLoad(h *Host, owner Placement) error
	OnUnload(h *Host, owner Placement) error
}

// ContainerLocation is a location that can present a container. Locations
// without it give their items implicitly and always use the default.
type ContainerLocation interface {
	Location
	Supports(container string) bool
	ForceDefaultContainer() bool
}

type LocationBase struct {
	Name    string `json:"name"`
	TagList TagSet `json:"tags"`

	state lifecycle.State
}

func (b *LocationBase) LocationName() string          { return b.Name }
func (b *LocationBase) Tags() *TagSet                 { return &b.TagList }
func (b *LocationBase) Lifecycle() *lifecycle.State   { return &b.state }
func (*LocationBase) OnLoad(*Host, Placement) error   { return nil }
func (*LocationBase) OnUnload(*Host, Placement) error { return nil }

// LoadLocation activates a location and its tags once, in that order: tags
// first.
func LoadLocation(h *Host, loc Location, owner Placement) {
	if loc == nil {
		return
	}
	loc.Lifecycle().LoadOnce(h.Log, "location "+loc.LocationName(), func() error {
		loc.Tags().Load(h, loc)
		return loc.OnLoad(h, owner)
	})
}

func UnloadLocation(h *Host, loc Location, owner Placement) {
	if loc == nil {
		return
	}
	loc.Lifecycle().UnloadOnce(h.Log, "location "+loc.LocationName(), func() error {
		err := loc.OnUnload(h, owner)
		loc.Tags().Unload(h, loc)
		return err
	})
}

const (
	kindSceneLocation = "scene"
	kindAutoLocation  = "auto"
)

// SceneLocation is a spot in a scene where a container object is placed.
type SceneLocation struct {
	LocationBase
	Scene        string   `json:"scene"`
	Object       string   `json:"object,omitempty"`
	ForceDefault bool     `json:"force_default,omitempty"`
	Allowed      []string `json:"allowed_containers,omitempty"`
}

func NewSceneLocation(name, scene string) *SceneLocation {
	return &SceneLocation{LocationBase: LocationBase{Name: name}, Scene: scene}
}

func (*SceneLocation) Kind() string { return kindSceneLocation }

// Supports accepts every container unless an allow-list is set.
func (l *SceneLocation) Supports(name string) bool {
	if len(l.Allowed) == 0 {
		return true
	}
	for _, a := range l.Allowed {
		if a == name {
			return true
		}
	}
	return false
}

func (l *SceneLocation) ForceDefaultContainer() bool { return l.ForceDefault }

// AutoLocation has no container: it claims its placement when Trigger fires.
type AutoLocation struct {
	LocationBase
	Trigger lifecycle.Event `json:"trigger,omitempty"`

	handle lifecycle.Handle
}

func NewAutoLocation(name string) *AutoLocation {
	return &AutoLocation{LocationBase: LocationBase{Name: name}}
}

func (*AutoLocation) Kind() string { return kindAutoLocation }

func (l *AutoLocation) trigger() lifecycle.Event {
	if l.Trigger == "" {
		return lifecycle.OnSafeToGiveItems
	}
	return l.Trigger
}

func (l *AutoLocation) OnLoad(h *Host, owner Placement) error {
	l.handle = h.Events.Subscribe(l.trigger(), func(any) {
		given, err := Claim(h, owner)
		if err != nil {
			h.Log.Info("auto location could not claim placement", "location", l.Name, "placement", owner.PlacementName(), "error", err.Error())
			return
		}
		if len(given) > 0 {
			h.Log.Info("auto location gave items", "location", l.Name, "count", len(given))
		}
	})
	return nil
}

func (l *AutoLocation) OnUnload(h *Host, _ Placement) error {
	h.Events.Unsubscribe(l.handle)
	l.handle = lifecycle.Handle{}
	return nil
}
