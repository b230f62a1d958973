package fulfillment

import (
	"errors"
	"fmt"
	"strings"
)

// LoadState is the profile load state machine. Load walks it forward, Unload
// walks it back.
type LoadState int

const (
	Unloaded LoadState = iota
	LoadStarted
	ModuleLoadStarted
	ModuleLoadCompleted
	PlacementsLoadStarted
	PlacementsLoadCompleted
	LoadCompleted
)

var loadStateNames = [...]string{
	Unloaded:                "unloaded",
	LoadStarted:             "load_started",
	ModuleLoadStarted:       "module_load_started",
	ModuleLoadCompleted:     "module_load_completed",
	PlacementsLoadStarted:   "placements_load_started",
	PlacementsLoadCompleted: "placements_load_completed",
	LoadCompleted:           "load_completed",
}

func (s LoadState) String() string {
	if s < 0 || int(s) >= len(loadStateNames) {
		return fmt.Sprintf("load_state(%d)", int(s))
	}
	return loadStateNames[s]
}

// ConflictPolicy decides what AddPlacement does when the name is taken.
type ConflictPolicy string

const (
	MergeKeepingNew ConflictPolicy = "merge_keep_new"
	MergeKeepingOld ConflictPolicy = "merge_keep_old"
	Replace         ConflictPolicy = "replace"
	Ignore          ConflictPolicy = "ignore"
	Throw           ConflictPolicy = "throw"
)

func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MergeKeepingNew, MergeKeepingOld, Replace, Ignore, Throw:
		return p, nil
	case "":
		return Throw, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Profile owns the placements and modules of one save.
type Profile struct {
	placements map[string]Placement
	order      []string
	modules    []Module
	state      LoadState
	host       *Host
}

func NewProfile() *Profile {
	return &Profile{placements: map[string]Placement{}}
}

func (p *Profile) State() LoadState { return p.state }

// Host is the host the profile is attached to, or nil.
func (p *Profile) Host() *Host { return p.host }

func (p *Profile) Placement(name string) (Placement, bool) {
	pl, ok := p.placements[name]
	return pl, ok
}

// Placements returns placements in insertion order.
func (p *Profile) Placements() []Placement {
	out := make([]Placement, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.placements[name])
	}
	return out
}

func (p *Profile) Modules() []Module { return append([]Module(nil), p.modules...) }

// AddModule appends a module. Modules can only be added while unloaded.
func (p *Profile) AddModule(m Module) error {
	if m == nil {
		return fmt.Errorf("%w: nil module", ErrHostMisconfigured)
	}
	if p.state != Unloaded {
		return &InvalidLifecycleTransitionError{Op: "add module to", State: p.state}
	}
	p.modules = append(p.modules, m)
	return nil
}

// Load activates modules and then placements. Every placement is loaded even
// when another fails; the failures are returned joined.
func (p *Profile) Load() error {
	if p.host == nil {
		return ErrNotAttached
	}
	if p.state != Unloaded {
		return &InvalidLifecycleTransitionError{Op: "load", State: p.state}
	}
	h := p.host

	p.state = LoadStarted
	p.state = ModuleLoadStarted
	for _, m := range p.modules {
		LoadModule(h, m)
	}
	p.state = ModuleLoadCompleted

	p.state = PlacementsLoadStarted
	var errs []error
	for _, name := range p.order {
		if err := p.placements[name].Load(h); err != nil {
			errs = append(errs, err)
		}
	}
	p.state = PlacementsLoadCompleted
	p.state = LoadCompleted

	h.Log.Info("profile loaded", "placements", len(p.order), "modules", len(p.modules))
	return errors.Join(errs...)
}

// Unload reverses Load exactly.
func (p *Profile) Unload() error {
	if p.host == nil {
		return ErrNotAttached
	}
	if p.state != LoadCompleted {
		return &InvalidLifecycleTransitionError{Op: "unload", State: p.state}
	}
	h := p.host

	p.state = PlacementsLoadCompleted
	p.state = PlacementsLoadStarted
	for i := len(p.order) - 1; i >= 0; i-- {
		p.placements[p.order[i]].Unload(h)
	}
	p.state = ModuleLoadCompleted

	p.state = ModuleLoadStarted
	for i := len(p.modules) - 1; i >= 0; i-- {
		UnloadModule(h, p.modules[i])
	}
	p.state = LoadStarted
	p.state = Unloaded

	h.Log.Info("profile unloaded", "placements", len(p.order), "modules", len(p.modules))
	return nil
}

func (p *Profile) placementsLoaded() bool {
	return p.state == PlacementsLoadCompleted || p.state == LoadCompleted
}

// AddPlacement inserts pl, resolving a name clash with policy. It returns the
// placement that occupies the name afterwards. When placements are already
// loaded, a newly inserted placement is loaded immediately.
func (p *Profile) AddPlacement(pl Placement, policy ConflictPolicy) (Placement, error) {
	if pl == nil || strings.TrimSpace(pl.PlacementName()) == "" {
		return nil, fmt.Errorf("%w: placement must have a name", ErrInvalidPlacement)
	}
	if _, err := ParseConflictPolicy(string(policy)); err != nil {
		return nil, err
	}
	if p.state == PlacementsLoadStarted {
		return nil, &InvalidLifecycleTransitionError{Op: "add placement to", State: p.state}
	}
	name := pl.PlacementName()
	loaded := p.placementsLoaded()
	h := p.host

	old, exists := p.placements[name]
	if !exists {
		p.placements[name] = pl
		p.order = append(p.order, name)
		if loaded {
			return pl, pl.Load(h)
		}
		return pl, nil
	}
	if old == pl {
		return pl, nil
	}

	switch policy {
	case MergeKeepingNew:
		// The absorbed items now belong to pl; old must not unload them.
		pl.AddItems(old.Items()...)
		old.ReplaceItems(nil)
		if loaded {
			old.Unload(h)
		}
		p.placements[name] = pl
	case MergeKeepingOld:
		absorbed := pl.Items()
		old.AddItems(absorbed...)
		pl.ReplaceItems(nil)
		if loaded && old.Loaded() {
			for _, it := range absorbed {
				LoadItem(h, it)
			}
		}
		return old, nil
	case Replace:
		if loaded {
			old.Unload(h)
		}
		p.placements[name] = pl
	case Ignore:
		return old, nil
	default:
		return nil, &DuplicatePlacementError{Name: name}
	}

	if loaded {
		return pl, pl.Load(h)
	}
	return pl, nil
}

// AddPlacements adds each placement with the same policy and stops at the
// first error.
func (p *Profile) AddPlacements(pls []Placement, policy ConflictPolicy) error {
	for _, pl := range pls {
		if _, err := p.AddPlacement(pl, policy); err != nil {
			return err
		}
	}
	return nil
}

// Dispose unloads the profile if it is loaded and releases its host slot.
func (p *Profile) Dispose() error {
	var err error
	switch p.state {
	case Unloaded:
	case LoadCompleted:
		err = p.Unload()
	default:
		return &InvalidLifecycleTransitionError{Op: "dispose", State: p.state}
	}
	if h := p.host; h != nil && h.active == p {
		h.active = nil
	}
	p.host = nil
	return err
}
