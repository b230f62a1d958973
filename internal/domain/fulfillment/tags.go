package fulfillment

import (
	"encoding/json"

	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/lifecycle"
)

// Tagged is anything a tag can attach to: an item, a location or a placement.
type Tagged interface {
	Tags() *TagSet
}

type Tag interface {
	Kind() string
	Lifecycle() *lifecycle.State
	OnLoad(h *Host, parent Tagged) error
	OnUnload(h *Host, parent Tagged) error
}

// Capability markers. A TagSet indexes its tags against these when they are
// added, so the resolver never scans tag lists.
type (
	CapabilityRequester interface {
		RequestedCapabilities() container.Capability
	}
	ContainerVeto interface {
		UnsupportedContainer() string
	}
	OriginalContainerSource interface {
		OriginalContainer() OriginalContainerInfo
	}
)

type OriginalContainerInfo struct {
	Name     string
	Force    bool
	Priority bool
}

// TagBase gives a tag no-op hooks and its lifecycle state.
type TagBase struct {
	state lifecycle.State
}

func (t *TagBase) Lifecycle() *lifecycle.State { return &t.state }
func (*TagBase) OnLoad(*Host, Tagged) error    { return nil }
func (*TagBase) OnUnload(*Host, Tagged) error  { return nil }

func loadTag(h *Host, t Tag, parent Tagged) {
	t.Lifecycle().LoadOnce(h.Log, "tag "+t.Kind(), func() error { return t.OnLoad(h, parent) })
}

func unloadTag(h *Host, t Tag, parent Tagged) {
	t.Lifecycle().UnloadOnce(h.Log, "tag "+t.Kind(), func() error { return t.OnUnload(h, parent) })
}

// TagSet is an ordered tag list with a capability index.
type TagSet struct {
	tags      []Tag
	requested container.Capability
	vetoes    []string
	originals []OriginalContainerInfo
}

func NewTagSet(tags ...Tag) TagSet {
	var s TagSet
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

func (s *TagSet) Add(t Tag) {
	if t == nil {
		return
	}
	s.tags = append(s.tags, t)
	s.index(t)
}

// Remove drops t and rebuilds the index.
func (s *TagSet) Remove(t Tag) bool {
	for i, cur := range s.tags {
		if cur != t {
			continue
		}
		rest := append(append([]Tag(nil), s.tags[:i]...), s.tags[i+1:]...)
		*s = NewTagSet(rest...)
		return true
	}
	return false
}

func (s *TagSet) index(t Tag) {
	if r, ok := t.(CapabilityRequester); ok {
		s.requested |= r.RequestedCapabilities()
	}
	if v, ok := t.(ContainerVeto); ok {
		if name := v.UnsupportedContainer(); name != "" {
			s.vetoes = append(s.vetoes, name)
		}
	}
	if o, ok := t.(OriginalContainerSource); ok {
		s.originals = append(s.originals, o.OriginalContainer())
	}
}

func (s *TagSet) All() []Tag { return append([]Tag(nil), s.tags...) }

func (s *TagSet) Len() int { return len(s.tags) }

func (s *TagSet) RequestedCapabilities() container.Capability { return s.requested }

func (s *TagSet) UnsupportedContainers() []string { return append([]string(nil), s.vetoes...) }

// OriginalContainer returns the first original-container declaration.
func (s *TagSet) OriginalContainer() (OriginalContainerInfo, bool) {
	if len(s.originals) == 0 {
		return OriginalContainerInfo{}, false
	}
	return s.originals[0], true
}

func (s *TagSet) Load(h *Host, parent Tagged) {
	for _, t := range s.tags {
		loadTag(h, t, parent)
	}
}

func (s *TagSet) Unload(h *Host, parent Tagged) {
	for i := len(s.tags) - 1; i >= 0; i-- {
		unloadTag(h, s.tags[i], parent)
	}
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	raws, err := TagKinds.EncodeList(s.tags)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raws)
}

func (s *TagSet) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	tags, err := TagKinds.DecodeList(raws)
	if err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
