package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/cost"
)

func TestChooseContainer_ItemPreferenceWins(t *testing.T) {
	th := newTestHost(t, chest)
	loc := NewSceneLocation("cliff", "town")

	name, rule := ChooseContainer(th.Host, ResolveInput{
		Placement: "cliff",
		Location:  loc,
		Items:     []Item{itemPreferring("a", "Chest"), itemPreferring("b", "Chest")},
	})

	assert.Equal(t, "Chest", name)
	assert.Equal(t, RuleItemPreference, rule)
}

func TestChooseContainer_ForceDefault(t *testing.T) {
	th := newTestHost(t, chest)
	loc := NewSceneLocation("cliff", "town")
	loc.ForceDefault = true
	tags := NewTagSet(&OriginalContainerTag{Container: "Chest", Force: true})

	name, rule := ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Tags:     []*TagSet{&tags},
		Items:    []Item{itemPreferring("a", "Chest")},
	})

	assert.Equal(t, "Shiny", name)
	assert.Equal(t, RuleForcedDefault, rule)
}

func TestChooseContainer_NoLocationUsesDefault(t *testing.T) {
	th := newTestHost(t, chest)

	name, rule := ChooseContainer(th.Host, ResolveInput{Items: []Item{itemPreferring("a", "Chest")}})

	assert.Equal(t, "Shiny", name)
	assert.Equal(t, RuleForcedDefault, rule)
}

func TestChooseContainer_CapabilityGate(t *testing.T) {
	th := newTestHost(t, plain, chest)
	loc := NewSceneLocation("cliff", "town")
	items := []Item{itemPreferring("a", "Plain"), itemPreferring("b", "Chest")}

	name, rule := ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Cost:     cost.NewResourceCost("gold", 5),
		Items:    items,
	})
	assert.Equal(t, "Chest", name, "Plain cannot enforce a cost")
	assert.Equal(t, RuleItemPreference, rule)

	hostBit, err := container.HostCapability(0)
	require.NoError(t, err)
	tags := NewTagSet(&CapabilityTag{Capabilities: hostBit})
	name, _ = ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Tags:     []*TagSet{&tags},
		Items:    items,
	})
	assert.Equal(t, "Shiny", name, "neither preference has the host bit")
}

func TestChooseContainer_VetoedPreferenceIsSkipped(t *testing.T) {
	th := newTestHost(t, chest)
	loc := NewSceneLocation("cliff", "town")
	loc.TagList = NewTagSet(&UnsupportedContainerTag{Container: "Chest"})
	placementTags := NewTagSet()

	name, rule := ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Tags:     []*TagSet{&placementTags, loc.Tags()},
		Items:    []Item{itemPreferring("a", "Chest")},
	})

	assert.Equal(t, "Shiny", name)
	assert.Equal(t, RuleSingleDefault, rule)
}

func TestChooseContainer_LocationSupportFiltersPreferences(t *testing.T) {
	th := newTestHost(t, chest, plain)
	loc := NewSceneLocation("cliff", "town")
	loc.Allowed = []string{"Plain", "Shiny"}

	name, _ := ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Items:    []Item{itemPreferring("a", "Chest"), itemPreferring("b", "Plain")},
	})

	assert.Equal(t, "Plain", name)
}

func TestChooseContainer_ForcedButIncapableWarns(t *testing.T) {
	th := newTestHost(t, plain)
	loc := NewSceneLocation("cliff", "town")
	tags := NewTagSet(&OriginalContainerTag{Container: "Plain", Force: true})

	name, rule := ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Cost:     cost.NewFlagCost("key"),
		Tags:     []*TagSet{&tags},
	})

	assert.Equal(t, "Plain", name)
	assert.Equal(t, RuleOriginalForced, rule)
	assert.Len(t, th.log.warns, 1)
}

func TestChooseContainer_PriorityOriginal(t *testing.T) {
	th := newTestHost(t, chest, plain)
	loc := NewSceneLocation("cliff", "town")
	tags := NewTagSet(&OriginalContainerTag{Container: "Plain", Priority: true})
	items := []Item{itemPreferring("a", "Chest")}

	name, rule := ChooseContainer(th.Host, ResolveInput{Location: loc, Tags: []*TagSet{&tags}, Items: items})
	assert.Equal(t, "Plain", name)
	assert.Equal(t, RuleOriginalPriority, rule)

	// Incapable priority originals fall through to item preferences.
	name, rule = ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Cost:     cost.NewFlagCost("key"),
		Tags:     []*TagSet{&tags},
		Items:    items,
	})
	assert.Equal(t, "Chest", name)
	assert.Equal(t, RuleItemPreference, rule)
	assert.Empty(t, th.log.warns)
}

func TestChooseContainer_OriginalFallback(t *testing.T) {
	th := newTestHost(t, chest)
	loc := NewSceneLocation("cliff", "town")
	tags := NewTagSet(&OriginalContainerTag{Container: "Chest"})

	name, rule := ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Tags:     []*TagSet{&tags},
		Items:    []Item{itemPreferring("a", "Missing")},
	})

	assert.Equal(t, "Chest", name)
	assert.Equal(t, RuleOriginalFallback, rule)
}

func TestChooseContainer_VetoedPriorityOriginalStillFallsBack(t *testing.T) {
	th := newTestHost(t, chest)
	loc := NewSceneLocation("cliff", "town")
	tags := NewTagSet(
		&OriginalContainerTag{Container: "Chest", Priority: true},
		&UnsupportedContainerTag{Container: "Chest"},
	)

	name, rule := ChooseContainer(th.Host, ResolveInput{
		Location: loc,
		Tags:     []*TagSet{&tags},
		Items:    []Item{itemPreferring("a", "Chest")},
	})

	assert.Equal(t, "Chest", name)
	assert.Equal(t, RuleOriginalFallback, rule)
}

func TestChooseContainer_MultiDefault(t *testing.T) {
	reg, err := container.NewRegistry(shiny, chest)
	require.NoError(t, err)
	h, err := NewHost(HostConfig{Containers: reg})
	require.NoError(t, err)
	loc := NewSceneLocation("cliff", "town")
	two := []Item{NewFlagItem("a", "x"), NewFlagItem("b", "y")}

	name, rule := ChooseContainer(h, ResolveInput{Location: loc, Items: two})
	assert.Equal(t, "Chest", name)
	assert.Equal(t, RuleMultiDefault, rule)

	name, rule = ChooseContainer(h, ResolveInput{Location: loc, Items: two[:1]})
	assert.Equal(t, "Shiny", name)
	assert.Equal(t, RuleSingleDefault, rule)

	hostBit, err := container.HostCapability(3)
	require.NoError(t, err)
	tags := NewTagSet(&CapabilityTag{Capabilities: hostBit})
	name, _ = ChooseContainer(h, ResolveInput{Location: loc, Tags: []*TagSet{&tags}, Items: two})
	assert.Equal(t, "Shiny", name, "multi default lacks the requested bit")
}

func TestChooseContainer_NonInstantiablePreferenceIsSkipped(t *testing.T) {
	th := newTestHost(t, totem)
	loc := NewSceneLocation("cliff", "town")

	name, _ := ChooseContainer(th.Host, ResolveInput{Location: loc, Items: []Item{itemPreferring("a", "Totem")}})

	assert.Equal(t, "Shiny", name)
}

func TestResolveInput_RequestedCapabilities(t *testing.T) {
	hostBit, err := container.HostCapability(1)
	require.NoError(t, err)
	a := NewTagSet(&CapabilityTag{Capabilities: hostBit})

	in := ResolveInput{Tags: []*TagSet{&a, nil}}
	assert.Equal(t, hostBit, in.RequestedCapabilities())

	in.Cost = cost.NewFlagCost("key")
	assert.Equal(t, hostBit|container.PayCosts, in.RequestedCapabilities())
}
