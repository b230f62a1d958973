package fulfillment

import (
	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/cost"
)

// Rule names the resolver step that produced a container.
type Rule string

const (
	RuleForcedDefault    Rule = "forced_default"
	RuleOriginalForced   Rule = "original_forced"
	RuleOriginalPriority Rule = "original_priority"
	RuleItemPreference   Rule = "item_preference"
	RuleOriginalFallback Rule = "original_fallback"
	RuleMultiDefault     Rule = "multi_default"
	RuleSingleDefault    Rule = "single_default"
	RuleCached           Rule = "cached"
)

// ResolveInput is everything the resolver looks at. Tags holds the placement
// tag set first, then the location's. Location is nil when there is no
// container context.
type ResolveInput struct {
	Placement string
	Cost      cost.Cost
	Tags      []*TagSet
	Location  ContainerLocation
	Items     []Item
}

// RequestedCapabilities ORs every tag request, plus PayCosts when a cost is set.
func (in ResolveInput) RequestedCapabilities() container.Capability {
	var caps container.Capability
	for _, ts := range in.Tags {
		if ts != nil {
			caps |= ts.RequestedCapabilities()
		}
	}
	if in.Cost != nil {
		caps |= container.PayCosts
	}
	return caps
}

func (in ResolveInput) unsupported() map[string]bool {
	out := map[string]bool{}
	for _, ts := range in.Tags {
		if ts == nil {
			continue
		}
		for _, name := range ts.UnsupportedContainers() {
			out[name] = true
		}
	}
	return out
}

func (in ResolveInput) original() (OriginalContainerInfo, bool) {
	for _, ts := range in.Tags {
		if ts == nil {
			continue
		}
		if info, ok := ts.OriginalContainer(); ok {
			return info, true
		}
	}
	return OriginalContainerInfo{}, false
}

// ChooseContainer picks the container for a placement. First match wins:
// forced default, forced or priority original container, first capable item
// preference, then the fallback chain down to the single-item default.
func ChooseContainer(h *Host, in ResolveInput) (string, Rule) {
	reg := h.Containers
	single := reg.DefaultSingle()

	if in.Location == nil || in.Location.ForceDefaultContainer() {
		return single.Name, RuleForcedDefault
	}

	requested := in.RequestedCapabilities()
	unsupported := in.unsupported()
	original, hasOriginal := in.original()

	if hasOriginal && (original.Force || original.Priority) {
		def, ok := reg.Get(original.Name)
		if ok && !unsupported[original.Name] && def.SupportsAll(false, requested) {
			if original.Force {
				return original.Name, RuleOriginalForced
			}
			return original.Name, RuleOriginalPriority
		}
		if original.Force {
			h.Log.Warn("forced container does not meet placement requirements",
				"placement", in.Placement,
				"container", original.Name,
				"registered", ok,
				"vetoed", unsupported[original.Name],
				"requested", requested.String())
			return original.Name, RuleOriginalForced
		}
	}

	for _, it := range in.Items {
		name := it.PreferredContainer()
		if name == "" || unsupported[name] || !in.Location.Supports(name) {
			continue
		}
		if def, ok := reg.Get(name); ok && def.SupportsAll(true, requested) {
			return name, RuleItemPreference
		}
	}

	// A priority original container that already failed above is checked
	// again here with instantiate required. Vetoes are not consulted, so a
	// vetoed original still wins at this step.
	if hasOriginal {
		if def, ok := reg.Get(original.Name); ok && def.SupportsAll(true, requested) {
			return original.Name, RuleOriginalFallback
		}
	}

	if multi := reg.DefaultMulti(); len(in.Items) > 1 && !unsupported[multi.Name] && multi.SupportsAll(true, requested) {
		return multi.Name, RuleMultiDefault
	}

	return single.Name, RuleSingleDefault
}
