// Package container describes the container implementations a host can use to
// present items, and the registry they are defined in.
package container

import (
	"fmt"
	"math/bits"
	"strings"
)

// Capability is a bitmask of optional container behaviours. Bits 0-7 belong to
// the kernel, bits 8-31 are host-defined and opaque here.
type Capability uint32

const (
	// PayCosts: the container can enforce a placement cost.
	PayCosts Capability = 1 << 0

	// KernelMask covers every bit reserved for kernel capabilities.
	KernelMask Capability = 0xFF
	// KernelDefined is the set of kernel bits that currently have a meaning.
	KernelDefined = PayCosts

	hostShift    = 8
	maxHostIndex = 32 - hostShift - 1
)

// HostCapability returns host-defined capability number n (0-23).
func HostCapability(n int) (Capability, error) {
	if n < 0 || n > maxHostIndex {
		return 0, fmt.Errorf("host capability index %d out of range [0,%d]", n, maxHostIndex)
	}
	return Capability(1) << (hostShift + n), nil
}

func (c Capability) Has(other Capability) bool { return c&other == other }

func (c Capability) Count() int { return bits.OnesCount32(uint32(c)) }

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	parts := make([]string, 0, c.Count())
	for i := 0; i < 32; i++ {
		bit := Capability(1) << i
		if c&bit == 0 {
			continue
		}
		switch {
		case bit == PayCosts:
			parts = append(parts, "pay_costs")
		case i < hostShift:
			parts = append(parts, fmt.Sprintf("kernel_%d", i))
		default:
			parts = append(parts, fmt.Sprintf("host_%d", i-hostShift))
		}
	}
	return strings.Join(parts, "|")
}

// ParseCapability accepts the names produced by String.
func ParseCapability(name string) (Capability, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	switch {
	case name == "pay_costs":
		return PayCosts, nil
	case strings.HasPrefix(name, "host_"):
		var n int
		if _, err := fmt.Sscanf(name, "host_%d", &n); err != nil {
			return 0, fmt.Errorf("parse capability %q: %w", name, err)
		}
		return HostCapability(n)
	case strings.HasPrefix(name, "kernel_"):
		var n int
		if _, err := fmt.Sscanf(name, "kernel_%d", &n); err != nil || n < 0 || n >= hostShift {
			return 0, fmt.Errorf("parse capability %q: invalid kernel bit", name)
		}
		return Capability(1) << n, nil
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}

// Definition declares one container implementation.
type Definition struct {
	Name                string     `json:"name" yaml:"name"`
	SupportsInstantiate bool       `json:"supports_instantiate" yaml:"instantiate"`
	Capabilities        Capability `json:"capabilities" yaml:"-"`
}

// SupportsAll reports whether the container can be used when it has to be
// created from scratch (requireInstantiate) and must provide required.
func (d Definition) SupportsAll(requireInstantiate bool, required Capability) bool {
	if requireInstantiate && !d.SupportsInstantiate {
		return false
	}
	return d.Capabilities.Has(required)
}
