package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rewardcore/internal/domain/container"
	"rewardcore/internal/domain/gamestate"
)

var (
	shiny = container.Definition{Name: "Shiny", SupportsInstantiate: true, Capabilities: 0b111}
	chest = container.Definition{Name: "Chest", SupportsInstantiate: true, Capabilities: 0b001}
	plain = container.Definition{Name: "Plain", SupportsInstantiate: true, Capabilities: 0}
	totem = container.Definition{Name: "Totem", SupportsInstantiate: false, Capabilities: 0b111}
)

type recordLogger struct {
	infos  []string
	warns  []string
	errors []string
}

func (r *recordLogger) Info(msg string, _ ...any)  { r.infos = append(r.infos, msg) }
func (r *recordLogger) Warn(msg string, _ ...any)  { r.warns = append(r.warns, msg) }
func (r *recordLogger) Error(msg string, _ ...any) { r.errors = append(r.errors, msg) }

type resolution struct {
	placement string
	container string
	rule      Rule
}

type recordObserver struct {
	got []resolution
}

func (o *recordObserver) ContainerResolved(placement, name string, rule Rule) {
	o.got = append(o.got, resolution{placement: placement, container: name, rule: rule})
}

type testHost struct {
	*Host
	log    *recordLogger
	obs    *recordObserver
	ledger *gamestate.Ledger
}

// newTestHost builds a host with Shiny as both defaults plus the extra
// definitions.
func newTestHost(t *testing.T, extra ...container.Definition) testHost {
	t.Helper()
	reg, err := container.NewRegistry(shiny, shiny)
	require.NoError(t, err)
	for _, def := range extra {
		require.NoError(t, reg.Define(def))
	}
	log := &recordLogger{}
	obs := &recordObserver{}
	ledger := gamestate.NewLedger()
	h, err := NewHost(HostConfig{Logger: log, Containers: reg, Game: ledger, Observer: obs})
	require.NoError(t, err)
	return testHost{Host: h, log: log, obs: obs, ledger: ledger}
}

func itemPreferring(name, preferred string) *ResourceItem {
	it := NewResourceItem(name, "gold", 1)
	it.Preferred = preferred
	return it
}

// countingItem records hook calls.
type countingItem struct {
	ResourceItem
	loads   int
	unloads int
}

func (i *countingItem) OnLoad(*Host) error   { i.loads++; return nil }
func (i *countingItem) OnUnload(*Host) error { i.unloads++; return nil }

func newCountingItem(name string) *countingItem {
	return &countingItem{ResourceItem: *NewResourceItem(name, "gold", 1)}
}

func attachedProfile(t *testing.T, th testHost) *Profile {
	t.Helper()
	p := NewProfile()
	require.NoError(t, th.Attach(p))
	return p
}
