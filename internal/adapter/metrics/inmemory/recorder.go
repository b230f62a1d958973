package inmemory

import (
	"sync"

	"rewardcore/internal/domain/fulfillment"
)

type Snapshot struct {
	SessionsOpened  uint64            `json:"sessions_opened"`
	SessionsClosed  uint64            `json:"sessions_closed"`
	SessionConflict uint64            `json:"session_conflict"`
	SessionFailure  uint64            `json:"session_failure"`
	ClaimTotal      uint64            `json:"claim_total"`
	ClaimSuccess    uint64            `json:"claim_success"`
	ByRule          map[string]uint64 `json:"by_rule"`
	ByContainer     map[string]uint64 `json:"by_container"`
}

// Recorder counts session outcomes and container resolutions in memory.
type Recorder struct {
	mu          sync.Mutex
	opened      uint64
	closed      uint64
	conflict    uint64
	failure     uint64
	claims      uint64
	claimsOK    uint64
	byRule      map[string]uint64
	byContainer map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byRule:      map[string]uint64{},
		byContainer: map[string]uint64{},
	}
}

func (r *Recorder) RecordOpened() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened++
}

func (r *Recorder) RecordClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

func (r *Recorder) RecordConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflict++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

func (r *Recorder) RecordClaim(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims++
	if ok {
		r.claimsOK++
	}
}

func (r *Recorder) ContainerResolved(_ string, container string, rule fulfillment.Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRule[string(rule)]++
	r.byContainer[container]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		SessionsOpened:  r.opened,
		SessionsClosed:  r.closed,
		SessionConflict: r.conflict,
		SessionFailure:  r.failure,
		ClaimTotal:      r.claims,
		ClaimSuccess:    r.claimsOK,
		ByRule:          make(map[string]uint64, len(r.byRule)),
		ByContainer:     make(map[string]uint64, len(r.byContainer)),
	}
	for k, v := range r.byRule {
		out.ByRule[k] = v
	}
	for k, v := range r.byContainer {
		out.ByContainer[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
