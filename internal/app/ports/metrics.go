package ports

import "rewardcore/internal/domain/fulfillment"

type SessionMetrics interface {
	RecordOpened()
	RecordClosed()
	RecordConflict()
	RecordFailure()
	RecordClaim(ok bool)
}

// ResolutionMetrics receives every container decision of an open session.
type ResolutionMetrics = fulfillment.Observer
