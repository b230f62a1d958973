package fulfillment

import (
	"errors"
	"fmt"
)

var (
	ErrHostMisconfigured = errors.New("host misconfigured")
	ErrNotAttached       = errors.New("profile is not attached to a host")
	ErrInvalidPlacement  = errors.New("invalid placement")
	ErrCannotPay         = errors.New("placement cost cannot be paid")
	ErrUnknownPolicy     = errors.New("unknown conflict policy")
)

// InvalidLifecycleTransitionError reports a profile operation attempted from
// the wrong load state. It always indicates a host programming error.
type InvalidLifecycleTransitionError struct {
	Op    string
	State LoadState
}

func (e *InvalidLifecycleTransitionError) Error() string {
	return fmt.Sprintf("cannot %s profile in state %s", e.Op, e.State)
}

type DuplicatePlacementError struct {
	Name string
}

func (e *DuplicatePlacementError) Error() string {
	return fmt.Sprintf("placement %q already exists", e.Name)
}

// UnsupportedContainerError: the location rejects the resolved container and
// the single-item default as well.
type UnsupportedContainerError struct {
	Placement string
	Location  string
	Container string
}

func (e *UnsupportedContainerError) Error() string {
	return fmt.Sprintf("location %q of placement %q supports neither %q nor the default container", e.Location, e.Placement, e.Container)
}

type ProfileAlreadyActiveError struct{}

func (e *ProfileAlreadyActiveError) Error() string {
	return "another profile is already attached to this host"
}
