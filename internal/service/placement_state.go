package service

// placementState tracks where a placement is in its lifecycle. Transitions
// only move forward; FAILED is reachable from every state except COMMITTED.
type placementState string

const (
	stateValidating placementState = "VALIDATING"
	stateReserving  placementState = "RESERVING"
	stateAssembling placementState = "ASSEMBLING"
	statePersisting placementState = "PERSISTING"
	stateCommitted  placementState = "COMMITTED"
	stateFailed     placementState = "FAILED"
)

var placementNext = map[placementState]placementState{
	stateValidating: stateReserving,
	stateReserving:  stateAssembling,
	stateAssembling: statePersisting,
	statePersisting: stateCommitted,
}

func (s placementState) canTransitionTo(next placementState) bool {
	if next == stateFailed {
		return s != stateCommitted
	}
	return placementNext[s] == next
}

// String representation (for logging)
func (s placementState) String() string {
	return string(s)
}

type placement struct {
	state placementState
}

func newPlacement() *placement {
	return &placement{state: stateValidating}
}

func (p *placement) advance(next placementState) error {
	if !p.state.canTransitionTo(next) {
		return errIllegalTransition
	}
	p.state = next
	return nil
}
