package checkout

// State is a checkout attempt's position in the state machine. The happy path
// is linear; Failed is an absorbing state reachable from every non-terminal
// state.
type State string

const (
	StateIdle                   State = "IDLE"
	StateIntentRequested        State = "INTENT_REQUESTED"
	StateIntentAcquired         State = "INTENT_ACQUIRED"
	StateAuthorizationPending   State = "AUTHORIZATION_PENDING"
	StateAuthorizationConfirmed State = "AUTHORIZATION_CONFIRMED"
	StateOrderSubmitting        State = "ORDER_SUBMITTING"
	StateCompleted              State = "COMPLETED"
	StateFailed                 State = "FAILED"
)

// transitions is the allowed forward edge per state. Failed is reachable from
// every non-terminal state and is not listed.
var transitions = map[State]State{
	StateIdle:                   StateIntentRequested,
	StateIntentRequested:        StateIntentAcquired,
	StateIntentAcquired:         StateAuthorizationPending,
	StateAuthorizationPending:   StateAuthorizationConfirmed,
	StateAuthorizationConfirmed: StateOrderSubmitting,
	StateOrderSubmitting:        StateCompleted,
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s State) CanTransitionTo(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return transitions[s] == next
}

func (s State) String() string {
	return string(s)
}
