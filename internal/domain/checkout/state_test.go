package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_HappyPathIsLinear(t *testing.T) {
	path := []State{
		StateIdle,
		StateIntentRequested,
		StateIntentAcquired,
		StateAuthorizationPending,
		StateAuthorizationConfirmed,
		StateOrderSubmitting,
		StateCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransitionTo(path[i+1]),
			"%s -> %s should be legal", path[i], path[i+1])
	}
}

func TestState_FailureReachableFromEveryNonTerminalState(t *testing.T) {
	for _, s := range []State{
		StateIdle,
		StateIntentRequested,
		StateIntentAcquired,
		StateAuthorizationPending,
		StateAuthorizationConfirmed,
		StateOrderSubmitting,
	} {
		assert.True(t, s.CanTransitionTo(StateFailed), "%s -> FAILED should be legal", s)
	}
}

func TestState_TerminalStatesAreAbsorbing(t *testing.T) {
	for _, s := range []State{StateCompleted, StateFailed} {
		assert.True(t, s.IsTerminal())
		assert.False(t, s.CanTransitionTo(StateIdle))
		assert.False(t, s.CanTransitionTo(StateFailed))
		assert.False(t, s.CanTransitionTo(StateCompleted))
	}
}

func TestState_NoSkippingSteps(t *testing.T) {
	assert.False(t, StateIdle.CanTransitionTo(StateIntentAcquired))
	assert.False(t, StateIntentRequested.CanTransitionTo(StateAuthorizationPending))
	assert.False(t, StateAuthorizationPending.CanTransitionTo(StateOrderSubmitting))
	assert.False(t, StateIntentAcquired.CanTransitionTo(StateCompleted))
}

func TestFailure_Retryable(t *testing.T) {
	assert.True(t, (&Failure{Kind: KindOrderCommitFailed, PaymentRef: "cs_1"}).Retryable())
	assert.False(t, (&Failure{Kind: KindOrderCommitFailed}).Retryable())
	assert.False(t, (&Failure{Kind: KindPaymentDeclined, PaymentRef: "cs_1"}).Retryable())
}
