package app

import (
	"sync/atomic"

	"github.com/bft-labs/meetbot/internal/domain"
	"github.com/bft-labs/meetbot/pkg/log"
)

// State represents the lifecycle state of the controller.
type State int32

const (
	StateUnstarted State = iota
	StateConfiguring
	StateInitializing
	StateAuthorizing
	StateRunning
	StateShuttingDown
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "Unstarted"
	case StateConfiguring:
		return "Configuring"
	case StateInitializing:
		return "Initializing"
	case StateAuthorizing:
		return "Authorizing"
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle holds the controller state machine.
//
// Startup states only advance to their immediate successor. ShuttingDown can be
// entered from any state that is not already shutting down, and Terminated is
// absorbing. The state lives in an atomic so the signal goroutine never waits
// on a lock the main goroutine might hold.
type Lifecycle struct {
	state        atomic.Int32
	logger       log.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a lifecycle in StateUnstarted.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	if logger == nil {
		logger = log.Discard
	}
	return &Lifecycle{
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// Terminated reports whether the absorbing state has been reached.
func (l *Lifecycle) Terminated() bool {
	return l.State() == StateTerminated
}

// TransitionTo attempts to move to newState.
// Returns domain.ErrTerminated after termination and domain.ErrInvalidTransition
// for any other disallowed move; the state is unchanged in both cases.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	for {
		oldState := l.State()
		if err := checkTransition(oldState, newState); err != nil {
			return err
		}
		if !l.state.CompareAndSwap(int32(oldState), int32(newState)) {
			continue
		}

		if l.eventEmitter != nil {
			l.eventEmitter.OnStateChange(oldState, newState, reason)
		}
		l.logger.Info("state transition",
			log.String("from", oldState.String()),
			log.String("to", newState.String()),
			log.String("reason", reason),
		)
		return nil
	}
}

func checkTransition(from, to State) error {
	switch {
	case from == StateTerminated:
		return domain.ErrTerminated
	case to == StateShuttingDown:
		if from == StateShuttingDown {
			return domain.ErrInvalidTransition
		}
		return nil
	case to == StateTerminated:
		if from == StateShuttingDown {
			return nil
		}
	case from < StateRunning && to == from+1:
		return nil
	}
	return domain.ErrInvalidTransition
}
