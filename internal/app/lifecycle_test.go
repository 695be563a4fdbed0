package app

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bft-labs/meetbot/internal/domain"
)

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func lifecycleAt(s State) *Lifecycle {
	l := NewLifecycle(nil, nil)
	l.state.Store(int32(s))
	return l
}

func TestNewLifecycle(t *testing.T) {
	l := NewLifecycle(nil, nil)

	if l.State() != StateUnstarted {
		t.Errorf("initial state = %v, want Unstarted", l.State())
	}
	if l.Terminated() {
		t.Error("Terminated() = true for a new lifecycle")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnstarted, "Unstarted"},
		{StateConfiguring, "Configuring"},
		{StateInitializing, "Initializing"},
		{StateAuthorizing, "Authorizing"},
		{StateRunning, "Running"},
		{StateShuttingDown, "ShuttingDown"},
		{StateTerminated, "Terminated"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestLifecycle_TransitionTo_ValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
	}{
		{"unstarted to configuring", StateUnstarted, StateConfiguring},
		{"configuring to initializing", StateConfiguring, StateInitializing},
		{"initializing to authorizing", StateInitializing, StateAuthorizing},
		{"authorizing to running", StateAuthorizing, StateRunning},
		{"unstarted to shutting down", StateUnstarted, StateShuttingDown},
		{"configuring to shutting down", StateConfiguring, StateShuttingDown},
		{"authorizing to shutting down", StateAuthorizing, StateShuttingDown},
		{"running to shutting down", StateRunning, StateShuttingDown},
		{"shutting down to terminated", StateShuttingDown, StateTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lifecycleAt(tt.from)

			if err := l.TransitionTo(tt.to, "test"); err != nil {
				t.Fatalf("TransitionTo() error = %v", err)
			}
			if l.State() != tt.to {
				t.Errorf("state = %v after transition, want %v", l.State(), tt.to)
			}
		})
	}
}

func TestLifecycle_TransitionTo_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr error
	}{
		{"unstarted to initializing", StateUnstarted, StateInitializing, domain.ErrInvalidTransition},
		{"unstarted to running", StateUnstarted, StateRunning, domain.ErrInvalidTransition},
		{"configuring to configuring", StateConfiguring, StateConfiguring, domain.ErrInvalidTransition},
		{"authorizing to initializing", StateAuthorizing, StateInitializing, domain.ErrInvalidTransition},
		{"running to authorizing", StateRunning, StateAuthorizing, domain.ErrInvalidTransition},
		{"running to terminated", StateRunning, StateTerminated, domain.ErrInvalidTransition},
		{"shutting down twice", StateShuttingDown, StateShuttingDown, domain.ErrInvalidTransition},
		{"shutting down to running", StateShuttingDown, StateRunning, domain.ErrInvalidTransition},
		{"terminated to shutting down", StateTerminated, StateShuttingDown, domain.ErrTerminated},
		{"terminated to configuring", StateTerminated, StateConfiguring, domain.ErrTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lifecycleAt(tt.from)

			err := l.TransitionTo(tt.to, "test")
			if err != tt.wantErr {
				t.Errorf("TransitionTo() error = %v, want %v", err, tt.wantErr)
			}
			if l.State() != tt.from {
				t.Errorf("state changed to %v on invalid transition, want %v", l.State(), tt.from)
			}
		})
	}
}

func TestLifecycle_TransitionTo_EmitsEvents(t *testing.T) {
	emitter := &mockEmitter{}
	l := NewLifecycle(nil, emitter)

	_ = l.TransitionTo(StateConfiguring, "configure")
	_ = l.TransitionTo(StateShuttingDown, "signal")
	_ = l.TransitionTo(StateInitializing, "too late")

	events := emitter.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].previous != StateUnstarted || events[0].current != StateConfiguring {
		t.Errorf("event 0: got %v->%v, want Unstarted->Configuring", events[0].previous, events[0].current)
	}
	if events[1].current != StateShuttingDown || events[1].reason != "signal" {
		t.Errorf("event 1: got %v (%s), want ShuttingDown (signal)", events[1].current, events[1].reason)
	}
}

func TestLifecycle_ConcurrentShutdownTransition(t *testing.T) {
	l := lifecycleAt(StateRunning)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TransitionTo(StateShuttingDown, "race") == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("%d goroutines entered ShuttingDown, want exactly 1", wins.Load())
	}
}
