// Package eventloop implements the cooperative single-goroutine loop the bot
// idles in once startup has succeeded.
//
// Recurring tasks and posted notifications all run on the goroutine that
// called Run, one at a time. A callback that blocks stalls every other one.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/meetbot/internal/domain"
	"github.com/bft-labs/meetbot/pkg/log"
)

var (
	// ErrInvalidTask is returned by AddTask for a nil func or non-positive period.
	ErrInvalidTask = errors.New("eventloop: invalid task")

	// ErrInboxFull is returned when the loop cannot accept more work.
	ErrInboxFull = errors.New("eventloop: inbox full")
)

// DefaultInboxSize bounds the number of pending notifications.
const DefaultInboxSize = 64

// State is the loop state. Running is entered once and never left.
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "Running"
	}
	return "Idle"
}

// TaskFunc is a recurring task. Returning true keeps it scheduled.
type TaskFunc func(now time.Time) bool

type task struct {
	name   string
	period time.Duration
	fn     TaskFunc
	next   time.Time
}

// Loop is a cooperative scheduler with a table of recurring tasks and an inbox
// of one-shot notifications.
type Loop struct {
	logger   log.Logger
	state    atomic.Int32
	inbox    chan func()
	quit     chan struct{}
	quitOnce sync.Once

	// owned by the Run goroutine
	tasks []*task
}

// New creates an idle loop.
func New(logger log.Logger) *Loop {
	if logger == nil {
		logger = log.Discard
	}
	return &Loop{
		logger: logger,
		inbox:  make(chan func(), DefaultInboxSize),
		quit:   make(chan struct{}),
	}
}

// State returns the loop state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// AddTask registers fn to run every period, first one period after the loop
// picks the registration up. Safe from any goroutine, before or during Run.
func (l *Loop) AddTask(name string, period time.Duration, fn TaskFunc) error {
	if fn == nil || period <= 0 {
		return ErrInvalidTask
	}
	t := &task{name: name, period: period, fn: fn}
	if !l.Post(func() { l.schedule(t) }) {
		return ErrInboxFull
	}
	return nil
}

// Post queues fn to run on the loop goroutine. It never blocks and returns
// false when the inbox is full.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.inbox <- fn:
		return true
	default:
		return false
	}
}

// Quit makes Run return nil. Safe to call more than once.
func (l *Loop) Quit() {
	l.quitOnce.Do(func() { close(l.quit) })
}

// Run services tasks and notifications until Quit is called (nil) or ctx is
// done (ctx.Err()). It can only be called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return domain.ErrAlreadyRunning
	}
	l.logger.Info("event loop running")

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		l.arm(timer)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			l.logger.Info("event loop quit")
			return nil
		case fn := <-l.inbox:
			l.dispatch(fn)
		case <-timer.C:
			l.fire(time.Now())
		}
	}
}

func (l *Loop) schedule(t *task) {
	t.next = time.Now().Add(t.period)
	l.tasks = append(l.tasks, t)
	l.logger.Debug("task scheduled", log.String("task", t.name), log.Duration("period", t.period))
}

// arm points the timer at the earliest due task.
func (l *Loop) arm(timer *time.Timer) {
	if len(l.tasks) == 0 {
		timer.Stop()
		return
	}
	next := l.tasks[0].next
	for _, t := range l.tasks[1:] {
		if t.next.Before(next) {
			next = t.next
		}
	}
	timer.Reset(time.Until(next))
}

// fire runs every due task in registration order.
func (l *Loop) fire(now time.Time) {
	kept := l.tasks[:0]
	for _, t := range l.tasks {
		if now.Before(t.next) {
			kept = append(kept, t)
			continue
		}
		if !l.invoke(t, now) {
			l.logger.Debug("task removed", log.String("task", t.name))
			continue
		}
		t.next = t.next.Add(t.period)
		if !t.next.After(now) {
			// Fell behind; skip missed runs instead of bursting.
			t.next = now.Add(t.period)
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(l.tasks); i++ {
		l.tasks[i] = nil
	}
	l.tasks = kept
}

func (l *Loop) invoke(t *task, now time.Time) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", log.String("task", t.name), log.Any("panic", r))
			keep = false
		}
	}()
	return t.fn(now)
}

func (l *Loop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("notification panicked", log.Any("panic", r))
		}
	}()
	fn()
}
