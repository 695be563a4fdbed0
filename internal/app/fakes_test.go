package app

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/meetbot/internal/domain"
)

// fakeClient records every call. codes overrides the result per operation.
type fakeClient struct {
	mu    sync.Mutex
	calls []string
	codes map[string]domain.ResultCode
	args  []string

	leaves     atomic.Int32
	releases   atomic.Int32
	leavePanic bool
	leaveHook  func()
}

func newFakeClient() *fakeClient {
	return &fakeClient{codes: map[string]domain.ResultCode{}}
}

func (f *fakeClient) record(op string) domain.ResultCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.codes[op]
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Configure(args []string) domain.ResultCode {
	f.mu.Lock()
	f.args = args
	f.mu.Unlock()
	return f.record("configure")
}

func (f *fakeClient) Initialize(context.Context) domain.ResultCode {
	return f.record("initialize")
}

func (f *fakeClient) Authorize(context.Context) domain.ResultCode {
	return f.record("authorize")
}

func (f *fakeClient) Leave(context.Context) domain.ResultCode {
	f.leaves.Add(1)
	if f.leaveHook != nil {
		f.leaveHook()
	}
	if f.leavePanic {
		panic("leave exploded")
	}
	return f.record("leave")
}

func (f *fakeClient) Release() {
	f.releases.Add(1)
	f.record("release")
}

// fakeRecorder counts recorder callbacks.
type fakeRecorder struct {
	mu        sync.Mutex
	steps     map[string]domain.ResultCode
	ticks     int
	shutdowns []string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{steps: map[string]domain.ResultCode{}}
}

func (r *fakeRecorder) StepResult(step string, code domain.ResultCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[step] = code
}

func (r *fakeRecorder) Tick(time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
}

func (r *fakeRecorder) Shutdown(trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdowns = append(r.shutdowns, trigger)
}

func (r *fakeRecorder) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

func (r *fakeRecorder) Shutdowns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.shutdowns...)
}

// fakeSignals captures the channel passed to signal.Notify.
type fakeSignals struct {
	mu   sync.Mutex
	ch   chan<- os.Signal
	sigs []os.Signal
	set  chan struct{}
}

func newFakeSignals() *fakeSignals {
	return &fakeSignals{set: make(chan struct{})}
}

func (f *fakeSignals) Notify(c chan<- os.Signal, sig ...os.Signal) {
	f.mu.Lock()
	f.ch = c
	f.sigs = sig
	f.mu.Unlock()
	close(f.set)
}

func (f *fakeSignals) Send(sig os.Signal) {
	<-f.set
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	ch <- sig
}

// exitRecorder replaces os.Exit.
type exitRecorder struct {
	codes chan int
}

func newExitRecorder() *exitRecorder {
	return &exitRecorder{codes: make(chan int, 4)}
}

func (e *exitRecorder) Exit(code int) {
	e.codes <- code
}
