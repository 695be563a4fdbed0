package app

import (
	"context"

	"github.com/bft-labs/meetbot/internal/domain"
	"github.com/bft-labs/meetbot/internal/ports"
	"github.com/bft-labs/meetbot/pkg/log"
)

// Step names as they appear in logs, metrics and StepError.
const (
	StepConfigure  = "configure"
	StepInitialize = "initialize"
	StepAuthorize  = "authorize"
)

type step struct {
	name  string
	state State
	run   func(ctx context.Context, args []string) domain.ResultCode
}

// Sequencer drives the ordered startup pipeline against the meeting client.
type Sequencer struct {
	client    ports.MeetingClient
	lifecycle *Lifecycle
	logger    log.Logger
	recorder  Recorder
	steps     []step
}

// NewSequencer creates a sequencer for configure -> initialize -> authorize.
func NewSequencer(client ports.MeetingClient, lifecycle *Lifecycle, logger log.Logger, recorder Recorder) *Sequencer {
	if logger == nil {
		logger = log.Discard
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Sequencer{
		client:    client,
		lifecycle: lifecycle,
		logger:    logger,
		recorder:  recorder,
		steps: []step{
			{StepConfigure, StateConfiguring, func(_ context.Context, args []string) domain.ResultCode {
				return client.Configure(args)
			}},
			{StepInitialize, StateInitializing, func(ctx context.Context, _ []string) domain.ResultCode {
				return client.Initialize(ctx)
			}},
			{StepAuthorize, StateAuthorizing, func(ctx context.Context, _ []string) domain.ResultCode {
				return client.Authorize(ctx)
			}},
		},
	}
}

// Run executes every step in order and stops at the first non-success code.
// On success the lifecycle is left in StateRunning. Failures are returned as
// *domain.StepError; nothing is retried.
func (s *Sequencer) Run(ctx context.Context, args []string) error {
	for _, st := range s.steps {
		if err := s.lifecycle.TransitionTo(st.state, st.name); err != nil {
			// Shutdown started underneath us; the client must not be touched.
			s.logger.Warn("startup aborted",
				log.String("step", st.name),
				log.String("state", s.lifecycle.State().String()),
				log.Err(err),
			)
			return &domain.StepError{Step: st.name, Code: domain.ResultWrongUsage, Err: err}
		}

		code := st.run(ctx, args)
		s.recorder.StepResult(st.name, code)
		if !code.OK() {
			s.logger.Error("failed to "+st.name,
				log.Int("status", int(code)),
				log.String("result", code.String()),
			)
			return &domain.StepError{Step: st.name, Code: code}
		}
		s.logger.Debug(st.name + " succeeded")
	}

	if err := s.lifecycle.TransitionTo(StateRunning, "startup complete"); err != nil {
		s.logger.Warn("startup aborted", log.String("step", "run"), log.Err(err))
		return &domain.StepError{Step: "run", Code: domain.ResultWrongUsage, Err: err}
	}
	return nil
}
