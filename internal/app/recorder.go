package app

import (
	"time"

	"github.com/bft-labs/meetbot/internal/domain"
)

// Recorder receives controller measurements. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	StepResult(step string, code domain.ResultCode)
	Tick(now time.Time)
	Shutdown(trigger string)
}

type noopRecorder struct{}

func (noopRecorder) StepResult(string, domain.ResultCode) {}
func (noopRecorder) Tick(time.Time)                       {}
func (noopRecorder) Shutdown(string)                      {}
