package ports

import (
	"context"

	"github.com/bft-labs/meetbot/internal/domain"
)

// MeetingClient is the meeting-platform client the controller drives.
// Every operation except Release reports its outcome as a ResultCode which
// the caller must inspect before proceeding.
type MeetingClient interface {
	// Configure consumes the raw process arguments.
	Configure(args []string) domain.ResultCode

	// Initialize sets up the platform client.
	Initialize(ctx context.Context) domain.ResultCode

	// Authorize authenticates the client. On success a meeting session may
	// become active.
	Authorize(ctx context.Context) domain.ResultCode

	// Leave exits the active session. It is best-effort and returns
	// ResultSuccess without doing anything when no session is active.
	Leave(ctx context.Context) domain.ResultCode

	// Release frees client resources. It must not fail and must be safe to
	// call more than once.
	Release()
}
