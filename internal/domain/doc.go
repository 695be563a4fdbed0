// Package domain contains the core value types shared by the meetbot controller.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, file system, logging).
//
// # Types
//
//   - [ResultCode]: outcome of a lifecycle operation against the meeting client
//   - [StepError]: a failed startup step and the code it returned
//
// Exit statuses are derived from these types with [ExitCode].
package domain
