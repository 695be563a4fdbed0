package domain

import (
	"errors"
	"fmt"
)

// ResultCode is the outcome of a lifecycle operation against the meeting client.
// ResultSuccess is the only success value; every other value is a distinct failure kind.
// The numbering follows the meeting SDK's error enumeration so codes can be used
// directly as process exit statuses.
type ResultCode int

const (
	ResultSuccess ResultCode = iota
	ResultNoImpl
	ResultWrongUsage
	ResultInvalidParameter
	ResultModuleLoadFailed
	ResultMemoryFailed
	ResultServiceFailed
	ResultUninitialized
	ResultUnauthenticated
	ResultNoRecordingInProcess
	ResultTranscoderNotFound
	ResultVideoNotReady
	ResultNoPermission
	ResultUnknown
	ResultOtherInstanceRunning
	ResultInternalError
	ResultNoAudioDevice
	ResultNoVideoDevice
	ResultTooFrequentCall
	ResultFailAssignUserPrivilege
)

var resultNames = [...]string{
	ResultSuccess:                 "Success",
	ResultNoImpl:                  "NoImpl",
	ResultWrongUsage:              "WrongUsage",
	ResultInvalidParameter:        "InvalidParameter",
	ResultModuleLoadFailed:        "ModuleLoadFailed",
	ResultMemoryFailed:            "MemoryFailed",
	ResultServiceFailed:           "ServiceFailed",
	ResultUninitialized:           "Uninitialized",
	ResultUnauthenticated:         "Unauthenticated",
	ResultNoRecordingInProcess:    "NoRecordingInProcess",
	ResultTranscoderNotFound:      "TranscoderNotFound",
	ResultVideoNotReady:           "VideoNotReady",
	ResultNoPermission:            "NoPermission",
	ResultUnknown:                 "Unknown",
	ResultOtherInstanceRunning:    "OtherInstanceRunning",
	ResultInternalError:           "InternalError",
	ResultNoAudioDevice:           "NoAudioDevice",
	ResultNoVideoDevice:           "NoVideoDevice",
	ResultTooFrequentCall:         "TooFrequentCall",
	ResultFailAssignUserPrivilege: "FailAssignUserPrivilege",
}

// OK reports whether the code means success.
func (c ResultCode) OK() bool {
	return c == ResultSuccess
}

// String returns the name of the code.
func (c ResultCode) String() string {
	if c >= 0 && int(c) < len(resultNames) {
		return resultNames[c]
	}
	return fmt.Sprintf("ResultCode(%d)", int(c))
}

// StepError reports a startup step that returned a non-success code.
type StepError struct {
	Step string
	Code ResultCode
	// Err is set when the step was refused before reaching the client.
	Err error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to %s with status %d (%s): %v", e.Step, int(e.Code), e.Code, e.Err)
	}
	return fmt.Sprintf("failed to %s with status %d (%s)", e.Step, int(e.Code), e.Code)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by the controller to a process exit status.
// A StepError exits with its code, any other error with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *StepError
	if errors.As(err, &se) {
		return int(se.Code)
	}
	return 1
}
