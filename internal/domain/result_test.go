package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestResultCode_String(t *testing.T) {
	tests := []struct {
		code ResultCode
		want string
	}{
		{ResultSuccess, "Success"},
		{ResultInvalidParameter, "InvalidParameter"},
		{ResultUnauthenticated, "Unauthenticated"},
		{ResultFailAssignUserPrivilege, "FailAssignUserPrivilege"},
		{ResultCode(99), "ResultCode(99)"},
		{ResultCode(-1), "ResultCode(-1)"},
	}

	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ResultCode(%d).String() = %s, want %s", int(tt.code), got, tt.want)
		}
	}
}

func TestResultCode_Values(t *testing.T) {
	// Codes double as exit statuses, so their numbers are part of the contract.
	if ResultSuccess != 0 || ResultInvalidParameter != 3 || ResultServiceFailed != 6 || ResultUnauthenticated != 8 {
		t.Fatal("result code numbering changed")
	}
	if !ResultSuccess.OK() {
		t.Error("ResultSuccess.OK() = false")
	}
	if ResultUnknown.OK() {
		t.Error("ResultUnknown.OK() = true")
	}
}

func TestExitCode(t *testing.T) {
	cause := errors.New("shutting down")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"step error", &StepError{Step: "authorize", Code: ResultInvalidParameter}, 3},
		{"wrapped step error", fmt.Errorf("run: %w", &StepError{Step: "initialize", Code: ResultServiceFailed}), 6},
		{"refused step", &StepError{Step: "configure", Code: ResultWrongUsage, Err: cause}, 2},
		{"plain error", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStepError_Unwrap(t *testing.T) {
	err := &StepError{Step: "initialize", Code: ResultWrongUsage, Err: ErrTerminated}
	if !errors.Is(err, ErrTerminated) {
		t.Error("errors.Is(StepError, ErrTerminated) = false")
	}
	want := "failed to initialize with status 2 (WrongUsage): meetbot: terminated"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
