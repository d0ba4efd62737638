package runtime

import (
	"errors"
	"fmt"

	"github.com/voocel/recon/task"
)

// Sentinel errors surfaced to callers.
var (
	// ErrNotStarted is returned by Wait/Stop when the loop was never
	// started.
	ErrNotStarted = errors.New("runtime: not started")
	// ErrStopped is the terminal error of a loop that exited because
	// Stop was called.
	ErrStopped = errors.New("runtime: stopped")
)

// FailureError reports that the loop gave up after Tries failed attempts:
// planning failures and failed action runs, counted over the whole run
// (the count is not reset when a plan is found).
type FailureError struct {
	Tries int
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("runtime: failed after %d tries", e.Tries)
}

// TimeoutError is raised only by Wait, never by the loop itself.
type TimeoutError struct {
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("runtime: wait timed out after %s", e.Timeout)
}

// UnknownError wraps an error the loop doesn't otherwise recognize;
// reaching it indicates a bug in caller-supplied task code or in the loop
// itself.
type UnknownError struct {
	Cause error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("runtime: unknown error: %v", e.Cause)
}

func (e *UnknownError) Unwrap() error { return e.Cause }

// ActionConditionFailedError breaks plan execution at the offending action:
// the state has drifted from the planner's view and a replan is needed.
type ActionConditionFailedError struct {
	Instruction task.Instruction
}

func (e *ActionConditionFailedError) Error() string {
	return fmt.Sprintf("runtime: condition failed for action %s", e.Instruction.Description())
}

// ActionRunFailedError reports that a grounded action's Run returned an
// error; the loop retries subject to backoff/maxRetries.
type ActionRunFailedError struct {
	Instruction task.Instruction
	Cause       error
}

func (e *ActionRunFailedError) Error() string {
	return fmt.Sprintf("runtime: action %s failed: %v", e.Instruction.Description(), e.Cause)
}

func (e *ActionRunFailedError) Unwrap() error { return e.Cause }
