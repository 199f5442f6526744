package orchestrator

import (
	"errors"
	"fmt"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
)

const ErrorTitle = "Error"

var (
	ErrAlreadyRunning = errors.New("a docbase task is already running")
	ErrAborted        = errors.New("task polling aborted")
)

// FailureMessage is the user facing text for a task that could not be
// started or did not finish.
func FailureMessage(kind api.TaskKind, displayName string) string {
	return fmt.Sprintf("Failed to %s %s", Verb(kind), displayName)
}

// SubmissionError is returned when a task could not be started.
type SubmissionError struct {
	Kind        api.TaskKind
	DisplayName string
	Err         error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", Verb(e.Kind), e.DisplayName, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// TaskFailedError is the outcome of a task that reached FAILED. Err is set
// when the failure came from the status query rather than the task.
type TaskFailedError struct {
	Job    Job
	Reason string
	Err    error
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %s (%s %s) failed: %s", e.Job.ID, e.Job.Kind, e.Job.DisplayName, e.Reason)
}

func (e *TaskFailedError) Unwrap() error {
	return e.Err
}
