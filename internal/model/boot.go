package model

import (
	"fmt"
	"time"
)

// BootStatus represents the state of a boot sequence.
type BootStatus string

const (
	// BootStatusInit indicates the boot sequence has been announced and the
	// termination guard is being installed.
	BootStatusInit BootStatus = "init"
	// BootStatusRunningScript indicates the customer script is executing.
	BootStatusRunningScript BootStatus = "running-script"
	// BootStatusVerifying indicates the version verification pass is running.
	BootStatusVerifying BootStatus = "verifying"
	// BootStatusTerminating indicates the guarded termination path has been entered.
	BootStatusTerminating BootStatus = "terminating"
)

// Boot represents a recorded boot sequence of the container entrypoint.
type Boot struct {
	ID           string
	Component    string
	Status       BootStatus
	ScriptPath   string
	SnapshotPath string
	// ExitCode is the process exit code requested by whatever entered the
	// termination path. Nil until the sequence reaches terminating.
	ExitCode *int
	// Discrepancies is the number of version discrepancies reported by the
	// verification pass. Zero when verification was skipped.
	Discrepancies int
	Platform      string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// Validate validates the boot record.
func (b Boot) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("boot id is required: %w", ErrNotValid)
	}

	if b.Component == "" {
		return fmt.Errorf("boot component is required: %w", ErrNotValid)
	}

	switch b.Status {
	case BootStatusInit, BootStatusRunningScript, BootStatusVerifying, BootStatusTerminating:
	default:
		return fmt.Errorf("boot status %q is invalid: %w", b.Status, ErrNotValid)
	}

	if b.StartedAt.IsZero() {
		return fmt.Errorf("boot started at is required: %w", ErrNotValid)
	}

	return nil
}

// TerminationSource identifies which call site raised a termination request.
type TerminationSource string

const (
	// TerminationSourceScript indicates the customer script requested termination.
	TerminationSourceScript TerminationSource = "script"
	// TerminationSourceController indicates the controller's own end-of-sequence call.
	TerminationSourceController TerminationSource = "controller"
)

// TerminationRequest is a request to terminate the process. It is consumed
// exactly once by the termination guard.
type TerminationRequest struct {
	// ExitCode is the requested process exit code. Nil defaults to 0.
	ExitCode *int
	Source   TerminationSource
}

// ResolvedExitCode returns the requested exit code, defaulting to success.
func (t TerminationRequest) ResolvedExitCode() int {
	if t.ExitCode == nil {
		return 0
	}
	return *t.ExitCode
}
