package lib

import (
	"time"

	"github.com/slok/bootr/internal/model"
)

// Sentinel errors returned by the SDK. Check with errors.Is.
var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = model.ErrNotFound
	// ErrAlreadyExists is returned when a resource with the same ID already exists.
	ErrAlreadyExists = model.ErrAlreadyExists
	// ErrNotValid is returned on invalid input.
	ErrNotValid = model.ErrNotValid
)

// BootStatus represents the lifecycle state of a boot sequence.
//
// The lifecycle is:
//
//	init -> running-script -> verifying -> terminating
//
// A boot that stops at running-script means the startup script requested
// termination, so the verification pass was skipped.
type BootStatus string

const (
	// BootStatusInit indicates the boot sequence has been announced.
	BootStatusInit BootStatus = BootStatus(model.BootStatusInit)
	// BootStatusRunningScript indicates the customer startup script is executing.
	BootStatusRunningScript BootStatus = BootStatus(model.BootStatusRunningScript)
	// BootStatusVerifying indicates the version verification pass is running.
	BootStatusVerifying BootStatus = BootStatus(model.BootStatusVerifying)
	// BootStatusTerminating indicates the boot entered the termination path.
	BootStatusTerminating BootStatus = BootStatus(model.BootStatusTerminating)
)

// Boot is a recorded boot sequence returned by the SDK.
//
// This is a read-only snapshot of the record, use [Client.GetBoot] to get the
// latest state.
type Boot struct {
	// ID is the unique identifier (ULID) assigned when the boot started.
	ID string
	// Component is the runtime component the container booted.
	Component string
	// Status is the last recorded lifecycle state.
	Status BootStatus
	// ScriptPath is the customer startup script location used by this boot.
	ScriptPath string
	// SnapshotPath is where the environment snapshot artifact was written.
	SnapshotPath string
	// ExitCode is the process exit code. Nil while the boot is in flight.
	ExitCode *int
	// Discrepancies is the number of version discrepancies reported.
	Discrepancies int
	// Platform describes the host the boot ran on.
	Platform string
	// StartedAt is when the boot sequence started.
	StartedAt time.Time
	// FinishedAt is when the boot entered termination. Nil while in flight.
	FinishedAt *time.Time
}

func newBoot(b model.Boot) Boot {
	return Boot{
		ID:            b.ID,
		Component:     b.Component,
		Status:        BootStatus(b.Status),
		ScriptPath:    b.ScriptPath,
		SnapshotPath:  b.SnapshotPath,
		ExitCode:      b.ExitCode,
		Discrepancies: b.Discrepancies,
		Platform:      b.Platform,
		StartedAt:     b.StartedAt,
		FinishedAt:    b.FinishedAt,
	}
}

// ExpectedVersion is a single entry of the expected versions manifest.
type ExpectedVersion struct {
	// Component is the package name as known by the runtime's package tooling.
	Component string
	// Version is the exact expected version string.
	Version string
}

// Manifest is the expected versions manifest used by [Client.Verify].
type Manifest struct {
	// RuntimeVersion is the required runtime major.minor version (e.g. "3.11").
	// Empty disables the runtime check.
	RuntimeVersion string
	// Components are the expected component versions.
	Components []ExpectedVersion
}

func (m Manifest) toModel() model.Manifest {
	components := make([]model.ExpectedVersion, 0, len(m.Components))
	for _, c := range m.Components {
		components = append(components, model.ExpectedVersion{
			Component: c.Component,
			Version:   c.Version,
		})
	}
	return model.Manifest{
		RuntimeVersion: m.RuntimeVersion,
		Components:     components,
	}
}

// Discrepancy is an expected/installed version mismatch or an absent component.
type Discrepancy struct {
	// Component is the component name ("runtime" for the runtime version check).
	Component string
	// Expected is the version the manifest required.
	Expected string
	// Actual is the installed version. Empty when the component is absent.
	Actual string
	// Present reports whether the component is installed at all.
	Present bool
}

func newDiscrepancies(ds []model.Discrepancy) []Discrepancy {
	out := make([]Discrepancy, 0, len(ds))
	for _, d := range ds {
		out = append(out, Discrepancy{
			Component: d.Component,
			Expected:  d.Expected,
			Actual:    d.Actual,
			Present:   d.Present,
		})
	}
	return out
}

// ScriptResult is the outcome of a startup script execution.
type ScriptResult struct {
	// Terminated reports whether the script requested termination instead of
	// returning control.
	Terminated bool
	// ExitCode is the exit code the script requested. Only meaningful when
	// Terminated is true.
	ExitCode int
	// Env is the script's final environment, including any variables it set
	// or modified.
	Env map[string]string
}
