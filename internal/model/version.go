package model

import (
	"fmt"
	"sort"
)

// RuntimeComponent is the pseudo-component name used to report runtime
// major.minor version discrepancies.
const RuntimeComponent = "runtime"

// ExpectedVersion is a single entry of the expected versions manifest.
type ExpectedVersion struct {
	Component string
	Version   string
}

// InstalledVersion is the version of a component resolved from the runtime's
// package metadata. It is queried on demand and never cached.
type InstalledVersion struct {
	Component string
	Version   string
	Present   bool
}

// Discrepancy represents an expected/installed version mismatch or an absent
// component.
type Discrepancy struct {
	Component string
	Expected  string
	// Actual is the installed version. Empty when the component is absent.
	Actual  string
	Present bool
}

func (d Discrepancy) String() string {
	if !d.Present {
		return fmt.Sprintf("%s: expected %q, not installed", d.Component, d.Expected)
	}
	return fmt.Sprintf("%s: expected %q, installed %q", d.Component, d.Expected, d.Actual)
}

// Manifest is the expected versions manifest used by the verification pass.
// It is loaded once at process start and immutable afterwards.
type Manifest struct {
	// RuntimeVersion is the required runtime major.minor version (e.g. "3.11").
	// Empty disables the runtime check.
	RuntimeVersion string
	Components     []ExpectedVersion
}

// Validate validates the manifest.
func (m Manifest) Validate() error {
	seen := map[string]struct{}{}
	for _, c := range m.Components {
		if c.Component == "" {
			return fmt.Errorf("manifest component name is required: %w", ErrNotValid)
		}
		if c.Version == "" {
			return fmt.Errorf("manifest component %q version is required: %w", c.Component, ErrNotValid)
		}
		if _, ok := seen[c.Component]; ok {
			return fmt.Errorf("manifest component %q is duplicated: %w", c.Component, ErrNotValid)
		}
		seen[c.Component] = struct{}{}
	}

	return nil
}

// SortComponents sorts the manifest components by name so verification reports
// are deterministic.
func (m *Manifest) SortComponents() {
	sort.Slice(m.Components, func(i, j int) bool {
		return m.Components[i].Component < m.Components[j].Component
	})
}
