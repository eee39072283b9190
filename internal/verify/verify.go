package verify

import (
	"context"
	"fmt"

	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/model"
)

// Source resolves installed component and runtime versions from the runtime's
// package metadata. Results are point-in-time reads, never cached.
type Source interface {
	// InstalledVersion resolves the installed version of a component. A
	// component that is not installed returns present false without error.
	InstalledVersion(ctx context.Context, component string) (version string, present bool, err error)
	// RuntimeVersion resolves the runtime's major.minor version.
	RuntimeVersion(ctx context.Context) (string, error)
}

//go:generate mockery --case underscore --output verifymock --outpkg verifymock --name Source

// Verifier knows how to verify the expected versions manifest against the
// installed runtime environment.
type Verifier interface {
	// Verify returns the discrepancies between the manifest and the installed
	// versions. It never fails: verification is advisory.
	Verify(ctx context.Context, manifest model.Manifest) []model.Discrepancy
}

//go:generate mockery --case underscore --output verifymock --outpkg verifymock --name Verifier

// ManifestVerifierConfig is the configuration for the manifest verifier.
type ManifestVerifierConfig struct {
	Source Source
	Logger log.Logger
}

func (c *ManifestVerifierConfig) defaults() error {
	if c.Source == nil {
		return fmt.Errorf("source is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "verify.ManifestVerifier"})

	return nil
}

// ManifestVerifier compares expected component versions against the installed ones.
// Verification is advisory: discrepancies are reported, never escalated, so a
// broken check can never leave the container unbootable.
type ManifestVerifier struct {
	source Source
	logger log.Logger
}

// NewManifestVerifier creates a new verifier that checks versions using the
// given source.
func NewManifestVerifier(cfg ManifestVerifierConfig) (*ManifestVerifier, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &ManifestVerifier{
		source: cfg.Source,
		logger: cfg.Logger,
	}, nil
}

// Verify checks every manifest entry plus the runtime major.minor version
// with an exact string match policy. It always returns normally: source
// failures are treated as absent components and logged.
func (v *ManifestVerifier) Verify(ctx context.Context, manifest model.Manifest) []model.Discrepancy {
	v.logger.Infof("Verifying installed versions (%d components)", len(manifest.Components))

	discrepancies := []model.Discrepancy{}

	if manifest.RuntimeVersion != "" {
		runtime, err := v.source.RuntimeVersion(ctx)
		if err != nil {
			v.logger.Warningf("Could not resolve runtime version: %s", err)
			discrepancies = append(discrepancies, model.Discrepancy{
				Component: model.RuntimeComponent,
				Expected:  manifest.RuntimeVersion,
			})
		} else if runtime != manifest.RuntimeVersion {
			discrepancies = append(discrepancies, model.Discrepancy{
				Component: model.RuntimeComponent,
				Expected:  manifest.RuntimeVersion,
				Actual:    runtime,
				Present:   true,
			})
		}
	}

	for _, expected := range manifest.Components {
		installed := v.installedVersion(ctx, expected.Component)

		switch {
		case !installed.Present:
			discrepancies = append(discrepancies, model.Discrepancy{
				Component: expected.Component,
				Expected:  expected.Version,
			})
		case installed.Version != expected.Version:
			discrepancies = append(discrepancies, model.Discrepancy{
				Component: expected.Component,
				Expected:  expected.Version,
				Actual:    installed.Version,
				Present:   true,
			})
		}
	}

	for _, d := range discrepancies {
		v.logger.Warningf("Version discrepancy: %s", d)
	}
	v.logger.Infof("Version verification finished (%d discrepancies)", len(discrepancies))

	return discrepancies
}

func (v *ManifestVerifier) installedVersion(ctx context.Context, component string) model.InstalledVersion {
	version, present, err := v.source.InstalledVersion(ctx, component)
	if err != nil {
		// Failing open: a broken metadata query reads as an absent component.
		v.logger.Warningf("Could not resolve installed version of %q: %s", component, err)
		return model.InstalledVersion{Component: component}
	}

	return model.InstalledVersion{Component: component, Version: version, Present: present}
}

// DefaultManifest returns the compiled-in expected versions manifest used when
// no manifest file is configured.
func DefaultManifest() model.Manifest {
	return model.Manifest{
		RuntimeVersion: "3.11",
		Components: []model.ExpectedVersion{
			{Component: "apache-airflow", Version: "2.9.2"},
			{Component: "celery", Version: "5.4.0"},
			{Component: "psycopg2", Version: "2.9.9"},
		},
	}
}
