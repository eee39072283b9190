package verify_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/bootr/internal/model"
	"github.com/slok/bootr/internal/verify"
	"github.com/slok/bootr/internal/verify/verifymock"
)

func TestNewManifestVerifier(t *testing.T) {
	tests := map[string]struct {
		config verify.ManifestVerifierConfig
		expErr bool
	}{
		"valid config should create verifier": {
			config: verify.ManifestVerifierConfig{Source: &verifymock.MockSource{}},
			expErr: false,
		},
		"missing source should fail": {
			config: verify.ManifestVerifierConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := verify.NewManifestVerifier(test.config)
			if test.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.NotNil(t, v)
			}
		})
	}
}

func TestVerifierVerify(t *testing.T) {
	tests := map[string]struct {
		manifest model.Manifest
		mock     func(m *verifymock.MockSource)
		exp      []model.Discrepancy
	}{
		"Matching versions should report no discrepancies": {
			manifest: model.Manifest{
				RuntimeVersion: "3.11",
				Components: []model.ExpectedVersion{
					{Component: "widget", Version: "1.0.0"},
				},
			},
			mock: func(m *verifymock.MockSource) {
				m.On("RuntimeVersion", mock.Anything).Once().Return("3.11", nil)
				m.On("InstalledVersion", mock.Anything, "widget").Once().Return("1.0.0", true, nil)
			},
			exp: []model.Discrepancy{},
		},

		"A version mismatch should report a discrepancy": {
			manifest: model.Manifest{
				Components: []model.ExpectedVersion{
					{Component: "widget", Version: "1.0.0"},
				},
			},
			mock: func(m *verifymock.MockSource) {
				m.On("InstalledVersion", mock.Anything, "widget").Once().Return("1.0.1", true, nil)
			},
			exp: []model.Discrepancy{
				{Component: "widget", Expected: "1.0.0", Actual: "1.0.1", Present: true},
			},
		},

		"An absent component should report a discrepancy": {
			manifest: model.Manifest{
				Components: []model.ExpectedVersion{
					{Component: "widget", Version: "1.0.0"},
				},
			},
			mock: func(m *verifymock.MockSource) {
				m.On("InstalledVersion", mock.Anything, "widget").Once().Return("", false, nil)
			},
			exp: []model.Discrepancy{
				{Component: "widget", Expected: "1.0.0"},
			},
		},

		"A source failure should read as absent and never escalate": {
			manifest: model.Manifest{
				Components: []model.ExpectedVersion{
					{Component: "widget", Version: "1.0.0"},
				},
			},
			mock: func(m *verifymock.MockSource) {
				m.On("InstalledVersion", mock.Anything, "widget").Once().Return("", false, fmt.Errorf("probe broken"))
			},
			exp: []model.Discrepancy{
				{Component: "widget", Expected: "1.0.0"},
			},
		},

		"A runtime version mismatch should report a runtime discrepancy": {
			manifest: model.Manifest{
				RuntimeVersion: "3.11",
			},
			mock: func(m *verifymock.MockSource) {
				m.On("RuntimeVersion", mock.Anything).Once().Return("3.12", nil)
			},
			exp: []model.Discrepancy{
				{Component: "runtime", Expected: "3.11", Actual: "3.12", Present: true},
			},
		},

		"An empty manifest should verify nothing": {
			manifest: model.Manifest{},
			mock:     func(m *verifymock.MockSource) {},
			exp:      []model.Discrepancy{},
		},

		"Multiple discrepancies should all be reported": {
			manifest: model.Manifest{
				RuntimeVersion: "3.11",
				Components: []model.ExpectedVersion{
					{Component: "gadget", Version: "0.2.0"},
					{Component: "widget", Version: "1.0.0"},
				},
			},
			mock: func(m *verifymock.MockSource) {
				m.On("RuntimeVersion", mock.Anything).Once().Return("", fmt.Errorf("no runtime"))
				m.On("InstalledVersion", mock.Anything, "gadget").Once().Return("", false, nil)
				m.On("InstalledVersion", mock.Anything, "widget").Once().Return("2.0.0", true, nil)
			},
			exp: []model.Discrepancy{
				{Component: "runtime", Expected: "3.11"},
				{Component: "gadget", Expected: "0.2.0"},
				{Component: "widget", Expected: "1.0.0", Actual: "2.0.0", Present: true},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			mSource := &verifymock.MockSource{}
			test.mock(mSource)

			v, err := verify.NewManifestVerifier(verify.ManifestVerifierConfig{Source: mSource})
			require.NoError(t, err)

			got := v.Verify(context.Background(), test.manifest)

			assert.Equal(t, test.exp, got)
			mSource.AssertExpectations(t)
		})
	}
}

func TestMajorMinor(t *testing.T) {
	assert.Equal(t, "3.11", verify.MajorMinor("3.11.9"))
	assert.Equal(t, "3.11", verify.MajorMinor("3.11"))
	assert.Equal(t, "3", verify.MajorMinor("3"))
}

func TestDefaultManifest(t *testing.T) {
	m := verify.DefaultManifest()
	require.NoError(t, m.Validate())
	assert.NotEmpty(t, m.RuntimeVersion)
	assert.NotEmpty(t, m.Components)
}
