package termination_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bootr/internal/model"
	"github.com/slok/bootr/internal/termination"
	"github.com/slok/bootr/internal/termination/terminationmock"
)

func intPtr(i int) *int { return &i }

func TestNewGuard(t *testing.T) {
	tests := map[string]struct {
		config termination.GuardConfig
		expErr bool
	}{
		"valid config should create guard": {
			config: termination.GuardConfig{
				Hook: func() error { return nil },
			},
			expErr: false,
		},
		"missing hook should fail": {
			config: termination.GuardConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			guard, err := termination.NewGuard(test.config)
			if test.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.NotNil(t, guard)
			}
		})
	}
}

func TestGuardTerminate(t *testing.T) {
	tests := map[string]struct {
		hookErr     error
		req         model.TerminationRequest
		expExitCode int
	}{
		"nil exit code should default to success": {
			req:         model.TerminationRequest{Source: model.TerminationSourceController},
			expExitCode: 0,
		},

		"requested exit code should be forwarded": {
			req:         model.TerminationRequest{ExitCode: intPtr(3), Source: model.TerminationSourceScript},
			expExitCode: 3,
		},

		"hook failure should not prevent real termination": {
			hookErr:     fmt.Errorf("destination unwritable"),
			req:         model.TerminationRequest{ExitCode: intPtr(1), Source: model.TerminationSourceController},
			expExitCode: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			hookCalls := 0
			mExiter := &terminationmock.MockExiter{}
			mExiter.On("Exit", test.expExitCode).Once()

			guard, err := termination.NewGuard(termination.GuardConfig{
				Hook: func() error {
					hookCalls++
					return test.hookErr
				},
				Exiter: mExiter,
			})
			require.NoError(t, err)

			guard.Terminate(test.req)

			assert.Equal(t, 1, hookCalls)
			mExiter.AssertExpectations(t)
		})
	}
}

func TestGuardTerminateSingleFire(t *testing.T) {
	hookCalls := 0
	mExiter := &terminationmock.MockExiter{}
	mExiter.On("Exit", 3).Once()
	mExiter.On("Exit", 7).Once()

	guard, err := termination.NewGuard(termination.GuardConfig{
		Hook: func() error {
			hookCalls++
			return nil
		},
		Exiter: mExiter,
	})
	require.NoError(t, err)

	guard.Terminate(model.TerminationRequest{ExitCode: intPtr(3), Source: model.TerminationSourceScript})
	// Second request after the guard has fired goes straight to the real
	// primitive without a second hook run.
	guard.Terminate(model.TerminationRequest{ExitCode: intPtr(7), Source: model.TerminationSourceController})

	assert.Equal(t, 1, hookCalls)
	mExiter.AssertExpectations(t)
}

func TestGuardTerminateReentrant(t *testing.T) {
	// A hook that itself raises a termination request must not recurse into
	// the hook again.
	hookCalls := 0
	mExiter := &terminationmock.MockExiter{}
	// The nested request exits directly with the default code, then the outer
	// request finishes with the originally requested one.
	mExiter.On("Exit", 0).Once()
	mExiter.On("Exit", 5).Once()

	var guard *termination.Guard
	var err error
	guard, err = termination.NewGuard(termination.GuardConfig{
		Hook: func() error {
			hookCalls++
			guard.Terminate(model.TerminationRequest{Source: model.TerminationSourceController})
			return nil
		},
		Exiter: mExiter,
	})
	require.NoError(t, err)

	guard.Terminate(model.TerminationRequest{ExitCode: intPtr(5), Source: model.TerminationSourceScript})

	assert.Equal(t, 1, hookCalls)
	mExiter.AssertExpectations(t)
}
