package boot

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/slok/bootr/internal/conventions"
	"github.com/slok/bootr/internal/envsnap"
	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/model"
	"github.com/slok/bootr/internal/script"
	"github.com/slok/bootr/internal/storage"
	"github.com/slok/bootr/internal/termination"
	"github.com/slok/bootr/internal/verify"
)

// ServiceConfig is the configuration for the boot service.
type ServiceConfig struct {
	Runner      script.Runner
	Verifier    verify.Verifier
	Snapshotter envsnap.Snapshotter
	Exiter      termination.Exiter
	// Repository is optional: boot history is best effort and a broken
	// database must never block the boot sequence.
	Repository storage.BootRepository
	// SetEnv applies a captured script environment variable to the current
	// process. Defaults to os.Setenv.
	SetEnv func(key, value string) error
	// PlatformInfo describes the host the boot runs on. Defaults to gopsutil
	// host information.
	PlatformInfo func(ctx context.Context) string
	IDGenerator  func() string
	Logger       log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Verifier == nil {
		return fmt.Errorf("verifier is required")
	}
	if c.Snapshotter == nil {
		return fmt.Errorf("snapshotter is required")
	}
	if c.Exiter == nil {
		c.Exiter = termination.OSExiter{}
	}
	if c.SetEnv == nil {
		c.SetEnv = os.Setenv
	}
	if c.PlatformInfo == nil {
		c.PlatformInfo = hostPlatform
	}
	if c.IDGenerator == nil {
		c.IDGenerator = func() string {
			return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
		}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Boot"})
	return nil
}

func hostPlatform(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
}

// Service drives the boot sequence: it runs the customer startup script,
// verifies installed versions, snapshots the environment and hands the final
// exit code to the process exiter. Every exit path goes through the guarded
// termination layer so the snapshot is taken exactly once.
type Service struct {
	runner       script.Runner
	verifier     verify.Verifier
	snapshotter  envsnap.Snapshotter
	exiter       termination.Exiter
	repo         storage.BootRepository
	setEnv       func(key, value string) error
	platformInfo func(ctx context.Context) string
	idGen        func() string
	logger       log.Logger
}

// NewService creates a new boot service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		runner:       cfg.Runner,
		verifier:     cfg.Verifier,
		snapshotter:  cfg.Snapshotter,
		exiter:       cfg.Exiter,
		repo:         cfg.Repository,
		setEnv:       cfg.SetEnv,
		platformInfo: cfg.PlatformInfo,
		idGen:        cfg.IDGenerator,
		logger:       cfg.Logger,
	}, nil
}

// Request is the boot request.
type Request struct {
	// Component is the runtime component this container boots (e.g. worker,
	// scheduler, webserver).
	Component string
	// ScriptPath is the customer startup script location. Defaults to the
	// conventional startup script path.
	ScriptPath string
	// SnapshotPath is where the environment snapshot artifact is written.
	// Defaults to the conventional snapshot path.
	SnapshotPath string
	// Manifest holds the expected component versions to verify.
	Manifest model.Manifest
	// ExtraEnv is extra environment exposed to the startup script.
	ExtraEnv map[string]string
	// ScriptTimeout bounds the startup script execution. Zero means no limit.
	ScriptTimeout time.Duration
}

func (r *Request) defaults() error {
	if r.Component == "" {
		return fmt.Errorf("component is required")
	}
	if r.ScriptPath == "" {
		r.ScriptPath = conventions.DefaultScriptPath()
	}
	if r.SnapshotPath == "" {
		r.SnapshotPath = conventions.DefaultSnapshotPath()
	}
	return nil
}

// Run executes the boot sequence for the given request.
//
// With the default process exiter Run does not return: both the script
// requesting termination and the sequence completing end in an os.Exit with
// the resolved code, after the environment snapshot has been taken.
func (s *Service) Run(ctx context.Context, req Request) error {
	if err := req.defaults(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	b := model.Boot{
		ID:           s.idGen(),
		Component:    req.Component,
		Status:       model.BootStatusInit,
		ScriptPath:   req.ScriptPath,
		SnapshotPath: req.SnapshotPath,
		Platform:     s.platformInfo(ctx),
		StartedAt:    time.Now().UTC(),
	}

	logger := s.logger.WithValues(log.Kv{"boot-id": b.ID, "component": b.Component})
	logger.Infof("Starting boot sequence on %s", b.Platform)

	s.createRecord(ctx, logger, b)

	guard, err := termination.NewGuard(termination.GuardConfig{
		Hook: func() error {
			logger.Infof("Writing environment snapshot to %s", b.SnapshotPath)
			return s.snapshotter.Snapshot(b.SnapshotPath)
		},
		Exiter: s.exiter,
		Logger: s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create termination guard: %w", err)
	}

	// Startup script step.
	b.Status = model.BootStatusRunningScript
	s.updateRecord(ctx, logger, b)

	scriptCtx := ctx
	if req.ScriptTimeout > 0 {
		var cancel context.CancelFunc
		scriptCtx, cancel = context.WithTimeout(ctx, req.ScriptTimeout)
		defer cancel()
	}

	result, err := s.runner.Run(scriptCtx, req.ScriptPath, req.ExtraEnv)
	if err != nil {
		logger.Errorf("Startup script execution failed: %s", err)
		s.finishRecord(ctx, logger, b, 1, 0)
		guard.Terminate(model.TerminationRequest{
			ExitCode: intPtr(1),
			Source:   model.TerminationSourceController,
		})
		return fmt.Errorf("could not run startup script: %w", err)
	}

	// The script may have mutated its environment, make those mutations
	// visible to this process (and therefore to the snapshot) before any
	// termination path runs.
	s.applyEnv(logger, result.Env)

	if result.Terminated {
		logger.Infof("Startup script requested termination with exit code %d", result.ExitCode)
		s.finishRecord(ctx, logger, b, result.ExitCode, 0)
		guard.Terminate(model.TerminationRequest{
			ExitCode: intPtr(result.ExitCode),
			Source:   model.TerminationSourceScript,
		})
		return nil
	}

	// Verification step, advisory only.
	b.Status = model.BootStatusVerifying
	s.updateRecord(ctx, logger, b)

	discrepancies := s.verifier.Verify(ctx, req.Manifest)
	if len(discrepancies) > 0 {
		logger.Warningf("Version verification reported %d discrepancies", len(discrepancies))
	}

	s.finishRecord(ctx, logger, b, 0, len(discrepancies))
	guard.Terminate(model.TerminationRequest{
		Source: model.TerminationSourceController,
	})
	return nil
}

func (s *Service) applyEnv(logger log.Logger, env map[string]string) {
	for k, v := range env {
		if err := s.setEnv(k, v); err != nil {
			logger.Warningf("Could not apply script environment variable %q: %s", k, err)
		}
	}
}

func (s *Service) createRecord(ctx context.Context, logger log.Logger, b model.Boot) {
	if s.repo == nil {
		return
	}
	if err := s.repo.CreateBoot(ctx, b); err != nil {
		logger.Warningf("Could not save boot record: %s", err)
	}
}

func (s *Service) updateRecord(ctx context.Context, logger log.Logger, b model.Boot) {
	if s.repo == nil {
		return
	}
	if err := s.repo.UpdateBoot(ctx, b); err != nil {
		logger.Warningf("Could not update boot record: %s", err)
	}
}

func (s *Service) finishRecord(ctx context.Context, logger log.Logger, b model.Boot, exitCode, discrepancies int) {
	now := time.Now().UTC()
	b.Status = model.BootStatusTerminating
	b.ExitCode = &exitCode
	b.Discrepancies = discrepancies
	b.FinishedAt = &now
	s.updateRecord(ctx, logger, b)
}

func intPtr(i int) *int { return &i }
