package termination

import (
	"fmt"
	"os"
	"sync"

	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/model"
)

// Exiter is the real process termination primitive.
type Exiter interface {
	Exit(code int)
}

//go:generate mockery --case underscore --output terminationmock --outpkg terminationmock --name Exiter

// OSExiter terminates the current process.
type OSExiter struct{}

// Exit satisfies the Exiter interface.
func (OSExiter) Exit(code int) { os.Exit(code) }

// Hook is the side effect the guard runs before real termination. A hook
// error never prevents termination.
type Hook func() error

// GuardConfig is the configuration for the termination guard.
type GuardConfig struct {
	// Hook runs exactly once, before the first real termination.
	Hook Hook
	// Exiter is the real termination primitive. Defaults to OSExiter.
	Exiter Exiter
	Logger log.Logger
}

func (c *GuardConfig) defaults() error {
	if c.Hook == nil {
		return fmt.Errorf("hook is required")
	}
	if c.Exiter == nil {
		c.Exiter = OSExiter{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "termination.Guard"})

	return nil
}

// Guard is the single chokepoint every termination path must call instead of
// the raw process exit. The first termination request runs the hook, then real
// termination proceeds with the requested exit code. Once fired, the guard is
// transparent: later requests go straight to the real primitive.
type Guard struct {
	hook   Hook
	exiter Exiter
	logger log.Logger

	mu    sync.Mutex
	fired bool
}

// NewGuard creates a new termination guard.
func NewGuard(cfg GuardConfig) (*Guard, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Guard{
		hook:   cfg.Hook,
		exiter: cfg.Exiter,
		logger: cfg.Logger,
	}, nil
}

// Terminate consumes a termination request. It does not return when the
// configured exiter really terminates the process.
func (g *Guard) Terminate(req model.TerminationRequest) {
	code := req.ResolvedExitCode()

	g.mu.Lock()
	alreadyFired := g.fired
	g.fired = true
	g.mu.Unlock()

	if alreadyFired {
		g.exiter.Exit(code)
		return
	}

	g.logger.Infof("Handling shutdown (source: %s, exit code: %d)", req.Source, code)

	if err := g.hook(); err != nil {
		// Best effort: diagnostics must never block the process from exiting.
		g.logger.Errorf("Shutdown hook failed: %s", err)
	}

	g.exiter.Exit(code)
}
