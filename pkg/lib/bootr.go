package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/bootr/internal/conventions"
	"github.com/slok/bootr/internal/envsnap"
	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/script"
	"github.com/slok/bootr/internal/storage"
	"github.com/slok/bootr/internal/storage/sqlite"
	"github.com/slok/bootr/internal/verify"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.bootr/bootr.db for the boot history.
type Config struct {
	// DBPath is the SQLite boot history database path.
	// Default: ~/.bootr/bootr.db.
	DBPath string

	// Shell is the shell used to source startup scripts.
	// Default: /bin/bash.
	Shell string

	// PackageProbe is the command used to resolve installed component
	// versions, the component name is appended as the last argument.
	// Default: pip3 show.
	PackageProbe []string

	// RuntimeProbe is the command used to resolve the runtime version.
	// Default: python3 --version.
	RuntimeProbe []string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = conventions.DBPath(filepath.Join(home, conventions.DefaultDataDir))
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for the boot controller building blocks.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo        storage.BootRepository
	runner      script.Runner
	verifier    verify.Verifier
	snapshotter envsnap.Snapshotter
	logger      log.Logger
	closeFn     func() error
}

// New creates a new SDK client backed by a SQLite boot history database.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	runner, err := script.NewShellRunner(script.ShellRunnerConfig{
		Shell:  cfg.Shell,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create script runner: %w", err)
	}

	source, err := verify.NewExecSource(verify.ExecSourceConfig{
		PackageProbe: cfg.PackageProbe,
		RuntimeProbe: cfg.RuntimeProbe,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create version source: %w", err)
	}

	verifier, err := verify.NewManifestVerifier(verify.ManifestVerifierConfig{
		Source: source,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create verifier: %w", err)
	}

	snapshotter, err := envsnap.NewEnvSnapshotter(envsnap.EnvSnapshotterConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create snapshotter: %w", err)
	}

	return &Client{
		repo:        repo,
		runner:      runner,
		verifier:    verifier,
		snapshotter: snapshotter,
		logger:      cfg.Logger,
		closeFn:     repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// RunScript executes a customer startup script and returns its outcome.
//
// The script is sourced in a child shell with exported variables, so its
// environment mutations are captured in [ScriptResult].Env and an `exit N`
// inside it is reported as a termination request rather than killing the
// calling process. A missing script is not an error: the result reports a
// normal return with no environment.
func (c *Client) RunScript(ctx context.Context, scriptPath string) (ScriptResult, error) {
	result, err := c.runner.Run(ctx, scriptPath, nil)
	if err != nil {
		return ScriptResult{}, fmt.Errorf("could not run script: %w", err)
	}

	return ScriptResult{
		Terminated: result.Terminated,
		ExitCode:   result.ExitCode,
		Env:        result.Env,
	}, nil
}

// Verify checks the given expected versions manifest against the installed
// runtime environment and returns the discrepancies found.
//
// Verification is advisory: probe failures are reported as absent components,
// never as errors.
func (c *Client) Verify(ctx context.Context, manifest Manifest) ([]Discrepancy, error) {
	m := manifest.toModel()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return newDiscrepancies(c.verifier.Verify(ctx, m)), nil
}

// Snapshot writes the current process environment to the snapshot artifact at
// the given path, creating parent directories as needed. An empty path uses
// the conventional snapshot location.
func (c *Client) Snapshot(path string) (string, error) {
	if path == "" {
		path = conventions.DefaultSnapshotPath()
	}

	if err := c.snapshotter.Snapshot(path); err != nil {
		return "", fmt.Errorf("could not write snapshot: %w", err)
	}

	return path, nil
}

// ReadSnapshot reads an environment snapshot artifact back as a map.
func (c *Client) ReadSnapshot(path string) (map[string]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve snapshot path: %w", err)
	}

	env, err := envsnap.ReadSnapshot(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
	if err != nil {
		return nil, fmt.Errorf("could not read snapshot: %w", err)
	}

	return env, nil
}

// ListBoots returns all recorded boot sequences, newest first.
func (c *Client) ListBoots(ctx context.Context) ([]Boot, error) {
	boots, err := c.repo.ListBoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list boots: %w", err)
	}

	out := make([]Boot, 0, len(boots))
	for _, b := range boots {
		out = append(out, newBoot(b))
	}

	return out, nil
}

// GetBoot returns a single boot record by ID. Returns [ErrNotFound] when the
// boot does not exist.
func (c *Client) GetBoot(ctx context.Context, id string) (*Boot, error) {
	b, err := c.repo.GetBoot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get boot: %w", err)
	}

	boot := newBoot(*b)
	return &boot, nil
}
