package envsnap

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/slok/bootr/internal/log"
	utilsenv "github.com/slok/bootr/internal/utils/env"
)

// Snapshotter knows how to capture the process environment into a durable
// artifact.
type Snapshotter interface {
	// Snapshot captures the full process environment at call time and writes it
	// to path. It overwrites any previous artifact and is safe to call more
	// than once.
	Snapshot(path string) error
}

//go:generate mockery --case underscore --output envsnapmock --outpkg envsnapmock --name Snapshotter

// EnvSnapshotterConfig is the configuration for the environment snapshotter.
type EnvSnapshotterConfig struct {
	// Environ is the environment source. Defaults to os.Environ.
	Environ func() []string
	Logger  log.Logger
}

func (c *EnvSnapshotterConfig) defaults() error {
	if c.Environ == nil {
		c.Environ = os.Environ
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "envsnap.EnvSnapshotter"})

	return nil
}

// EnvSnapshotter serializes the process environment as a JSON object.
type EnvSnapshotter struct {
	environ func() []string
	logger  log.Logger
}

// NewEnvSnapshotter creates a new environment snapshotter.
func NewEnvSnapshotter(cfg EnvSnapshotterConfig) (*EnvSnapshotter, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &EnvSnapshotter{
		environ: cfg.Environ,
		logger:  cfg.Logger,
	}, nil
}

// Snapshot satisfies the Snapshotter interface.
func (s *EnvSnapshotter) Snapshot(path string) error {
	env := utilsenv.ToMap(s.environ())

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("could not serialize environment: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create snapshot directory: %w", err)
	}

	// Write to a temp file and rename so a crash or a concurrent reader never
	// observes a half-written artifact, and repeated calls overwrite cleanly.
	tmp, err := os.CreateTemp(dir, ".env-snapshot-*")
	if err != nil {
		return fmt.Errorf("could not create temporary snapshot file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary snapshot file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("could not move snapshot into place: %w", err)
	}

	s.logger.Debugf("Environment snapshot written to %s (%d variables)", path, len(env))
	return nil
}

// ReadSnapshot reads an environment snapshot artifact back into a map.
func ReadSnapshot(fsys fs.FS, path string) (map[string]string, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	env := map[string]string{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing snapshot file: %w", err)
	}

	return env, nil
}
