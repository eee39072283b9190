package bootr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/bootr/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "bootr"
	}

	// If relative, the caller should pass an absolute path via the env var,
	// because go test changes the CWD to the test package directory.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("BOOTR_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("bootr binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "BOOTR_INTEGRATION"
		envBinary     = "BOOTR_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunBootrCmd runs a bootr command with the given arguments and a specific db path.
// It suppresses logging output for cleaner test output.
func RunBootrCmd(ctx context.Context, config Config, dbPath, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --db-path %s %s", dbPath, cmdArgs)
	return testutils.RunBootr(ctx, nil, config.Binary, args, true)
}

// RunBoot runs the boot sequence for a component with a custom script and
// snapshot destination.
func RunBoot(ctx context.Context, config Config, dbPath, component, scriptPath, snapshotPath string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("run %s --script %s --snapshot-path %s", component, scriptPath, snapshotPath)
	return RunBootrCmd(ctx, config, dbPath, args)
}

// RunSnapshot writes the environment snapshot artifact.
func RunSnapshot(ctx context.Context, config Config, dbPath, path string) (stdout, stderr []byte, err error) {
	return RunBootrCmd(ctx, config, dbPath, fmt.Sprintf("snapshot --path %s", path))
}

// RunEnv reads an environment snapshot artifact in JSON format.
func RunEnv(ctx context.Context, config Config, dbPath, path string) (stdout, stderr []byte, err error) {
	return RunBootrCmd(ctx, config, dbPath, fmt.Sprintf("env --path %s --format json", path))
}

// RunHistory lists recorded boots in JSON format.
func RunHistory(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunBootrCmd(ctx, config, dbPath, "history --format json")
}
