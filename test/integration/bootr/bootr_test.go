package bootr_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intbootr "github.com/slok/bootr/test/integration/bootr"
)

// newTestDB returns a fresh SQLite database path for test isolation.
func newTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-bootr.db")
}

// historyItem matches the JSON output of `bootr history --format json`.
type historyItem struct {
	ID            string `json:"id"`
	Component     string `json:"component"`
	Status        string `json:"status"`
	ExitCode      *int   `json:"exit_code"`
	Discrepancies int    `json:"discrepancies"`
}

func TestSnapshotEnvRoundTrip(t *testing.T) {
	config := intbootr.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbPath := newTestDB(t)
	snapPath := filepath.Join(t.TempDir(), "customer_env.json")

	_, stderr, err := intbootr.RunSnapshot(ctx, config, dbPath, snapPath)
	require.NoError(t, err, "stderr: %s", stderr)
	require.FileExists(t, snapPath)

	stdout, stderr, err := intbootr.RunEnv(ctx, config, dbPath, snapPath)
	require.NoError(t, err, "stderr: %s", stderr)

	env := map[string]string{}
	require.NoError(t, json.Unmarshal(stdout, &env))
	// PATH is always present in the process environment.
	assert.NotEmpty(t, env["PATH"])
}

func TestRunScriptRequestsTermination(t *testing.T) {
	config := intbootr.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbPath := newTestDB(t)
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "startup.sh")
	snapPath := filepath.Join(dir, "customer_env.json")

	script := "export INTEGRATION_STARTUP_VAR=from-startup\nexit 3\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o755))

	_, stderr, err := intbootr.RunBoot(ctx, config, dbPath, "worker", scriptPath, snapPath)

	// The script requested exit code 3 and the process must forward it.
	require.Error(t, err, "stderr: %s", stderr)
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())

	// The snapshot artifact must exist and contain the script's mutation.
	data, err := os.ReadFile(snapPath)
	require.NoError(t, err)
	env := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "from-startup", env["INTEGRATION_STARTUP_VAR"])

	// The boot must be recorded with the forwarded exit code.
	stdout, stderr, err := intbootr.RunHistory(ctx, config, dbPath)
	require.NoError(t, err, "stderr: %s", stderr)

	items := []historyItem{}
	require.NoError(t, json.Unmarshal(stdout, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "worker", items[0].Component)
	assert.Equal(t, "terminating", items[0].Status)
	require.NotNil(t, items[0].ExitCode)
	assert.Equal(t, 3, *items[0].ExitCode)
}

func TestRunScriptContinuesBoot(t *testing.T) {
	config := intbootr.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbPath := newTestDB(t)
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "startup.sh")
	snapPath := filepath.Join(dir, "customer_env.json")

	require.NoError(t, os.WriteFile(scriptPath, []byte("export INTEGRATION_STARTUP_VAR=ok\n"), 0o755))

	_, stderr, err := intbootr.RunBoot(ctx, config, dbPath, "scheduler", scriptPath, snapPath)

	// A returning script ends the sequence with exit code 0, verification
	// discrepancies are advisory and never change that.
	require.NoError(t, err, "stderr: %s", stderr)
	require.FileExists(t, snapPath)

	stdout, stderr, err := intbootr.RunHistory(ctx, config, dbPath)
	require.NoError(t, err, "stderr: %s", stderr)

	items := []historyItem{}
	require.NoError(t, json.Unmarshal(stdout, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "scheduler", items[0].Component)
	require.NotNil(t, items[0].ExitCode)
	assert.Equal(t, 0, *items[0].ExitCode)
}

func TestRunMissingScriptStillBoots(t *testing.T) {
	config := intbootr.NewConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbPath := newTestDB(t)
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "customer_env.json")

	_, stderr, err := intbootr.RunBoot(ctx, config, dbPath, "webserver", filepath.Join(dir, "missing.sh"), snapPath)

	require.NoError(t, err, "stderr: %s", stderr)
	require.FileExists(t, snapPath)
}
