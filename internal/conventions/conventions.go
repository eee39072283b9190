package conventions

import (
	"os"
	"path/filepath"
)

const (
	// DefaultDataDir is the default bootr data directory name (relative to home).
	DefaultDataDir = ".bootr"
	// DBFile is the boot history SQLite database filename.
	DBFile = "bootr.db"

	// Customer startup script.

	// StartupDir is the directory the customer startup script lives in,
	// relative to the container working directory.
	StartupDir = "startup"
	// StartupScriptFile is the customer startup script filename.
	StartupScriptFile = "startup.sh"

	// Environment snapshot artifact.

	// SnapshotFile is the environment snapshot artifact filename.
	SnapshotFile = "customer_env.json"

	// ScriptContinuedMarker is the environment variable the script wrapper sets
	// right before the shell would return control to the boot sequence. Its
	// absence in the captured environment means the script requested
	// termination. It never leaks into snapshots.
	ScriptContinuedMarker = "BOOTR_SCRIPT_CONTINUED"
)

// DBPath returns the boot history database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// DefaultScriptPath returns the default customer startup script path.
func DefaultScriptPath() string {
	return filepath.Join(StartupDir, StartupScriptFile)
}

// DefaultSnapshotPath returns the default environment snapshot destination.
// The original deployments used either a working-directory file or a temp
// directory file. Both are configuration, the temp dir is the default.
func DefaultSnapshotPath() string {
	return filepath.Join(os.TempDir(), SnapshotFile)
}
