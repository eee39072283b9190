package envsnap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bootr/internal/envsnap"
	"github.com/slok/bootr/internal/log"
)

func newSnapshotter(t *testing.T, environ []string) *envsnap.EnvSnapshotter {
	t.Helper()
	s, err := envsnap.NewEnvSnapshotter(envsnap.EnvSnapshotterConfig{
		Environ: func() []string { return environ },
		Logger:  log.Noop,
	})
	require.NoError(t, err)
	return s
}

func TestEnvSnapshotterSnapshot(t *testing.T) {
	tests := map[string]struct {
		environ []string
		expEnv  map[string]string
	}{
		"The captured environment should round-trip through the artifact": {
			environ: []string{"FOO=bar", "EMPTY=", "MULTI=line1\nline2"},
			expEnv:  map[string]string{"FOO": "bar", "EMPTY": "", "MULTI": "line1\nline2"},
		},

		"An empty environment should produce a readable empty artifact": {
			environ: []string{},
			expEnv:  map[string]string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "env.json")
			s := newSnapshotter(t, test.environ)

			require.NoError(t, s.Snapshot(path))

			got, err := envsnap.ReadSnapshot(os.DirFS("/"), path[1:])
			require.NoError(t, err)
			assert.Equal(t, test.expEnv, got)
		})
	}
}

func TestEnvSnapshotterSnapshotOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.json")

	s := newSnapshotter(t, []string{"FOO=old"})
	require.NoError(t, s.Snapshot(path))

	s2 := newSnapshotter(t, []string{"FOO=new"})
	require.NoError(t, s2.Snapshot(path))

	got, err := envsnap.ReadSnapshot(os.DirFS("/"), path[1:])
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"FOO": "new"}, got)
}

func TestEnvSnapshotterSnapshotCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "env.json")

	s := newSnapshotter(t, []string{"FOO=bar"})
	require.NoError(t, s.Snapshot(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestEnvSnapshotterSnapshotUnwritableDestination(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks don't apply")
	}

	dir := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.MkdirAll(dir, 0555))

	s := newSnapshotter(t, []string{"FOO=bar"})
	err := s.Snapshot(filepath.Join(dir, "env.json"))
	assert.Error(t, err)
}

func TestReadSnapshotInvalidArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env.json"), []byte("not-json"), 0644))

	_, err := envsnap.ReadSnapshot(os.DirFS(dir), "env.json")
	assert.Error(t, err)
}
