package verify

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/slok/bootr/internal/log"
)

// ExecSourceConfig is the configuration for the exec based version source.
type ExecSourceConfig struct {
	// PackageProbe is the command used to query a component's package
	// metadata, the component name is appended as the last argument. The
	// output is scanned for a "Version:" line.
	PackageProbe []string
	// RuntimeProbe is the command used to query the runtime version. The last
	// whitespace separated field of the first output line is reduced to
	// major.minor.
	RuntimeProbe []string
	Logger       log.Logger
}

func (c *ExecSourceConfig) defaults() error {
	if len(c.PackageProbe) == 0 {
		c.PackageProbe = []string{"pip3", "show"}
	}
	if len(c.RuntimeProbe) == 0 {
		c.RuntimeProbe = []string{"python3", "--version"}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "verify.ExecSource"})

	return nil
}

// ExecSource resolves versions by running probe commands against the runtime's
// package metadata tooling.
type ExecSource struct {
	packageProbe []string
	runtimeProbe []string
	logger       log.Logger
}

// NewExecSource creates a new exec based version source.
func NewExecSource(cfg ExecSourceConfig) (*ExecSource, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &ExecSource{
		packageProbe: cfg.PackageProbe,
		runtimeProbe: cfg.RuntimeProbe,
		logger:       cfg.Logger,
	}, nil
}

// InstalledVersion satisfies the Source interface.
func (s *ExecSource) InstalledVersion(ctx context.Context, component string) (string, bool, error) {
	args := append(append([]string{}, s.packageProbe[1:]...), component)
	cmd := exec.CommandContext(ctx, s.packageProbe[0], args...)

	out, err := cmd.Output()
	if err != nil {
		// The probe exits non zero for unknown packages.
		if _, ok := err.(*exec.ExitError); ok {
			s.logger.Debugf("Package probe reported %q as not installed", component)
			return "", false, nil
		}
		return "", false, fmt.Errorf("could not run package probe: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v), true, nil
		}
	}

	return "", false, fmt.Errorf("package probe output for %q has no version line", component)
}

// RuntimeVersion satisfies the Source interface.
func (s *ExecSource) RuntimeVersion(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, s.runtimeProbe[0], s.runtimeProbe[1:]...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("could not run runtime probe: %w", err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("runtime probe output is empty")
	}

	return MajorMinor(fields[len(fields)-1]), nil
}

// MajorMinor reduces a version string to its major.minor part.
func MajorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}

	return parts[0] + "." + parts[1]
}
