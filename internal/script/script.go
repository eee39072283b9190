package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/slok/bootr/internal/conventions"
	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/model"
	utilsenv "github.com/slok/bootr/internal/utils/env"
)

// Runner knows how to execute the customer startup script. The script is an
// opaque, untrusted program: it either returns control or requests
// termination with an exit code.
type Runner interface {
	Run(ctx context.Context, scriptPath string, extraEnv map[string]string) (model.ScriptResult, error)
}

//go:generate mockery --case underscore --output scriptmock --outpkg scriptmock --name Runner

const (
	// timeoutExitCode is the exit code reported when the script step hits its
	// deadline, same convention as timeout(1).
	timeoutExitCode = 124
	// pipeGracePeriod bounds how long we wait for the script's pipes to drain
	// after the shell process has exited.
	pipeGracePeriod = 500 * time.Millisecond
)

// The wrapper sources the customer script the way the original entrypoint
// shell did, so `exit` inside it terminates the whole shell. The EXIT trap
// dumps the final environment NUL-separated on fd 3 on every exit path, and
// the marker assignment is only reached when the script returned control.
const wrapperScript = `set -a
trap 'printenv -0 >&3' EXIT
. "$1"
` + conventions.ScriptContinuedMarker + `=1
`

// ShellRunnerConfig is the configuration for the shell runner.
type ShellRunnerConfig struct {
	// Shell is the shell binary used to source the script. Defaults to /bin/bash.
	Shell string
	// Environ is the base environment source. Defaults to os.Environ.
	Environ func() []string
	Logger  log.Logger
}

func (c *ShellRunnerConfig) defaults() error {
	if c.Shell == "" {
		c.Shell = "/bin/bash"
	}
	if c.Environ == nil {
		c.Environ = os.Environ
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "script.ShellRunner"})

	return nil
}

// ShellRunner executes the customer script by sourcing it in a shell
// subprocess.
type ShellRunner struct {
	shell   string
	environ func() []string
	logger  log.Logger
}

// NewShellRunner creates a new shell runner.
func NewShellRunner(cfg ShellRunnerConfig) (*ShellRunner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &ShellRunner{
		shell:   cfg.Shell,
		environ: cfg.Environ,
		logger:  cfg.Logger,
	}, nil
}

// Run satisfies the Runner interface.
func (r *ShellRunner) Run(ctx context.Context, scriptPath string, extraEnv map[string]string) (model.ScriptResult, error) {
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		r.logger.Infof("No startup script found at %s", scriptPath)
		return model.Continued(nil), nil
	}

	r.logger.Infof("Executing startup script %s", scriptPath)

	cmd := exec.CommandContext(ctx, r.shell, "-c", wrapperScript, "bootr-startup", scriptPath)
	cmd.Env = utilsenv.ToEnviron(utilsenv.MergeMaps(utilsenv.ToMap(r.environ()), extraEnv))

	// fd 3 carries the environment dump out of the script shell.
	envRead, envWrite, err := os.Pipe()
	if err != nil {
		return model.ScriptResult{}, fmt.Errorf("could not create environment pipe: %w", err)
	}
	defer envRead.Close()
	cmd.ExtraFiles = []*os.File{envWrite}

	// Script output is merged and forwarded to the logger line by line.
	outRead, outWrite, err := os.Pipe()
	if err != nil {
		envWrite.Close()
		return model.ScriptResult{}, fmt.Errorf("could not create output pipe: %w", err)
	}
	defer outRead.Close()
	cmd.Stdout = outWrite
	cmd.Stderr = outWrite

	if err := cmd.Start(); err != nil {
		envWrite.Close()
		outWrite.Close()
		return model.ScriptResult{}, fmt.Errorf("could not start script: %w", err)
	}

	// The child holds its own copies now.
	envWrite.Close()
	outWrite.Close()

	logDone := make(chan struct{})
	go func() {
		defer close(logDone)
		scanner := bufio.NewScanner(outRead)
		for scanner.Scan() {
			r.logger.Infof("[startup] %s", scanner.Text())
		}
	}()

	envCh := make(chan []byte, 1)
	go func() {
		dump, _ := io.ReadAll(envRead)
		envCh <- dump
	}()

	waitErr := cmd.Wait()

	// Script children can inherit the pipe write ends and outlive the shell
	// (a killed shell never closes them at all), so the reads get a bounded
	// grace period instead of waiting for EOF forever.
	var envDump []byte
	select {
	case envDump = <-envCh:
	case <-time.After(pipeGracePeriod):
		r.logger.Warningf("Gave up waiting for the script environment dump")
	}
	select {
	case <-logDone:
	case <-time.After(pipeGracePeriod):
	}

	env, continued := parseEnvDump(envDump)

	exitCode := 0
	if waitErr != nil {
		exitErr, ok := waitErr.(*exec.ExitError)
		if !ok {
			return model.ScriptResult{}, fmt.Errorf("could not wait for script: %w", waitErr)
		}
		exitCode = exitErr.ExitCode()
	}

	if ctx.Err() != nil {
		r.logger.Warningf("Startup script did not finish in time, terminating")
		return model.Terminated(timeoutExitCode, env), nil
	}

	if continued {
		r.logger.Infof("Startup script finished")
		return model.Continued(env), nil
	}

	r.logger.Infof("Startup script requested termination (exit code: %d)", exitCode)
	return model.Terminated(exitCode, env), nil
}

// parseEnvDump parses the NUL-separated KEY=VALUE dump from the script shell.
// It reports whether the continuation marker was present, stripping it from
// the returned environment.
func parseEnvDump(dump []byte) (env map[string]string, continued bool) {
	if len(dump) == 0 {
		return nil, false
	}

	env = map[string]string{}
	for _, entry := range strings.Split(string(dump), "\x00") {
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if key == conventions.ScriptContinuedMarker {
			continued = true
			continue
		}
		env[key] = value
	}

	return env, continued
}
