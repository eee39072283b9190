package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/bootr/internal/app/boot"
	"github.com/slok/bootr/internal/envsnap"
	"github.com/slok/bootr/internal/script"
	"github.com/slok/bootr/internal/storage"
	"github.com/slok/bootr/internal/storage/memory"
	"github.com/slok/bootr/internal/storage/sqlite"
	utilsenv "github.com/slok/bootr/internal/utils/env"
	"github.com/slok/bootr/internal/verify"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	component     string
	scriptPath    string
	snapshotPath  string
	manifestPath  string
	shell         string
	envSpecs      []string
	scriptTimeout time.Duration
	noHistory     bool
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run the boot sequence for a runtime component and exit with the resolved code.")
	c.Cmd.Arg("component", "Runtime component being booted (e.g. worker, scheduler, webserver).").Default("main").StringVar(&c.component)
	c.Cmd.Flag("script", "Customer startup script path.").StringVar(&c.scriptPath)
	c.Cmd.Flag("snapshot-path", "Environment snapshot artifact destination.").StringVar(&c.snapshotPath)
	c.Cmd.Flag("manifest", "Expected versions manifest YAML file (uses the built-in manifest if unset).").Short('f').StringVar(&c.manifestPath)
	c.Cmd.Flag("env", "Environment variable for the startup script (KEY=VALUE, or KEY to inherit). Repeatable.").Short('e').StringsVar(&c.envSpecs)
	c.Cmd.Flag("shell", "Shell used to source the startup script.").Default("/bin/bash").StringVar(&c.shell)
	c.Cmd.Flag("script-timeout", "Maximum startup script execution time (0 disables the limit).").Default("5m").DurationVar(&c.scriptTimeout)
	c.Cmd.Flag("no-history", "Disable boot history persistence.").BoolVar(&c.noHistory)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	manifest, err := loadManifest(ctx, c.manifestPath)
	if err != nil {
		return err
	}

	extraEnv, err := utilsenv.ParseSpecs(c.envSpecs)
	if err != nil {
		return fmt.Errorf("invalid env specs: %w", err)
	}

	runner, err := script.NewShellRunner(script.ShellRunnerConfig{
		Shell:  c.shell,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create script runner: %w", err)
	}

	source, err := verify.NewExecSource(verify.ExecSourceConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create version source: %w", err)
	}

	verifier, err := verify.NewManifestVerifier(verify.ManifestVerifierConfig{
		Source: source,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create verifier: %w", err)
	}

	snapshotter, err := envsnap.NewEnvSnapshotter(envsnap.EnvSnapshotterConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create snapshotter: %w", err)
	}

	// Boot history is best effort: a broken database warns and falls back to
	// an in-process record, it never blocks the container boot.
	var repo storage.BootRepository
	if !c.noHistory {
		sqliteRepo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.rootCmd.DBPath,
			Logger: logger,
		})
		if err != nil {
			logger.Warningf("Could not open boot history database: %s", err)
		} else {
			defer sqliteRepo.Close()
			repo = sqliteRepo
		}
	}
	if repo == nil {
		memRepo, err := memory.NewRepository(memory.RepositoryConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		repo = memRepo
	}

	svc, err := boot.NewService(boot.ServiceConfig{
		Runner:      runner,
		Verifier:    verifier,
		Snapshotter: snapshotter,
		Repository:  repo,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	err = svc.Run(ctx, boot.Request{
		Component:     c.component,
		ScriptPath:    c.scriptPath,
		SnapshotPath:  c.snapshotPath,
		Manifest:      manifest,
		ExtraEnv:      extraEnv,
		ScriptTimeout: c.scriptTimeout,
	})
	if err != nil {
		return fmt.Errorf("boot sequence failed: %w", err)
	}

	return nil
}
