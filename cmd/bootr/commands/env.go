package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/bootr/internal/conventions"
	"github.com/slok/bootr/internal/envsnap"
)

type EnvCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path   string
	format string
}

// NewEnvCommand returns the env command.
func NewEnvCommand(rootCmd *RootCommand, app *kingpin.Application) *EnvCommand {
	c := &EnvCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("env", "Show the environment captured in the snapshot artifact.")
	c.Cmd.Flag("path", "Snapshot artifact location.").Default(conventions.DefaultSnapshotPath()).StringVar(&c.path)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c EnvCommand) Name() string { return c.Cmd.FullCommand() }

func (c EnvCommand) Run(ctx context.Context) error {
	abs, err := filepath.Abs(c.path)
	if err != nil {
		return fmt.Errorf("could not resolve snapshot path: %w", err)
	}

	env, err := envsnap.ReadSnapshot(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
	if err != nil {
		return fmt.Errorf("could not read snapshot: %w", err)
	}

	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintEnv(env); err != nil {
		return fmt.Errorf("could not print environment: %w", err)
	}

	return nil
}
