package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/bootr/internal/conventions"
	"github.com/slok/bootr/internal/envsnap"
)

type SnapshotCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path string
}

// NewSnapshotCommand returns the snapshot command.
func NewSnapshotCommand(rootCmd *RootCommand, app *kingpin.Application) *SnapshotCommand {
	c := &SnapshotCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("snapshot", "Write the current process environment to the snapshot artifact.")
	c.Cmd.Flag("path", "Snapshot artifact destination.").Default(conventions.DefaultSnapshotPath()).StringVar(&c.path)

	return c
}

func (c SnapshotCommand) Name() string { return c.Cmd.FullCommand() }

func (c SnapshotCommand) Run(ctx context.Context) error {
	snapshotter, err := envsnap.NewEnvSnapshotter(envsnap.EnvSnapshotterConfig{Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create snapshotter: %w", err)
	}

	if err := snapshotter.Snapshot(c.path); err != nil {
		return fmt.Errorf("could not write snapshot: %w", err)
	}

	p := newPrinter("table", c.rootCmd.Stdout)
	return p.PrintMessage(fmt.Sprintf("Environment snapshot written to %s", c.path))
}
