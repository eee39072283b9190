package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/bootr/internal/model"
	"github.com/slok/bootr/internal/storage/sqlite"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	bootID string
	format string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "Show recorded boot sequences.")
	c.Cmd.Arg("boot-id", "Show a single boot record.").StringVar(&c.bootID)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	p := newPrinter(c.format, c.rootCmd.Stdout)

	if c.bootID != "" {
		b, err := repo.GetBoot(ctx, c.bootID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("boot %q not found", c.bootID)
			}
			return fmt.Errorf("could not get boot: %w", err)
		}
		if err := p.PrintBoot(*b); err != nil {
			return fmt.Errorf("could not print boot: %w", err)
		}
		return nil
	}

	boots, err := repo.ListBoots(ctx)
	if err != nil {
		return fmt.Errorf("could not list boots: %w", err)
	}

	if err := p.PrintBootList(boots); err != nil {
		return fmt.Errorf("could not print boot list: %w", err)
	}

	return nil
}
