package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/bootr/internal/verify"
)

type VerifyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	manifestPath string
	format       string
	strict       bool
}

// NewVerifyCommand returns the verify command.
func NewVerifyCommand(rootCmd *RootCommand, app *kingpin.Application) *VerifyCommand {
	c := &VerifyCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("verify", "Verify installed component versions against the expected versions manifest.")
	c.Cmd.Flag("manifest", "Expected versions manifest YAML file (uses the built-in manifest if unset).").Short('f').StringVar(&c.manifestPath)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")
	c.Cmd.Flag("strict", "Fail with a non-zero exit code when discrepancies are found.").BoolVar(&c.strict)

	return c
}

func (c VerifyCommand) Name() string { return c.Cmd.FullCommand() }

func (c VerifyCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	manifest, err := loadManifest(ctx, c.manifestPath)
	if err != nil {
		return err
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

	discrepancies := verifier.Verify(ctx, manifest)

	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintDiscrepancies(discrepancies); err != nil {
		return fmt.Errorf("could not print discrepancies: %w", err)
	}

	if c.strict && len(discrepancies) > 0 {
		return fmt.Errorf("found %d version discrepancies", len(discrepancies))
	}

	return nil
}
