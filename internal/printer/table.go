package printer

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/slok/bootr/internal/model"
)

// TablePrinter prints boot controller information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintBootList prints boot records in a table format.
func (t *TablePrinter) PrintBootList(boots []model.Boot) error {
	if len(boots) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tCOMPONENT\tSTATUS\tEXIT CODE\tDISCREPANCIES\tSTARTED")

	for _, b := range boots {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			b.ID, b.Component, b.Status, formatExitCode(b.ExitCode), b.Discrepancies, TimeAgo(b.StartedAt))
	}

	return nil
}

// PrintBoot prints a detailed boot record.
func (t *TablePrinter) PrintBoot(boot model.Boot) error {
	fmt.Fprintf(t.writer, "ID:            %s\n", boot.ID)
	fmt.Fprintf(t.writer, "Component:     %s\n", boot.Component)
	fmt.Fprintf(t.writer, "Status:        %s\n", boot.Status)
	fmt.Fprintf(t.writer, "Script:        %s\n", boot.ScriptPath)
	fmt.Fprintf(t.writer, "Snapshot:      %s\n", boot.SnapshotPath)
	fmt.Fprintf(t.writer, "Exit code:     %s\n", formatExitCode(boot.ExitCode))
	fmt.Fprintf(t.writer, "Discrepancies: %d\n", boot.Discrepancies)

	if boot.Platform != "" {
		fmt.Fprintf(t.writer, "Platform:      %s\n", boot.Platform)
	}

	fmt.Fprintf(t.writer, "Started:       %s\n", FormatTimestamp(boot.StartedAt))
	if boot.FinishedAt != nil {
		fmt.Fprintf(t.writer, "Finished:      %s\n", FormatTimestamp(*boot.FinishedAt))
	}

	return nil
}

// PrintDiscrepancies prints version discrepancies in a table format.
func (t *TablePrinter) PrintDiscrepancies(discrepancies []model.Discrepancy) error {
	if len(discrepancies) == 0 {
		fmt.Fprintln(t.writer, "All versions match.")
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "COMPONENT\tEXPECTED\tINSTALLED")

	for _, d := range discrepancies {
		installed := d.Actual
		if !d.Present {
			installed = "(absent)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Component, d.Expected, installed)
	}

	return nil
}

// PrintEnv prints an environment map sorted by variable name.
func (t *TablePrinter) PrintEnv(env map[string]string) error {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(t.writer, "%s=%s\n", k, env[k])
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func formatExitCode(code *int) string {
	if code == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *code)
}
