package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/bootr/internal/model"
)

// JSONPrinter prints boot controller information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// bootOutput represents a boot record output.
type bootOutput struct {
	ID            string     `json:"id"`
	Component     string     `json:"component"`
	Status        string     `json:"status"`
	ScriptPath    string     `json:"script_path"`
	SnapshotPath  string     `json:"snapshot_path"`
	ExitCode      *int       `json:"exit_code"`
	Discrepancies int        `json:"discrepancies"`
	Platform      string     `json:"platform,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
}

// discrepancyOutput represents a version discrepancy output.
type discrepancyOutput struct {
	Component string `json:"component"`
	Expected  string `json:"expected"`
	Installed string `json:"installed,omitempty"`
	Present   bool   `json:"present"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintBootList prints boot records in JSON format.
func (j *JSONPrinter) PrintBootList(boots []model.Boot) error {
	items := make([]bootOutput, len(boots))
	for i, b := range boots {
		items[i] = newBootOutput(b)
	}

	return j.encode(items)
}

// PrintBoot prints a detailed boot record in JSON format.
func (j *JSONPrinter) PrintBoot(boot model.Boot) error {
	return j.encode(newBootOutput(boot))
}

// PrintDiscrepancies prints version discrepancies in JSON format.
func (j *JSONPrinter) PrintDiscrepancies(discrepancies []model.Discrepancy) error {
	items := make([]discrepancyOutput, len(discrepancies))
	for i, d := range discrepancies {
		items[i] = discrepancyOutput{
			Component: d.Component,
			Expected:  d.Expected,
			Installed: d.Actual,
			Present:   d.Present,
		}
	}

	return j.encode(items)
}

// PrintEnv prints an environment map in JSON format.
func (j *JSONPrinter) PrintEnv(env map[string]string) error {
	return j.encode(env)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBootOutput(b model.Boot) bootOutput {
	return bootOutput{
		ID:            b.ID,
		Component:     b.Component,
		Status:        string(b.Status),
		ScriptPath:    b.ScriptPath,
		SnapshotPath:  b.SnapshotPath,
		ExitCode:      b.ExitCode,
		Discrepancies: b.Discrepancies,
		Platform:      b.Platform,
		StartedAt:     b.StartedAt.UTC(),
		FinishedAt:    b.FinishedAt,
	}
}
