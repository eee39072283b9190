package printer

import "github.com/slok/bootr/internal/model"

// Printer knows how to print boot controller information in different formats.
type Printer interface {
	PrintBootList(boots []model.Boot) error
	PrintBoot(boot model.Boot) error
	PrintDiscrepancies(discrepancies []model.Discrepancy) error
	PrintEnv(env map[string]string) error
	PrintMessage(msg string) error
}
