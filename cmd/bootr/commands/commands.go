package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/bootr/internal/conventions"
	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/model"
	"github.com/slok/bootr/internal/printer"
	storageio "github.com/slok/bootr/internal/storage/io"
	"github.com/slok/bootr/internal/verify"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := conventions.DBPath(filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir))
	app.Flag("db-path", "Path to the boot history SQLite database file.").Envar("BOOTR_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)

	return c
}

// loadManifest loads the expected versions manifest from a YAML file, or
// returns the built-in manifest when no path is given.
func loadManifest(ctx context.Context, path string) (model.Manifest, error) {
	if path == "" {
		return verify.DefaultManifest(), nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return model.Manifest{}, fmt.Errorf("could not resolve manifest path: %w", err)
	}

	repo := storageio.NewManifestYAMLRepository(os.DirFS(filepath.Dir(abs)))
	manifest, err := repo.GetManifest(ctx, filepath.Base(abs))
	if err != nil {
		return model.Manifest{}, fmt.Errorf("could not load manifest: %w", err)
	}

	return manifest, nil
}

// newPrinter returns the printer for the selected output format.
func newPrinter(format string, out io.Writer) printer.Printer {
	switch format {
	case "json":
		return printer.NewJSONPrinter(out)
	default:
		return printer.NewTablePrinter(out)
	}
}
