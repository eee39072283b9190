package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/model"
	"github.com/slok/bootr/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.BootRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateBoot creates a new boot record in the repository.
func (r *Repository) CreateBoot(ctx context.Context, b model.Boot) error {
	query := `
		INSERT INTO boots (
			id, component, status,
			script_path, snapshot_path,
			exit_code, discrepancies, platform,
			started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		b.ID,
		b.Component,
		b.Status,
		b.ScriptPath,
		b.SnapshotPath,
		b.ExitCode,
		b.Discrepancies,
		b.Platform,
		b.StartedAt.Unix(),
		unixPtr(b.FinishedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: boots.") {
			return fmt.Errorf("boot already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert boot: %w", err)
	}

	r.logger.Debugf("Created boot in repository: %s", b.ID)
	return nil
}

// GetBoot retrieves a boot record by ID.
func (r *Repository) GetBoot(ctx context.Context, id string) (*model.Boot, error) {
	query := `
		SELECT
			id, component, status,
			script_path, snapshot_path,
			exit_code, discrepancies, platform,
			started_at, finished_at
		FROM boots
		WHERE id = ?
	`

	b, err := scanBoot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("boot with id %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get boot: %w", err)
	}

	return b, nil
}

// ListBoots lists all boot records, newest first.
func (r *Repository) ListBoots(ctx context.Context) ([]model.Boot, error) {
	query := `
		SELECT
			id, component, status,
			script_path, snapshot_path,
			exit_code, discrepancies, platform,
			started_at, finished_at
		FROM boots
		ORDER BY started_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not list boots: %w", err)
	}
	defer rows.Close()

	boots := []model.Boot{}
	for rows.Next() {
		b, err := scanBoot(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan boot: %w", err)
		}
		boots = append(boots, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate boots: %w", err)
	}

	return boots, nil
}

// UpdateBoot updates an existing boot record.
func (r *Repository) UpdateBoot(ctx context.Context, b model.Boot) error {
	query := `
		UPDATE boots SET
			component = ?, status = ?,
			script_path = ?, snapshot_path = ?,
			exit_code = ?, discrepancies = ?, platform = ?,
			started_at = ?, finished_at = ?
		WHERE id = ?
	`

	res, err := r.db.ExecContext(
		ctx,
		query,
		b.Component,
		b.Status,
		b.ScriptPath,
		b.SnapshotPath,
		b.ExitCode,
		b.Discrepancies,
		b.Platform,
		b.StartedAt.Unix(),
		unixPtr(b.FinishedAt),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update boot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("boot with id %s: %w", b.ID, model.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoot(row rowScanner) (*model.Boot, error) {
	var b model.Boot
	var exitCode sql.NullInt64
	var startedAt int64
	var finishedAt sql.NullInt64

	err := row.Scan(
		&b.ID,
		&b.Component,
		&b.Status,
		&b.ScriptPath,
		&b.SnapshotPath,
		&exitCode,
		&b.Discrepancies,
		&b.Platform,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if exitCode.Valid {
		code := int(exitCode.Int64)
		b.ExitCode = &code
	}
	b.StartedAt = time.Unix(startedAt, 0).UTC()
	if finishedAt.Valid {
		t := time.Unix(finishedAt.Int64, 0).UTC()
		b.FinishedAt = &t
	}

	return &b, nil
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}
