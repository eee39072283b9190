package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/bootr/internal/log"
	"github.com/slok/bootr/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.BootRepository.
type Repository struct {
	boots  map[string]model.Boot
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		boots:  make(map[string]model.Boot),
		logger: cfg.Logger,
	}, nil
}

// CreateBoot creates a new boot record in the repository.
func (r *Repository) CreateBoot(ctx context.Context, b model.Boot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boots[b.ID]; ok {
		return fmt.Errorf("boot with id %s: %w", b.ID, model.ErrAlreadyExists)
	}

	r.boots[b.ID] = b
	return nil
}

// GetBoot retrieves a boot record by ID.
func (r *Repository) GetBoot(ctx context.Context, id string) (*model.Boot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.boots[id]
	if !ok {
		return nil, fmt.Errorf("boot with id %s: %w", id, model.ErrNotFound)
	}

	return &b, nil
}

// ListBoots lists all boot records, newest first.
func (r *Repository) ListBoots(ctx context.Context) ([]model.Boot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	boots := make([]model.Boot, 0, len(r.boots))
	for _, b := range r.boots {
		boots = append(boots, b)
	}

	sort.Slice(boots, func(i, j int) bool {
		return boots[i].StartedAt.After(boots[j].StartedAt)
	})

	return boots, nil
}

// UpdateBoot updates an existing boot record.
func (r *Repository) UpdateBoot(ctx context.Context, b model.Boot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boots[b.ID]; !ok {
		return fmt.Errorf("boot with id %s: %w", b.ID, model.ErrNotFound)
	}

	r.boots[b.ID] = b
	return nil
}
