package storage

import (
	"context"

	"github.com/slok/bootr/internal/model"
)

// BootRepository is the interface for boot history persistence.
type BootRepository interface {
	CreateBoot(ctx context.Context, b model.Boot) error
	GetBoot(ctx context.Context, id string) (*model.Boot, error)
	ListBoots(ctx context.Context) ([]model.Boot, error)
	UpdateBoot(ctx context.Context, b model.Boot) error
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name BootRepository
