package repository

import (
	"context"

	"github.com/jhoicas/hospital-stock/internal/domain/entity"
)

// ItemFilter filtros para listar artículos del catálogo.
type ItemFilter struct {
	ActiveOnly bool
	Search     string // por nombre o código (ILIKE)
}

// ItemRepository define el puerto de lectura del catálogo de artículos.
// El catálogo es externo: este motor solo lee, excepto los umbrales
// min/max que escribe el recálculo batch.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByCode(ctx context.Context, code string) (*entity.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]*entity.Item, error)
	UpdateThresholds(ctx context.Context, itemID string, minStock, maxStock int64) error
}
