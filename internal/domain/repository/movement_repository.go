package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hospital-stock/internal/domain/entity"
)

// MovementRepository define el puerto del libro de movimientos.
// El contrato es append-only: no existe update ni delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error

	// NextReference incrementa atómicamente el contador (prefix, period)
	// y devuelve el consecutivo. period con formato YYYY-MM.
	NextReference(ctx context.Context, prefix, period string) (int64, error)

	// SumOutSince suma las cantidades OUT de un artículo desde la fecha dada.
	SumOutSince(ctx context.Context, itemID string, since time.Time) (int64, error)

	ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	ListByLot(ctx context.Context, lotID string, limit, offset int) ([]*entity.Movement, error)
}
