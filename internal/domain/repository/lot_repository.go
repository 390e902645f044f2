package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-stock/internal/domain/entity"
)

// LotRepository define el puerto de persistencia de lotes.
// Las mutaciones deben ejecutarse con la fila bloqueada dentro de la
// transacción del motor de asignación; el repositorio no es seguro por
// sí solo ante concurrencia.
type LotRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	GetByItemAndNumber(ctx context.Context, itemID, lotNumber string) (*entity.Lot, error)
	Create(ctx context.Context, lot *entity.Lot) error

	// Increment / Decrement exigen qty > 0. Decrement lleva guarda
	// quantity >= qty en el UPDATE; la validación de negocio de
	// insuficiencia es del motor, no del repositorio.
	Increment(ctx context.Context, lotID string, qty int64) error
	Decrement(ctx context.Context, lotID string, qty int64) error

	// ListForAllocation devuelve los lotes candidatos de un artículo
	// (activos, con cantidad > 0 y, si includeExpired es false, no vencidos
	// antes de today) bloqueando cada fila en orden de id ascendente para
	// evitar deadlocks entre asignaciones concurrentes. El orden FEFO se
	// aplica en memoria después.
	ListForAllocation(ctx context.Context, itemID string, today time.Time, includeExpired bool) ([]*entity.Lot, error)

	// ListByItem lectura sin bloqueo para consultas.
	ListByItem(ctx context.Context, itemID string, includeDisposed bool) ([]*entity.Lot, error)

	SumQuantityByItem(ctx context.Context, itemID string) (int64, error)
	// SumQuantityAll suma de cantidades agrupada por artículo (barrido de alertas).
	SumQuantityAll(ctx context.Context) (map[string]int64, error)

	// UpdatePrices sobreescribe solo los precios provistos (no nil);
	// preserva el precio histórico del lote cuando el caller no lo indica.
	UpdatePrices(ctx context.Context, lotID string, buyPrice, sellPrice *decimal.Decimal) error
	UpdateLocation(ctx context.Context, lotID string, locationID *string) error
	// Dispose fuerza cantidad 0 y estado DISPOSED; los lotes nunca se borran.
	Dispose(ctx context.Context, lotID string) error
}
