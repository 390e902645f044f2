package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, item_id, lot_id, type, quantity, unit_price, reason, reference, created_by, created_at`

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Append-only: el adaptador no expone update ni delete.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste una fila del libro. La fila es inmutable desde aquí.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	query := `
		INSERT INTO movements (id, item_id, lot_id, type, quantity, unit_price, reason, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ItemID, movement.LotID, movement.Type,
		movement.Quantity, movement.UnitPrice, movement.Reason, movement.Reference,
		createdBy, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// NextReference incrementa atómicamente el contador (prefix, period) y
// devuelve el consecutivo. El upsert con RETURNING evita el patrón
// leer-e-incrementar: dos escrituras concurrentes del mismo mes jamás
// reciben el mismo número.
func (r *MovementRepo) NextReference(ctx context.Context, prefix, period string) (int64, error) {
	var seq int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO movement_counters (prefix, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, period)
		DO UPDATE SET seq = movement_counters.seq + 1
		RETURNING seq`, prefix, period,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next reference: %w", err)
	}
	return seq, nil
}

// SumOutSince suma las cantidades OUT de un artículo desde la fecha dada.
func (r *MovementRepo) SumOutSince(ctx context.Context, itemID string, since time.Time) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM movements
		WHERE item_id = $1 AND type = $2 AND created_at >= $3`,
		itemID, entity.MovementTypeOUT, since,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum out since: %w", err)
	}
	return sum, nil
}

// ListByItem lista movimientos de un artículo en un rango de fechas.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	return r.list(ctx, query, args...)
}

// ListByLot lista los movimientos de un lote.
func (r *MovementRepo) ListByLot(ctx context.Context, lotID string, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements WHERE lot_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, lotID, limit, offset)
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.ItemID, &m.LotID, &m.Type, &m.Quantity,
			&m.UnitPrice, &m.Reason, &m.Reference, &createdBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
