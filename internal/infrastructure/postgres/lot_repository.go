package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-stock/internal/domain"
	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, item_id, lot_number, expires_at, quantity, buy_price, sell_price,
		supplier, status, location_id, received_at, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.ItemID, &l.LotNumber, &l.ExpiresAt, &l.Quantity,
		&l.BuyPrice, &l.SellPrice, &l.Supplier, &l.Status, &l.LocationID,
		&l.ReceivedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID obtiene un lote por id. Devuelve nil sin error si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 FOR UPDATE`
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return lot, nil
}

// GetByItemAndNumber busca un lote por su clave natural (item_id, lot_number).
func (r *LotRepo) GetByItemAndNumber(ctx context.Context, itemID, lotNumber string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE item_id = $1 AND lot_number = $2`
	lot, err := scanLot(r.q.QueryRow(ctx, query, itemID, lotNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot by item and number: %w", err)
	}
	return lot, nil
}

// Create persiste un lote nuevo. Violación del único (item_id, lot_number)
// se reporta como ErrDuplicate.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	now := time.Now()
	if lot.CreatedAt.IsZero() {
		lot.CreatedAt = now
	}
	if lot.ReceivedAt.IsZero() {
		lot.ReceivedAt = now
	}
	lot.UpdatedAt = now
	query := `
		INSERT INTO lots (id, item_id, lot_number, expires_at, quantity, buy_price, sell_price,
			supplier, status, location_id, received_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ItemID, lot.LotNumber, lot.ExpiresAt, lot.Quantity,
		lot.BuyPrice, lot.SellPrice, lot.Supplier, lot.Status, lot.LocationID,
		lot.ReceivedAt, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

// Increment suma qty (> 0) a la cantidad del lote.
func (r *LotRepo) Increment(ctx context.Context, lotID string, qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	query := `UPDATE lots SET quantity = quantity + $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, lotID, qty)
	if err != nil {
		return fmt.Errorf("increment lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Decrement resta qty (> 0) con guarda quantity >= qty: la cantidad nunca
// puede quedar negativa, ni siquiera ante un caller que se saltó el pre-chequeo.
func (r *LotRepo) Decrement(ctx context.Context, lotID string, qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	query := `UPDATE lots SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2`
	tag, err := r.q.Exec(ctx, query, lotID, qty)
	if err != nil {
		return fmt.Errorf("decrement lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNegativeResult
	}
	return nil
}

// ListForAllocation devuelve los candidatos de consumo bloqueando cada fila.
// ORDER BY id fija el orden de adquisición de locks entre asignaciones
// concurrentes (anti-deadlock); el orden FEFO lo aplica el motor en memoria.
func (r *LotRepo) ListForAllocation(ctx context.Context, itemID string, today time.Time, includeExpired bool) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + `
		FROM lots
		WHERE item_id = $1 AND status = $2 AND quantity > 0`
	args := []any{itemID, entity.LotStatusActive}
	if !includeExpired {
		query += ` AND (expires_at IS NULL OR expires_at >= $3)`
		args = append(args, today)
	}
	query += ` ORDER BY id FOR UPDATE`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots for allocation: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, rows.Err()
}

// ListByItem lista los lotes de un artículo sin bloquear (consultas).
func (r *LotRepo) ListByItem(ctx context.Context, itemID string, includeDisposed bool) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE item_id = $1`
	args := []any{itemID}
	if !includeDisposed {
		query += ` AND status = $2`
		args = append(args, entity.LotStatusActive)
	}
	query += ` ORDER BY id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, rows.Err()
}

// SumQuantityByItem existencias del artículo: suma de cantidades de sus lotes.
func (r *LotRepo) SumQuantityByItem(ctx context.Context, itemID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM lots WHERE item_id = $1`, itemID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum quantity by item: %w", err)
	}
	return sum, nil
}

// SumQuantityAll existencias agrupadas por artículo (barrido de alertas).
func (r *LotRepo) SumQuantityAll(ctx context.Context) (map[string]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT item_id, COALESCE(SUM(quantity), 0) FROM lots GROUP BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("sum quantity all: %w", err)
	}
	defer rows.Close()
	sums := make(map[string]int64)
	for rows.Next() {
		var itemID string
		var sum int64
		if err := rows.Scan(&itemID, &sum); err != nil {
			return nil, fmt.Errorf("scan quantity sum: %w", err)
		}
		sums[itemID] = sum
	}
	return sums, rows.Err()
}

// UpdatePrices sobreescribe solo los precios provistos; nil conserva el
// precio histórico del lote.
func (r *LotRepo) UpdatePrices(ctx context.Context, lotID string, buyPrice, sellPrice *decimal.Decimal) error {
	query := `UPDATE lots SET
			buy_price = COALESCE($2, buy_price),
			sell_price = COALESCE($3, sell_price),
			updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, lotID, buyPrice, sellPrice)
	if err != nil {
		return fmt.Errorf("update lot prices: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateLocation cambia la ubicación física del lote.
func (r *LotRepo) UpdateLocation(ctx context.Context, lotID string, locationID *string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE lots SET location_id = $2, updated_at = now() WHERE id = $1`,
		lotID, locationID)
	if err != nil {
		return fmt.Errorf("update lot location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Dispose fuerza cantidad 0 y estado DISPOSED; el lote nunca se borra.
func (r *LotRepo) Dispose(ctx context.Context, lotID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE lots SET quantity = 0, status = $2, updated_at = now() WHERE id = $1`,
		lotID, entity.LotStatusDisposed)
	if err != nil {
		return fmt.Errorf("dispose lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
