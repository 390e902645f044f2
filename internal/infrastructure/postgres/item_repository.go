package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hospital-stock/internal/domain"
	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, code, pack_size, min_stock, max_stock, buy_price, sell_price,
		storage_min_temp, storage_max_temp, active, created_at, updated_at`

// ItemRepo lectura del catálogo de artículos sobre PostgreSQL. El catálogo
// lo mantiene otro módulo; aquí solo se escribe min_stock/max_stock.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var i entity.Item
	err := row.Scan(
		&i.ID, &i.Name, &i.Code, &i.PackSize, &i.MinStock, &i.MaxStock,
		&i.BuyPrice, &i.SellPrice, &i.StorageMinTemp, &i.StorageMaxTemp,
		&i.Active, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// GetByID obtiene un artículo por id. Devuelve nil sin error si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	item, err := scanItem(r.q.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetByCode obtiene un artículo por su código único.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	item, err := scanItem(r.q.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by code: %w", err)
	}
	return item, nil
}

// List lista artículos con filtros opcionales de activo y búsqueda por
// nombre o código.
func (r *ItemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any
	pos := 1
	if filter.ActiveOnly {
		query += " AND active = true"
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", pos, pos)
		args = append(args, "%"+filter.Search+"%")
		pos++
	}
	query += " ORDER BY code"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// UpdateThresholds escribe los umbrales calculados por el job de reorden.
// Única escritura del motor sobre el catálogo.
func (r *ItemRepo) UpdateThresholds(ctx context.Context, itemID string, minStock, maxStock int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE items SET min_stock = $2, max_stock = $3, updated_at = now() WHERE id = $1`,
		itemID, minStock, maxStock)
	if err != nil {
		return fmt.Errorf("update item thresholds: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
