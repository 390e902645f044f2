package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/hospital-stock/internal/domain"
	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/repository"
	domstock "github.com/jhoicas/hospital-stock/internal/domain/stock"
)

// Clasificación del estado de stock de un artículo.
const (
	StockStatusBelowMin = "below_min"
	StockStatusAboveMax = "above_max"
	StockStatusOK       = "ok"
)

// QueryUseCase consultas de solo lectura sobre el inventario: existencias,
// listado FEFO de lotes y barrido de alertas. No abre transacciones ni
// bloquea filas.
type QueryUseCase struct {
	itemRepo repository.ItemRepository
	lotRepo  repository.LotRepository
	movRepo  repository.MovementRepository
}

// NewQueryUseCase construye el servicio de consultas.
func NewQueryUseCase(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) *QueryUseCase {
	return &QueryUseCase{itemRepo: itemRepo, lotRepo: lotRepo, movRepo: movRepo}
}

// ItemStockStatus existencias y clasificación de un artículo.
type ItemStockStatus struct {
	ItemID   string
	Code     string
	Name     string
	OnHand   int64
	MinStock int64
	MaxStock int64
	Status   string
	Warnings []string
}

// AlertsReport resultado del barrido de alertas de todo el catálogo.
type AlertsReport struct {
	BelowMin []ItemStockStatus
	AboveMax []ItemStockStatus
	OK       []ItemStockStatus
}

// StockStatus devuelve existencias (suma de lotes), umbrales y advertencias
// de un artículo: below_min si min>0 y onHand<min; above_max si max>0 y
// onHand>max; ok en otro caso.
func (uc *QueryUseCase) StockStatus(ctx context.Context, itemID string) (*ItemStockStatus, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	onHand, err := uc.lotRepo.SumQuantityByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	status := classify(item, onHand)
	return status, nil
}

// ListLots devuelve los lotes activos de un artículo en orden FEFO (el mismo
// orden que usa el consumo); includeExpired agrega los lotes ya vencidos.
func (uc *QueryUseCase) ListLots(ctx context.Context, itemID string, includeExpired bool) ([]*entity.Lot, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByItem(ctx, itemID, false)
	if err != nil {
		return nil, err
	}
	today := startOfDay(time.Now())
	lots = domstock.FilterEligible(lots, today, includeExpired)
	domstock.SortFEFO(lots)
	return lots, nil
}

// ListMovements historial de movimientos de un artículo para auditoría.
func (uc *QueryUseCase) ListMovements(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movRepo.ListByItem(ctx, itemID, from, to, limit, offset)
}

// Alerts barre el catálogo (con filtros opcionales de activo/búsqueda) y
// clasifica cada artículo según sus umbrales.
func (uc *QueryUseCase) Alerts(ctx context.Context, filter repository.ItemFilter) (*AlertsReport, error) {
	items, err := uc.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sums, err := uc.lotRepo.SumQuantityAll(ctx)
	if err != nil {
		return nil, err
	}
	report := &AlertsReport{}
	for _, item := range items {
		status := classify(item, sums[item.ID])
		switch status.Status {
		case StockStatusBelowMin:
			report.BelowMin = append(report.BelowMin, *status)
		case StockStatusAboveMax:
			report.AboveMax = append(report.AboveMax, *status)
		default:
			report.OK = append(report.OK, *status)
		}
	}
	return report, nil
}

func classify(item *entity.Item, onHand int64) *ItemStockStatus {
	s := &ItemStockStatus{
		ItemID:   item.ID,
		Code:     item.Code,
		Name:     item.Name,
		OnHand:   onHand,
		MinStock: item.MinStock,
		MaxStock: item.MaxStock,
		Status:   StockStatusOK,
	}
	switch {
	case item.MinStock > 0 && onHand < item.MinStock:
		s.Status = StockStatusBelowMin
		s.Warnings = append(s.Warnings, fmt.Sprintf("stock %d por debajo del mínimo %d", onHand, item.MinStock))
	case item.MaxStock > 0 && onHand > item.MaxStock:
		s.Status = StockStatusAboveMax
		s.Warnings = append(s.Warnings, fmt.Sprintf("stock %d por encima del máximo %d", onHand, item.MaxStock))
	}
	return s
}
