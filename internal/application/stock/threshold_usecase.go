package stock

import (
	"context"
	"time"

	"github.com/jhoicas/hospital-stock/internal/domain/repository"
	domstock "github.com/jhoicas/hospital-stock/internal/domain/stock"
	"github.com/jhoicas/hospital-stock/pkg/logger"
)

// ThresholdUseCase recalcula min_stock/max_stock por artículo a partir del
// historial de consumo. Pensado para correr en un job programado (semanal),
// nunca en línea con una petición. Idempotente: solo persiste artículos cuyo
// valor calculado difiere del guardado.
type ThresholdUseCase struct {
	itemRepo repository.ItemRepository
	lotRepo  repository.LotRepository
	movRepo  repository.MovementRepository
	log      *logger.Logger
}

// NewThresholdUseCase construye el recalculador de umbrales.
func NewThresholdUseCase(
	itemRepo repository.ItemRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	log *logger.Logger,
) *ThresholdUseCase {
	return &ThresholdUseCase{itemRepo: itemRepo, lotRepo: lotRepo, movRepo: movRepo, log: log}
}

// RecomputeSummary resultado de una corrida del recálculo.
type RecomputeSummary struct {
	Evaluated int
	Updated   int
}

// Recompute evalúa todos los artículos activos: suma el consumo OUT de los
// últimos 7 y 30 días, aplica la fórmula de umbrales y persiste solo los
// cambios.
func (uc *ThresholdUseCase) Recompute(ctx context.Context) (RecomputeSummary, error) {
	var summary RecomputeSummary

	items, err := uc.itemRepo.List(ctx, repository.ItemFilter{ActiveOnly: true})
	if err != nil {
		return summary, err
	}
	onHandByItem, err := uc.lotRepo.SumQuantityAll(ctx)
	if err != nil {
		return summary, err
	}

	now := time.Now()
	for _, item := range items {
		summary.Evaluated++

		out7, err := uc.movRepo.SumOutSince(ctx, item.ID, now.AddDate(0, 0, -7))
		if err != nil {
			return summary, err
		}
		out30, err := uc.movRepo.SumOutSince(ctx, item.ID, now.AddDate(0, 0, -30))
		if err != nil {
			return summary, err
		}

		minStock, maxStock := domstock.ComputeThresholds(domstock.ThresholdInput{
			Out7:     out7,
			Out30:    out30,
			OnHand:   onHandByItem[item.ID],
			PackSize: item.PackSize,
		})
		if minStock == item.MinStock && maxStock == item.MaxStock {
			continue
		}
		if err := uc.itemRepo.UpdateThresholds(ctx, item.ID, minStock, maxStock); err != nil {
			return summary, err
		}
		summary.Updated++
		uc.log.Debug().
			Str("item_id", item.ID).
			Str("code", item.Code).
			Int64("min_stock", minStock).
			Int64("max_stock", maxStock).
			Msg("umbrales actualizados")
	}

	uc.log.Info().
		Int("evaluated", summary.Evaluated).
		Int("updated", summary.Updated).
		Msg("recálculo de umbrales terminado")
	return summary, nil
}
