package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospital-stock/internal/domain"
	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/repository"
	domstock "github.com/jhoicas/hospital-stock/internal/domain/stock"
)

// AllocationUseCase es el motor transaccional de lotes: recepción, consumo
// FEFO multi-lote, ajuste, traslado/partición y baja. Toda mutación corre
// dentro de una transacción con bloqueo de fila (SELECT FOR UPDATE) y
// Commit/Rollback vía TxRunner.
type AllocationUseCase struct {
	txRunner TxRunner
}

// NewAllocationUseCase construye el motor de asignación.
func NewAllocationUseCase(txRunner TxRunner) *AllocationUseCase {
	return &AllocationUseCase{txRunner: txRunner}
}

// Meta datos de auditoría que acompañan una operación.
type Meta struct {
	Reason    string
	Reference string // vacío = se sintetiza una referencia consecutiva
	Actor     string // id del usuario para atribución
}

// ReceiveInput entrada para registrar una recepción de lote.
// BuyPrice/SellPrice nil = heredar los precios por defecto del artículo.
type ReceiveInput struct {
	ItemID     string
	LotNumber  string
	Quantity   int64
	BuyPrice   *decimal.Decimal
	SellPrice  *decimal.Decimal
	ExpiresAt  *time.Time
	Supplier   string
	LocationID *string
	Meta       Meta
}

// ConsumeInput entrada para un consumo FEFO.
// IncludeExpired permite consumir lotes vencidos (por defecto se excluyen).
type ConsumeInput struct {
	ItemID         string
	Quantity       int64
	IncludeExpired bool
	Meta           Meta
}

// Allocation resultado por lote de un consumo.
type Allocation struct {
	LotID     string
	Taken     int64
	UnitPrice decimal.Decimal
}

// TransferResult resultado de un traslado: el movimiento registrado, el lote
// origen y el lote destino (el mismo lote cuando fue reubicación completa).
type TransferResult struct {
	Movement *entity.Movement
	FromLot  *entity.Lot
	ToLot    *entity.Lot
}

// Receive registra la entrada de quantity unidades al lote (item, lotNumber).
// Get-or-create idempotente: recibir dos veces el mismo número de lote
// acumula sobre la misma fila, nunca duplica. Los precios guardados solo se
// sobreescriben si el caller los indica explícitamente.
func (uc *AllocationUseCase) Receive(ctx context.Context, in ReceiveInput) (*entity.Lot, error) {
	if in.ItemID == "" || strings.TrimSpace(in.LotNumber) == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Lot
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		itemRepo repository.ItemRepository,
		_ repository.LocationRepository,
	) error {
		item, err := itemRepo.GetByID(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		lot, err := getOrCreateLot(ctx, lotRepo, item, in)
		if err != nil {
			return err
		}
		if err := lotRepo.Increment(ctx, lot.ID, in.Quantity); err != nil {
			return err
		}
		lot.Quantity += in.Quantity

		// El precio unitario del movimiento IN es el precio de compra
		// realmente usado: explícito del caller o heredado del artículo.
		unitPrice := lot.BuyPrice
		if in.BuyPrice != nil {
			unitPrice = *in.BuyPrice
		}
		if err := appendMovement(ctx, movRepo, &entity.Movement{
			ItemID:    item.ID,
			LotID:     lot.ID,
			Type:      entity.MovementTypeIN,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			Reason:    in.Meta.Reason,
			Reference: in.Meta.Reference,
			CreatedBy: in.Meta.Actor,
		}); err != nil {
			return err
		}
		result = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// getOrCreateLot busca el lote por (item, número) y lo bloquea; si no existe
// lo crea en cantidad 0 resolviendo precios (explícitos del caller o
// heredados del artículo). Si el INSERT pierde la carrera contra otra
// recepción del mismo número (violación del único), se adopta la fila
// ganadora y se acumula sobre ella en vez de fallar. Re-llamadas no pisan
// precios históricos salvo indicación explícita.
func getOrCreateLot(ctx context.Context, lotRepo repository.LotRepository, item *entity.Item, in ReceiveInput) (*entity.Lot, error) {
	existing, err := lotRepo.GetByItemAndNumber(ctx, item.ID, in.LotNumber)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		lot, err := createLot(ctx, lotRepo, item, in)
		if err == nil {
			return lot, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		existing, err = lotRepo.GetByItemAndNumber(ctx, item.ID, in.LotNumber)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, domain.ErrDuplicate
		}
	}

	locked, err := lotRepo.GetForUpdate(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, domain.ErrNotFound
	}
	if locked.Status == entity.LotStatusDisposed {
		return nil, domain.ErrLotDisposed
	}
	if in.BuyPrice != nil || in.SellPrice != nil {
		if err := lotRepo.UpdatePrices(ctx, locked.ID, in.BuyPrice, in.SellPrice); err != nil {
			return nil, err
		}
		if in.BuyPrice != nil {
			locked.BuyPrice = *in.BuyPrice
		}
		if in.SellPrice != nil {
			locked.SellPrice = in.SellPrice
		}
	}
	return locked, nil
}

func createLot(ctx context.Context, lotRepo repository.LotRepository, item *entity.Item, in ReceiveInput) (*entity.Lot, error) {
	buyPrice := item.BuyPrice
	if in.BuyPrice != nil {
		buyPrice = *in.BuyPrice
	}
	lot := &entity.Lot{
		ItemID:     item.ID,
		LotNumber:  in.LotNumber,
		ExpiresAt:  in.ExpiresAt,
		Quantity:   0,
		BuyPrice:   buyPrice,
		SellPrice:  in.SellPrice, // nil = cae al precio del artículo al consumir
		Supplier:   in.Supplier,
		Status:     entity.LotStatusActive,
		LocationID: in.LocationID,
		ReceivedAt: time.Now(),
	}
	if err := lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// Consume descuenta quantity unidades del artículo recorriendo sus lotes en
// orden FEFO (vencimiento más próximo primero, sin vencimiento al final,
// empate por id). Todo-o-nada: si los candidatos no alcanzan se revierte la
// transacción completa y se devuelve InsufficientStockError con lo que sí
// era cubrible.
func (uc *AllocationUseCase) Consume(ctx context.Context, in ConsumeInput) ([]Allocation, error) {
	if in.ItemID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var allocations []Allocation
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		itemRepo repository.ItemRepository,
		_ repository.LocationRepository,
	) error {
		var err error
		allocations, err = uc.ConsumeInTx(ctx, lotRepo, movRepo, itemRepo, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

// ConsumeInTx ejecuta el consumo con los repositorios del caller (misma
// transacción). Es la pieza que usan las orquestaciones multi-línea (venta
// con varios renglones): si cualquier línea falla, el caller revierte la
// venta completa, incluidas las líneas ya asignadas.
func (uc *AllocationUseCase) ConsumeInTx(
	ctx context.Context,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	itemRepo repository.ItemRepository,
	in ConsumeInput,
) ([]Allocation, error) {
	if in.ItemID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	item, err := itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	today := startOfDay(time.Now())
	// Bloquea los candidatos en orden de id ascendente (orden fijo de
	// bloqueo entre asignaciones concurrentes); el orden de consumo FEFO
	// se aplica en memoria sobre las filas ya bloqueadas.
	lots, err := lotRepo.ListForAllocation(ctx, in.ItemID, today, in.IncludeExpired)
	if err != nil {
		return nil, err
	}
	domstock.SortFEFO(lots)

	reference := in.Meta.Reference
	if reference == "" {
		// Una sola referencia para todas las filas de esta operación.
		reference, err = synthesizeReference(ctx, movRepo, entity.MovementTypeOUT, time.Now())
		if err != nil {
			return nil, err
		}
	}

	remaining := in.Quantity
	allocations := make([]Allocation, 0, len(lots))
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		take := lot.Quantity
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			continue
		}
		if err := lotRepo.Decrement(ctx, lot.ID, take); err != nil {
			return nil, err
		}
		unitPrice := lot.ResolveSellPrice(item)
		if err := movRepo.Create(ctx, &entity.Movement{
			ItemID:    item.ID,
			LotID:     lot.ID,
			Type:      entity.MovementTypeOUT,
			Quantity:  take,
			UnitPrice: unitPrice,
			Reason:    in.Meta.Reason,
			Reference: reference,
			CreatedBy: in.Meta.Actor,
		}); err != nil {
			return nil, err
		}
		allocations = append(allocations, Allocation{LotID: lot.ID, Taken: take, UnitPrice: unitPrice})
		remaining -= take
	}
	if remaining > 0 {
		return nil, &domain.InsufficientStockError{
			ItemID:    in.ItemID,
			Requested: in.Quantity,
			Available: in.Quantity - remaining,
		}
	}
	return allocations, nil
}

// Adjust corrige la cantidad de un lote tras un conteo físico. delta != 0;
// el resultado nunca puede quedar negativo. La dirección queda registrada en
// la razón del movimiento; la cantidad del libro es la magnitud.
func (uc *AllocationUseCase) Adjust(ctx context.Context, lotID string, delta int64, reason, actor string) (*entity.Movement, error) {
	if lotID == "" || delta == 0 {
		return nil, domain.ErrInvalidInput
	}
	var movement *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		_ repository.ItemRepository,
		_ repository.LocationRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if lot.Status == entity.LotStatusDisposed {
			return domain.ErrLotDisposed
		}
		if lot.Quantity+delta < 0 {
			return domain.ErrNegativeResult
		}
		if delta > 0 {
			err = lotRepo.Increment(ctx, lot.ID, delta)
		} else {
			err = lotRepo.Decrement(ctx, lot.ID, -delta)
		}
		if err != nil {
			return err
		}

		magnitude := delta
		if magnitude < 0 {
			magnitude = -magnitude
		}
		if reason == "" {
			reason = "ajuste de inventario"
		}
		m := &entity.Movement{
			ItemID:    lot.ItemID,
			LotID:     lot.ID,
			Type:      entity.MovementTypeADJUST,
			Quantity:  magnitude,
			UnitPrice: lot.BuyPrice,
			Reason:    fmt.Sprintf("%s (%+d)", reason, delta),
			CreatedBy: actor,
		}
		if err := appendMovement(ctx, movRepo, m); err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// Transfer mueve quantity unidades del lote a otra ubicación. Si se traslada
// todo el lote es una reubicación pura; si es parcial se parte el lote:
// nuevo lote en destino con código derivado y los mismos metadatos de
// vencimiento/costo, decremento en el origen. El stock total del artículo no
// cambia, solo su distribución por ubicación.
func (uc *AllocationUseCase) Transfer(ctx context.Context, lotID, toLocationID string, quantity int64, actor string) (*TransferResult, error) {
	if lotID == "" || toLocationID == "" || quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var result *TransferResult
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		itemRepo repository.ItemRepository,
		locationRepo repository.LocationRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if lot.Status == entity.LotStatusDisposed {
			return domain.ErrLotDisposed
		}
		if quantity > lot.Quantity {
			return &domain.InsufficientStockError{ItemID: lot.ItemID, Requested: quantity, Available: lot.Quantity}
		}
		location, err := locationRepo.GetByID(ctx, toLocationID)
		if err != nil {
			return err
		}
		if location == nil {
			return domain.ErrNotFound
		}
		item, err := itemRepo.GetByID(ctx, lot.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		// Compatibilidad térmica: solo se valida cuando artículo y destino
		// declaran rango completo.
		if !location.AcceptsRange(item.StorageMinTemp, item.StorageMaxTemp) {
			return domain.ErrIncompatibleLocation
		}

		fromLot := lot
		toLot := lot
		if quantity == lot.Quantity {
			// Reubicación completa: cambia la ubicación de la misma fila.
			if err := lotRepo.UpdateLocation(ctx, lot.ID, &toLocationID); err != nil {
				return err
			}
			lot.LocationID = &toLocationID
		} else {
			toLot, err = splitLot(ctx, lotRepo, lot, quantity, toLocationID)
			if err != nil {
				return err
			}
			if err := lotRepo.Decrement(ctx, lot.ID, quantity); err != nil {
				return err
			}
			lot.Quantity -= quantity
		}

		m := &entity.Movement{
			ItemID:    lot.ItemID,
			LotID:     lot.ID,
			Type:      entity.MovementTypeTRANSFER,
			Quantity:  quantity,
			UnitPrice: lot.BuyPrice,
			Reason:    fmt.Sprintf("traslado a %s", location.Name),
			CreatedBy: actor,
		}
		if err := appendMovement(ctx, movRepo, m); err != nil {
			return err
		}
		result = &TransferResult{Movement: m, FromLot: fromLot, ToLot: toLot}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// splitLot crea el lote destino de una partición: código derivado del
// original con sufijo temporal, verificado contra colisiones con sufijo
// incremental; copia vencimiento, fecha de recepción, estado y base de costo.
func splitLot(ctx context.Context, lotRepo repository.LotRepository, src *entity.Lot, quantity int64, toLocationID string) (*entity.Lot, error) {
	base := fmt.Sprintf("%s-%s", src.LotNumber, time.Now().Format("060102150405"))
	code := base
	for i := 1; ; i++ {
		existing, err := lotRepo.GetByItemAndNumber(ctx, src.ItemID, code)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			break
		}
		if i > 20 {
			return nil, domain.ErrDuplicate
		}
		code = fmt.Sprintf("%s-%d", base, i)
	}
	newLot := &entity.Lot{
		ItemID:     src.ItemID,
		LotNumber:  code,
		ExpiresAt:  src.ExpiresAt,
		Quantity:   quantity,
		BuyPrice:   src.BuyPrice,
		SellPrice:  src.SellPrice,
		Supplier:   src.Supplier,
		Status:     src.Status,
		LocationID: &toLocationID,
		ReceivedAt: src.ReceivedAt,
	}
	if err := lotRepo.Create(ctx, newLot); err != nil {
		return nil, err
	}
	return newLot, nil
}

// Dispose da de baja un lote: cantidad forzada a 0 y estado DISPOSED,
// con un movimiento DISPOSAL por la cantidad realmente retirada. Si el lote
// ya estaba vacío no se escribe fila en el libro (movimiento nil).
func (uc *AllocationUseCase) Dispose(ctx context.Context, lotID, reason, actor string) (*entity.Movement, error) {
	if lotID == "" {
		return nil, domain.ErrInvalidInput
	}
	var movement *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		_ repository.ItemRepository,
		_ repository.LocationRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if lot.Status == entity.LotStatusDisposed {
			return domain.ErrLotDisposed
		}
		removed := lot.Quantity
		if err := lotRepo.Dispose(ctx, lot.ID); err != nil {
			return err
		}
		lot.Quantity = 0
		lot.Status = entity.LotStatusDisposed
		if removed == 0 {
			return nil
		}
		if reason == "" {
			reason = "baja de lote"
		}
		m := &entity.Movement{
			ItemID:    lot.ItemID,
			LotID:     lot.ID,
			Type:      entity.MovementTypeDISPOSAL,
			Quantity:  removed,
			UnitPrice: lot.BuyPrice,
			Reason:    reason,
			CreatedBy: actor,
		}
		if err := appendMovement(ctx, movRepo, m); err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// startOfDay trunca a medianoche local; un lote vence cuando su fecha es
// estrictamente anterior a hoy.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
