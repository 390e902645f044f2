package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrNegativeResult       = errors.New("el ajuste dejaría el lote en negativo")
	ErrIncompatibleLocation = errors.New("ubicación incompatible con el artículo")
	ErrLotDisposed          = errors.New("el lote ya fue dado de baja")
)

// InsufficientStockError indica que no hay stock suficiente para cubrir la
// cantidad solicitada. Available es lo máximo que sí podía cubrirse con los
// lotes elegibles al momento de la operación.
type InsufficientStockError struct {
	ItemID    string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el artículo %s: solicitado %d, disponible %d",
		e.ItemID, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientStock) sobre el error tipado.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
