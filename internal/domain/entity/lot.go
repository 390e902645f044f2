package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	LotStatusActive   = "ACTIVE"
	LotStatusDisposed = "DISPOSED" // dado de baja: cantidad forzada a 0, nunca se borra
)

// Lot representa un lote de recepción de un artículo: cantidad propia,
// vencimiento y base de costo. Unicidad por (item_id, lot_number).
type Lot struct {
	ID        string
	ItemID    string
	LotNumber string
	// ExpiresAt nil = nunca vence; siempre elegible para consumo.
	ExpiresAt *time.Time
	Quantity  int64 // invariante: >= 0 siempre
	BuyPrice  decimal.Decimal
	// SellPrice nil = usar el precio de venta por defecto del artículo.
	SellPrice  *decimal.Decimal
	Supplier   string
	Status     string
	LocationID *string // ubicación física (variante reactivos)
	ReceivedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsExpired indica si el lote venció estrictamente antes de la fecha dada.
func (l *Lot) IsExpired(today time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return l.ExpiresAt.Before(today)
}

// ResolveSellPrice devuelve el precio de venta del lote o, si no tiene,
// el precio por defecto del artículo (cadena lote -> artículo -> 0).
func (l *Lot) ResolveSellPrice(item *Item) decimal.Decimal {
	if l.SellPrice != nil {
		return *l.SellPrice
	}
	if item != nil {
		return item.SellPrice
	}
	return decimal.Zero
}
