package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo almacenable (medicamento o reactivo).
// El catálogo es dueño de estos datos; el motor de inventario solo los lee,
// salvo MinStock/MaxStock que actualiza el recálculo de umbrales.
type Item struct {
	ID        string
	Name      string
	Code      string          // código único
	PackSize  int64           // unidades por empaque (>= 1)
	MinStock  int64           // punto de reorden
	MaxStock  int64           // tope de sobre-stock
	BuyPrice  decimal.Decimal // precio de compra por defecto
	SellPrice decimal.Decimal // precio de venta por defecto
	// Rango de temperatura de almacenamiento requerido (reactivos).
	// Nil = sin requisito; solo se valida en traslados cuando ambos extremos existen.
	StorageMinTemp *float64
	StorageMaxTemp *float64
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
