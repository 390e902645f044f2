package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveRequest body para POST /api/stock/receive.
// Precios nil = heredar los del artículo; expires_at nil = nunca vence.
type ReceiveRequest struct {
	ItemID     string           `json:"item_id"`
	LotNumber  string           `json:"lot_number"`
	Quantity   int64            `json:"quantity"`
	BuyPrice   *decimal.Decimal `json:"buy_price,omitempty"`
	SellPrice  *decimal.Decimal `json:"sell_price,omitempty"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	Supplier   string           `json:"supplier,omitempty"`
	LocationID *string          `json:"location_id,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Reference  string           `json:"reference,omitempty"`
}

// ConsumeRequest body para POST /api/stock/consume.
type ConsumeRequest struct {
	ItemID         string `json:"item_id"`
	Quantity       int64  `json:"quantity"`
	IncludeExpired bool   `json:"include_expired,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Reference      string `json:"reference,omitempty"`
}

// AdjustRequest body para POST /api/stock/adjust.
type AdjustRequest struct {
	LotID  string `json:"lot_id"`
	Delta  int64  `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

// TransferRequest body para POST /api/stock/transfer.
type TransferRequest struct {
	LotID        string `json:"lot_id"`
	ToLocationID string `json:"to_location_id"`
	Quantity     int64  `json:"quantity"`
}

// DisposeRequest body para POST /api/stock/dispose.
type DisposeRequest struct {
	LotID  string `json:"lot_id"`
	Reason string `json:"reason,omitempty"`
}

// AllocationDTO asignación por lote de un consumo.
type AllocationDTO struct {
	LotID     string          `json:"lot_id"`
	Taken     int64           `json:"taken"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LotDTO representación de un lote en respuestas.
type LotDTO struct {
	ID         string           `json:"id"`
	ItemID     string           `json:"item_id"`
	LotNumber  string           `json:"lot_number"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	Quantity   int64            `json:"quantity"`
	BuyPrice   decimal.Decimal  `json:"buy_price"`
	SellPrice  *decimal.Decimal `json:"sell_price,omitempty"`
	Supplier   string           `json:"supplier,omitempty"`
	Status     string           `json:"status"`
	LocationID *string          `json:"location_id,omitempty"`
	ReceivedAt time.Time        `json:"received_at"`
}

// MovementDTO fila del libro de movimientos en respuestas.
type MovementDTO struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"item_id"`
	LotID     string          `json:"lot_id"`
	Type      string          `json:"type"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reason    string          `json:"reason,omitempty"`
	Reference string          `json:"reference"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// StockStatusDTO existencias y clasificación de un artículo.
type StockStatusDTO struct {
	ItemID   string   `json:"item_id"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	OnHand   int64    `json:"on_hand"`
	MinStock int64    `json:"min_stock"`
	MaxStock int64    `json:"max_stock"`
	Status   string   `json:"status"` // below_min, above_max, ok
	Warnings []string `json:"warnings,omitempty"`
}

// AlertsResponse barrido de alertas del catálogo.
type AlertsResponse struct {
	BelowMin []StockStatusDTO `json:"below_min"`
	AboveMax []StockStatusDTO `json:"above_max"`
	OK       []StockStatusDTO `json:"ok"`
}
