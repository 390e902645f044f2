package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN       = "IN"       // recepción
	MovementTypeOUT      = "OUT"      // consumo / venta
	MovementTypeADJUST   = "ADJUST"   // ajuste por conteo físico
	MovementTypeTRANSFER = "TRANSFER" // traslado entre ubicaciones
	MovementTypeDISPOSAL = "DISPOSAL" // baja de lote
)

// movementPrefixes es el registro cerrado tipo -> prefijo de referencia.
// Cualquier tipo fuera de este mapa es inválido; nunca se resuelve por nombre
// de tipo en runtime.
var movementPrefixes = map[string]string{
	MovementTypeIN:       "REC",
	MovementTypeOUT:      "OUT",
	MovementTypeADJUST:   "AJU",
	MovementTypeTRANSFER: "TRA",
	MovementTypeDISPOSAL: "BAJ",
}

// MovementPrefix devuelve el prefijo de referencia para un tipo de movimiento.
func MovementPrefix(movementType string) (string, bool) {
	p, ok := movementPrefixes[movementType]
	return p, ok
}

// ValidMovementType indica si el tipo pertenece al registro cerrado.
func ValidMovementType(movementType string) bool {
	_, ok := movementPrefixes[movementType]
	return ok
}

// Movement es una fila inmutable del libro de movimientos: un cambio de
// cantidad sobre un lote. Nunca se actualiza ni se borra después de creada;
// es la única fuente de verdad para auditoría.
type Movement struct {
	ID        string
	ItemID    string
	LotID     string
	Type      string
	Quantity  int64           // magnitud, siempre > 0
	UnitPrice decimal.Decimal // snapshot del precio unitario al momento del movimiento
	Reason    string
	Reference string          // secuencia legible, ej. OUT-2025-03-0007
	CreatedBy string          // actor para auditoría
	CreatedAt time.Time
}
