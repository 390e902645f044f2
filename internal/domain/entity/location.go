package entity

import "time"

// Location representa una ubicación física de almacenamiento (nevera, estante).
// No es una entidad de inventario en sí: solo restringe traslados por rango
// de temperatura.
type Location struct {
	ID        string
	Name      string
	MinTemp   *float64 // °C; nil = sin restricción
	MaxTemp   *float64
	CreatedAt time.Time
}

// AcceptsRange indica si el rango de almacenamiento requerido [min, max]
// se solapa con el rango de la ubicación. Si alguno de los cuatro extremos
// falta, no hay restricción que validar.
func (loc *Location) AcceptsRange(min, max *float64) bool {
	if loc.MinTemp == nil || loc.MaxTemp == nil || min == nil || max == nil {
		return true
	}
	return *min <= *loc.MaxTemp && *loc.MinTemp <= *max
}
