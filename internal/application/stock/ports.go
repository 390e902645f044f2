package stock

import (
	"context"

	"github.com/jhoicas/hospital-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de lotes:
// cualquier error revierte todos los decrementos y filas del libro hechos
// en la llamada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		itemRepo repository.ItemRepository,
		locationRepo repository.LocationRepository,
	) error) error
}
