package repository

import (
	"context"

	"github.com/jhoicas/hospital-stock/internal/domain/entity"
)

// LocationRepository define el puerto de lectura de ubicaciones físicas.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
}
