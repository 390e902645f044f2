package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/hospital-stock/internal/domain"
	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/repository"
)

// appendMovement valida y persiste una fila del libro de movimientos,
// sintetizando la referencia si el caller no la indicó. El libro es
// append-only: después de esta llamada la fila nunca cambia.
func appendMovement(ctx context.Context, movRepo repository.MovementRepository, m *entity.Movement) error {
	if !entity.ValidMovementType(m.Type) || m.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if m.Reference == "" {
		ref, err := synthesizeReference(ctx, movRepo, m.Type, time.Now())
		if err != nil {
			return err
		}
		m.Reference = ref
	}
	return movRepo.Create(ctx, m)
}

// synthesizeReference genera {PREFIJO}-{YYYY}-{MM}-{SEQ:04d} con un contador
// atómico por (prefijo, mes); dos escrituras concurrentes nunca reciben la
// misma referencia.
func synthesizeReference(ctx context.Context, movRepo repository.MovementRepository, movementType string, now time.Time) (string, error) {
	prefix, ok := entity.MovementPrefix(movementType)
	if !ok {
		return "", domain.ErrInvalidInput
	}
	period := now.Format("2006-01")
	seq, err := movRepo.NextReference(ctx, prefix, period)
	if err != nil {
		return "", fmt.Errorf("siguiente referencia %s-%s: %w", prefix, period, err)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, period, seq), nil
}
