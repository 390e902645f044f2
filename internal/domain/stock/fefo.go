package stock

import (
	"sort"
	"time"

	"github.com/jhoicas/hospital-stock/internal/domain/entity"
)

// SortFEFO ordena lotes para consumo First-Expired-First-Out:
// vencimiento ascendente con NULL (nunca vence) al final; empate por
// orden de creación (id ascendente). El orden de bloqueo de filas es
// independiente: siempre por id ascendente en el repositorio.
func SortFEFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt == nil:
			return a.ID < b.ID
		case a.ExpiresAt == nil:
			return false
		case b.ExpiresAt == nil:
			return true
		case !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		default:
			return a.ID < b.ID
		}
	})
}

// FilterEligible descarta lotes sin cantidad y, si includeExpired es false,
// los vencidos estrictamente antes de today. Los lotes sin vencimiento
// siempre son elegibles.
func FilterEligible(lots []*entity.Lot, today time.Time, includeExpired bool) []*entity.Lot {
	out := lots[:0]
	for _, l := range lots {
		if l.Quantity <= 0 || l.Status != entity.LotStatusActive {
			continue
		}
		if !includeExpired && l.IsExpired(today) {
			continue
		}
		out = append(out, l)
	}
	return out
}
