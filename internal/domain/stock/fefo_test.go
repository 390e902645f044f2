package stock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/stock"
)

func expiry(days int) *time.Time {
	t := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return &t
}

func ids(lots []*entity.Lot) []string {
	out := make([]string, len(lots))
	for i, l := range lots {
		out[i] = l.ID
	}
	return out
}

func TestSortFEFO_VencimientoMasProximoPrimero(t *testing.T) {
	lots := []*entity.Lot{
		{ID: "1", LotNumber: "A", ExpiresAt: expiry(10), Quantity: 5},
		{ID: "2", LotNumber: "B", ExpiresAt: expiry(3), Quantity: 5},
		{ID: "3", LotNumber: "C", Quantity: 5}, // nunca vence
	}

	stock.SortFEFO(lots)

	assert.Equal(t, []string{"2", "1", "3"}, ids(lots),
		"B vence antes que A; C sin vencimiento va al final")
}

func TestSortFEFO_NuncaVenceAlFinal(t *testing.T) {
	lots := []*entity.Lot{
		{ID: "1"},
		{ID: "2", ExpiresAt: expiry(365)},
		{ID: "3"},
	}

	stock.SortFEFO(lots)

	assert.Equal(t, []string{"2", "1", "3"}, ids(lots),
		"cualquier vencimiento conocido gana a ninguno; los sin vencimiento empatan por id")
}

func TestSortFEFO_EmpatePorID(t *testing.T) {
	same := expiry(5)
	lots := []*entity.Lot{
		{ID: "9", ExpiresAt: same},
		{ID: "2", ExpiresAt: same},
		{ID: "5", ExpiresAt: same},
	}

	stock.SortFEFO(lots)

	assert.Equal(t, []string{"2", "5", "9"}, ids(lots))
}

func TestFilterEligible(t *testing.T) {
	today := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	lots := []*entity.Lot{
		{ID: "activo", Status: entity.LotStatusActive, Quantity: 5, ExpiresAt: expiry(1)},
		{ID: "hoy", Status: entity.LotStatusActive, Quantity: 5, ExpiresAt: &today},
		{ID: "vencido", Status: entity.LotStatusActive, Quantity: 5, ExpiresAt: expiry(-1)},
		{ID: "vacio", Status: entity.LotStatusActive, Quantity: 0, ExpiresAt: expiry(1)},
		{ID: "baja", Status: entity.LotStatusDisposed, Quantity: 5},
		{ID: "eterno", Status: entity.LotStatusActive, Quantity: 5},
	}

	eligible := stock.FilterEligible(lots, today, false)
	require.Equal(t, []string{"activo", "hoy", "eterno"}, ids(eligible),
		"vence hoy todavía es elegible; vencido, vacío y dado de baja no")

	lots = []*entity.Lot{
		{ID: "vencido", Status: entity.LotStatusActive, Quantity: 5, ExpiresAt: expiry(-1)},
		{ID: "vacio", Status: entity.LotStatusActive, Quantity: 0},
	}
	eligible = stock.FilterEligible(lots, today, true)
	assert.Equal(t, []string{"vencido"}, ids(eligible),
		"includeExpired readmite vencidos pero nunca lotes sin cantidad")
}
