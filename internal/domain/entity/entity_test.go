package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/hospital-stock/internal/domain/entity"
)

func TestMovementPrefix_RegistroCerrado(t *testing.T) {
	cases := map[string]string{
		entity.MovementTypeIN:       "REC",
		entity.MovementTypeOUT:      "OUT",
		entity.MovementTypeADJUST:   "AJU",
		entity.MovementTypeTRANSFER: "TRA",
		entity.MovementTypeDISPOSAL: "BAJ",
	}
	for movementType, want := range cases {
		prefix, ok := entity.MovementPrefix(movementType)
		assert.True(t, ok)
		assert.Equal(t, want, prefix)
		assert.True(t, entity.ValidMovementType(movementType))
	}

	_, ok := entity.MovementPrefix("RETURN")
	assert.False(t, ok, "un tipo fuera del registro no resuelve prefijo")
	assert.False(t, entity.ValidMovementType(""))
	assert.False(t, entity.ValidMovementType("out"), "los tipos son sensibles a mayúsculas")
}

func TestLot_IsExpired(t *testing.T) {
	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	assert.False(t, (&entity.Lot{}).IsExpired(today), "sin vencimiento nunca vence")
	assert.True(t, (&entity.Lot{ExpiresAt: &yesterday}).IsExpired(today))
	assert.False(t, (&entity.Lot{ExpiresAt: &today}).IsExpired(today), "vence hoy todavía sirve")
	assert.False(t, (&entity.Lot{ExpiresAt: &tomorrow}).IsExpired(today))
}

func TestLot_ResolveSellPrice(t *testing.T) {
	lotPrice := decimal.NewFromInt(18)
	item := &entity.Item{SellPrice: decimal.NewFromInt(15)}

	withPrice := &entity.Lot{SellPrice: &lotPrice}
	assert.True(t, withPrice.ResolveSellPrice(item).Equal(lotPrice), "el precio del lote manda")

	withoutPrice := &entity.Lot{}
	assert.True(t, withoutPrice.ResolveSellPrice(item).Equal(item.SellPrice), "cae al precio del artículo")
	assert.True(t, withoutPrice.ResolveSellPrice(nil).Equal(decimal.Zero), "sin artículo queda en cero")
}

func TestLocation_AcceptsRange(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	fridge := &entity.Location{MinTemp: f(2), MaxTemp: f(8)}
	shelf := &entity.Location{} // sin rango declarado

	assert.True(t, fridge.AcceptsRange(f(2), f(8)), "rango idéntico")
	assert.True(t, fridge.AcceptsRange(f(5), f(25)), "basta con solaparse")
	assert.False(t, fridge.AcceptsRange(f(15), f(25)), "rangos disjuntos")
	assert.True(t, fridge.AcceptsRange(nil, nil), "artículo sin requisito siempre cabe")
	assert.True(t, fridge.AcceptsRange(f(15), nil), "rango incompleto no se valida")
	assert.True(t, shelf.AcceptsRange(f(2), f(8)), "ubicación sin rango acepta todo")
}
