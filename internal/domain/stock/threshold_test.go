package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/hospital-stock/internal/domain/stock"
)

func TestComputeThresholds(t *testing.T) {
	tests := []struct {
		name    string
		in      stock.ThresholdInput
		wantMin int64
		wantMax int64
	}{
		{
			name:    "demanda reciente manda",
			in:      stock.ThresholdInput{Out7: 20, Out30: 40, OnHand: 100, PackSize: 10},
			wantMin: 40,  // max(20*2, ceil(40/4)) = 40
			wantMax: 120, // max(40*3, 40+40) = 120
		},
		{
			name:    "ventana larga manda cuando la corta es baja",
			in:      stock.ThresholdInput{Out7: 1, Out30: 200, OnHand: 0, PackSize: 1},
			wantMin: 50,  // max(2, ceil(200/4)) = 50
			wantMax: 250, // max(150, 50+200) = 250
		},
		{
			name:    "sin historial usa stock actual o empaque",
			in:      stock.ThresholdInput{Out7: 0, Out30: 0, OnHand: 50, PackSize: 10},
			wantMin: 10, // max(ceil(50/10), 10) = 10
			wantMax: 30,
		},
		{
			name:    "sin historial con mucho stock",
			in:      stock.ThresholdInput{Out7: 0, Out30: 0, OnHand: 400, PackSize: 1},
			wantMin: 40, // 10% del stock
			wantMax: 120,
		},
		{
			name:    "piso del minimo",
			in:      stock.ThresholdInput{Out7: 1, Out30: 0, OnHand: 0, PackSize: 1},
			wantMin: 5,  // clamp(2, 5, 500)
			wantMax: 20, // clamp(15, 20, 5000)
		},
		{
			name:    "techo del minimo",
			in:      stock.ThresholdInput{Out7: 1000, Out30: 100, OnHand: 0, PackSize: 1},
			wantMin: 500,  // clamp(2000, 5, 500)
			wantMax: 1500, // max(1500, 600)
		},
		{
			name:    "techo del maximo",
			in:      stock.ThresholdInput{Out7: 250, Out30: 9000, OnHand: 0, PackSize: 1},
			wantMin: 500,  // clamp(max(500, 2250), 5, 500)
			wantMax: 5000, // clamp(9500, 20, 5000)
		},
		{
			name:    "redondeo hacia arriba al empaque",
			in:      stock.ThresholdInput{Out7: 7, Out30: 0, OnHand: 0, PackSize: 12},
			wantMin: 24, // clamp(14) = 14 -> siguiente múltiplo de 12
			wantMax: 72,
		},
		{
			name:    "empaque 0 se trata como 1",
			in:      stock.ThresholdInput{Out7: 3, Out30: 0, OnHand: 0, PackSize: 0},
			wantMin: 6,
			wantMax: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMin, gotMax := stock.ComputeThresholds(tt.in)
			assert.Equal(t, tt.wantMin, gotMin, "min_stock")
			assert.Equal(t, tt.wantMax, gotMax, "max_stock")
			assert.GreaterOrEqual(t, gotMax, gotMin, "max nunca puede quedar por debajo de min")
		})
	}
}
