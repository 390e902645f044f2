package stock

// Cálculo de umbrales de reorden a partir de la demanda reciente
// (servicio de dominio puro, sin dependencias).
//
//	minRaw = max(out7*2, ceil(out30/4)); sin historial: max(ceil(onHand*0.10), packSize)
//	min    = redondeo a múltiplo de empaque de clamp(minRaw, 5, 500)
//	maxRaw = max(min*3, min+out30)
//	max    = redondeo a múltiplo de empaque de clamp(maxRaw, 20, 5000)
//	si max < min tras redondear: max = redondeo(min*3)

const (
	minStockFloor   = 5
	minStockCeiling = 500
	maxStockFloor   = 20
	maxStockCeiling = 5000
)

// ThresholdInput datos de demanda y stock de un artículo.
type ThresholdInput struct {
	Out7     int64 // unidades consumidas (OUT) en los últimos 7 días
	Out30    int64 // unidades consumidas en los últimos 30 días
	OnHand   int64 // stock actual (suma de lotes)
	PackSize int64
}

// ComputeThresholds devuelve (minStock, maxStock) sugeridos para el artículo.
func ComputeThresholds(in ThresholdInput) (int64, int64) {
	pack := in.PackSize
	if pack < 1 {
		pack = 1
	}

	minRaw := maxInt64(in.Out7*2, ceilDiv(in.Out30, 4))
	if in.Out7 == 0 && in.Out30 == 0 {
		// Sin historial de consumo: 10% del stock actual o un empaque completo.
		minRaw = maxInt64(ceilDiv(in.OnHand, 10), pack)
	}
	minStock := roundUpToPack(clamp(minRaw, minStockFloor, minStockCeiling), pack)

	maxRaw := maxInt64(minStock*3, minStock+in.Out30)
	maxStock := roundUpToPack(clamp(maxRaw, maxStockFloor, maxStockCeiling), pack)
	if maxStock < minStock {
		maxStock = roundUpToPack(minStock*3, pack)
	}
	return minStock, maxStock
}

// roundUpToPack redondea v hacia arriba al múltiplo de pack más cercano.
func roundUpToPack(v, pack int64) int64 {
	if pack <= 1 {
		return v
	}
	if rem := v % pack; rem != 0 {
		return v + pack - rem
	}
	return v
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
