package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost calcula el costo promedio ponderado tras una entrada (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock previo nulo el costo pasa a ser el de la entrada.
func WeightedAverageCost(stock, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if stock.LessThanOrEqual(decimal.Zero) {
		return inCost
	}
	sum := stock.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return currentCost
	}
	num := stock.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.DivRound(sum, 6)
}

// LineValue valor de una línea: cantidad por costo unitario.
func LineValue(qty, unitCost decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitCost)
}
