package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverageCost(t *testing.T) {
	cases := []struct {
		name                      string
		stock, cost, inQty, inCst string
		want                      string
	}{
		{"sin stock previo toma el costo de la entrada", "0", "0", "10", "11", "11"},
		{"promedio entre dos lotes", "100", "5", "100", "7", "6"},
		{"entrada al mismo costo no altera el promedio", "980", "5.5", "20", "5.5", "5.5"},
		{"lote pequeño pondera poco", "90", "10", "10", "20", "11"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.WeightedAverageCost(d(tc.stock), d(tc.cost), d(tc.inQty), d(tc.inCst))
			assert.True(t, d(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestLineValue(t *testing.T) {
	assert.True(t, d("110").Equal(inventory.LineValue(d("20"), d("5.50"))))
}
