package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-farmacia/internal/domain/inventory"
)

func TestCostCalculator(t *testing.T) {
	cases := []struct {
		name                                     string
		stock, cost, entrada, costoEntrada, want string
	}{
		{"sin stock previo toma el costo de entrada", "0", "0", "20", "100", "100"},
		{"promedio ponderado", "10", "100", "10", "200", "150"},
		{"redondeo a 4 decimales", "1", "1", "2", "2", "1.6667"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.CostCalculator(d(tc.stock), d(tc.cost), d(tc.entrada), d(tc.costoEntrada))
			assert.True(t, got.Equal(d(tc.want)), "got %s", got)
		})
	}

	assert.True(t, inventory.CostCalculator(decimal.Zero, d("5"), decimal.Zero, d("5")).IsZero())
}
