package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/inventory"
)

func TestConvertUnit_ConservaValor(t *testing.T) {
	factors := []string{"1000", "0.001", "0.02", "50", "3", "0.333333"}
	for _, f := range factors {
		t.Run(f, func(t *testing.T) {
			before := valuation("130", "461.538461538461")
			after, err := inventory.ConvertUnit(before, d("20"), d(f))
			require.NoError(t, err)

			valueBefore, _ := before.Stock.Mul(before.PMP).Float64()
			valueAfter, _ := after.Stock.Mul(after.PMP).Float64()
			assert.InDelta(t, valueBefore, valueAfter, 1e-3, "stock*pmp debe conservarse")
			assert.True(t, after.Stock.Equal(before.Stock.Mul(d(f))))
			assert.True(t, after.Threshold.Equal(d("20").Mul(d(f))))
		})
	}
}

func TestConvertUnit_KgAGramos(t *testing.T) {
	after, err := inventory.ConvertUnit(valuation("2", "1500"), d("1"), d("1000"))
	require.NoError(t, err)
	assert.True(t, after.Stock.Equal(d("2000")))
	assert.True(t, after.PMP.Equal(d("1.5")))
	assert.True(t, after.Threshold.Equal(d("1000")))
	assert.True(t, after.Value.Equal(d("3000")))
}

func TestConvertUnit_FactorNoPositivo(t *testing.T) {
	for _, f := range []decimal.Decimal{decimal.Zero, d("-2")} {
		_, err := inventory.ConvertUnit(valuation("1", "1"), decimal.Zero, f)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}
