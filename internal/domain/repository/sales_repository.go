package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesRepository lee los cierres de caja de la boutique (los escribe otro módulo).
type SalesRepository interface {
	SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}
