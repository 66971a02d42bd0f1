package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShopSale es el cierre de ventas de un turno de la boutique.
// Lo escribe el módulo de caja; aquí solo se lee para el margen bruto.
type ShopSale struct {
	ID         string
	ShiftDate  time.Time
	Seller     string
	NetTotal   decimal.Decimal
	GrandTotal decimal.Decimal
	CreatedAt  time.Time
}
