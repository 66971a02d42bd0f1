// Package documents implementa los repositorios tipados sobre un repository.DocumentStore.
// Cada entidad se guarda como documento JSON con los nombres de campo del esquema
// histórico (colecciones en francés, campos camelCase).
package documents

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
)

// Colecciones.
const (
	CollectionMaterials = "matieres_premieres"
	CollectionMovements = "mouvements_stock"
	CollectionSuppliers = "fournisseurs"
	CollectionSales     = "ventes_boutique"
)

type materialDoc struct {
	Name                string          `json:"name"`
	Category            string          `json:"category,omitempty"`
	Unit                entity.Unit     `json:"unit"`
	CurrentStock        decimal.Decimal `json:"currentStock"`
	WeightedAverageCost decimal.Decimal `json:"weightedAverageCost"`
	TotalValue          decimal.Decimal `json:"totalValue"`
	AlertThreshold      decimal.Decimal `json:"alertThreshold"`
	PreferredSupplierID string          `json:"preferredSupplierId,omitempty"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func toMaterialDoc(m *entity.RawMaterial) materialDoc {
	return materialDoc{
		Name:                m.Name,
		Category:            m.Category,
		Unit:                m.Unit,
		CurrentStock:        m.CurrentStock,
		WeightedAverageCost: m.WeightedAverageCost,
		TotalValue:          m.TotalValue,
		AlertThreshold:      m.AlertThreshold,
		PreferredSupplierID: m.PreferredSupplierID,
		Active:              m.Active,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func (d materialDoc) entity(id string) *entity.RawMaterial {
	return &entity.RawMaterial{
		ID:                  id,
		Name:                d.Name,
		Category:            d.Category,
		Unit:                d.Unit,
		CurrentStock:        d.CurrentStock,
		WeightedAverageCost: d.WeightedAverageCost,
		TotalValue:          d.TotalValue,
		AlertThreshold:      d.AlertThreshold,
		PreferredSupplierID: d.PreferredSupplierID,
		Active:              d.Active,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

type movementDoc struct {
	MaterialID        string              `json:"materialId"`
	MaterialName      string              `json:"materialName,omitempty"`
	Type              entity.MovementType `json:"type"`
	Quantity          decimal.Decimal     `json:"quantity"`
	UnitPrice         *decimal.Decimal    `json:"unitPrice,omitempty"`
	TotalPrice        *decimal.Decimal    `json:"totalPrice,omitempty"`
	SupplierID        string              `json:"supplierId,omitempty"`
	DocumentReference string              `json:"documentReference,omitempty"`
	Reason            string              `json:"reason,omitempty"`
	Author            string              `json:"author,omitempty"`
	Validator         string              `json:"validator,omitempty"`
	RecordedBy        string              `json:"recordedBy,omitempty"`
	StockBefore       decimal.Decimal     `json:"stockBefore"`
	StockAfter        decimal.Decimal     `json:"stockAfter"`
	PMPBefore         decimal.Decimal     `json:"pmpBefore"`
	PMPAfter          decimal.Decimal     `json:"pmpAfter"`
	Date              time.Time           `json:"date"`
	CreatedAt         time.Time           `json:"createdAt"`
}

func toMovementDoc(mv *entity.StockMovement) movementDoc {
	return movementDoc{
		MaterialID:        mv.MaterialID,
		MaterialName:      mv.MaterialName,
		Type:              mv.Type,
		Quantity:          mv.Quantity,
		UnitPrice:         mv.UnitPrice,
		TotalPrice:        mv.TotalPrice,
		SupplierID:        mv.SupplierID,
		DocumentReference: mv.DocumentReference,
		Reason:            mv.Reason,
		Author:            mv.Author,
		Validator:         mv.Validator,
		RecordedBy:        mv.RecordedBy,
		StockBefore:       mv.StockBefore,
		StockAfter:        mv.StockAfter,
		PMPBefore:         mv.PMPBefore,
		PMPAfter:          mv.PMPAfter,
		Date:              mv.Date.UTC(),
		CreatedAt:         mv.CreatedAt.UTC(),
	}
}

func (d movementDoc) entity(id string) *entity.StockMovement {
	return &entity.StockMovement{
		ID:                id,
		MaterialID:        d.MaterialID,
		MaterialName:      d.MaterialName,
		Type:              d.Type,
		Quantity:          d.Quantity,
		UnitPrice:         d.UnitPrice,
		TotalPrice:        d.TotalPrice,
		SupplierID:        d.SupplierID,
		DocumentReference: d.DocumentReference,
		Reason:            d.Reason,
		Author:            d.Author,
		Validator:         d.Validator,
		RecordedBy:        d.RecordedBy,
		StockBefore:       d.StockBefore,
		StockAfter:        d.StockAfter,
		PMPBefore:         d.PMPBefore,
		PMPAfter:          d.PMPAfter,
		Date:              d.Date,
		CreatedAt:         d.CreatedAt,
	}
}

type supplierDoc struct {
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toSupplierDoc(s *entity.Supplier) supplierDoc {
	return supplierDoc{
		Name:      s.Name,
		Contact:   s.Contact,
		Phone:     s.Phone,
		Email:     s.Email,
		Address:   s.Address,
		Notes:     s.Notes,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (d supplierDoc) entity(id string) *entity.Supplier {
	return &entity.Supplier{
		ID:        id,
		Name:      d.Name,
		Contact:   d.Contact,
		Phone:     d.Phone,
		Email:     d.Email,
		Address:   d.Address,
		Notes:     d.Notes,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type saleDoc struct {
	ShiftDate  time.Time       `json:"shiftDate"`
	Seller     string          `json:"seller,omitempty"`
	NetTotal   decimal.Decimal `json:"netTotal"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func toSaleDoc(s *entity.ShopSale) saleDoc {
	return saleDoc{
		ShiftDate:  s.ShiftDate.UTC(),
		Seller:     s.Seller,
		NetTotal:   s.NetTotal,
		GrandTotal: s.GrandTotal,
		CreatedAt:  s.CreatedAt.UTC(),
	}
}
