package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"size:255;not null" validate:"required,notblank,max=255"`
	Description string          `json:"description" gorm:"size:1000" validate:"max=1000"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null" validate:"required,gt=0,money"`
	Quantity    *int            `json:"quantity" gorm:"not null" validate:"required,gte=0"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"<-:create;not null;autoCreateTime:false"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// TableName pins the table name regardless of naming strategy.
func (Product) TableName() string {
	return "products"
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Quantity != nil && *p.Quantity > 0
}

// Apply overwrites the mutable fields of p with the values submitted in in.
func (p *Product) Apply(in *Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	if in.Quantity != nil {
		q := *in.Quantity
		p.Quantity = &q
	}
}
