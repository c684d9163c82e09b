package catalog

import (
	"strings"

	"github.com/mld/backend/internal/domain/shared"
)

// Product represents a normalized catalog product
// It is the aggregate root for catalog operations, keyed by the unique
// normalized model identifier
type Product struct {
	shared.BaseAggregateRoot
	Model         string   `gorm:"type:varchar(64);not null;uniqueIndex"`
	Slug          string   `gorm:"type:varchar(300);not null;index"`
	Brand         string   `gorm:"type:varchar(100)"`
	Major         string   `gorm:"type:varchar(150)"`
	Minor         string   `gorm:"type:varchar(150)"`
	Type          string   `gorm:"type:varchar(60);index"`
	Category      string   `gorm:"type:varchar(40);not null;default:'appliances';index"`
	Width         string   `gorm:"type:varchar(30)"`
	Features      []string `gorm:"type:jsonb;serializer:json"`
	FuelType      []string `gorm:"type:jsonb;serializer:json"`
	Configuration []string `gorm:"type:jsonb;serializer:json"`
	ProductType   []string `gorm:"type:jsonb;serializer:json"`
	Data          string   `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Derived holds everything the ingestion pipeline computes for a product
// besides its model key
type Derived struct {
	Slug     string
	Brand    string
	Major    string
	Minor    string
	Type     string
	Category string
	Facets   Facets
	Data     string
}

// NewProduct creates a catalog product for a normalized model identifier
func NewProduct(model string, d Derived) (*Product, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product model is required")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Model:             model,
	}
	p.applyDerived(d)
	return p, nil
}

// ApplyDerived replaces all derived fields, leaving the model key untouched.
// Used by the upsert path when a feed entry re-appears.
func (p *Product) ApplyDerived(d Derived) {
	p.applyDerived(d)
	p.Touch()
	p.IncrementVersion()
}

func (p *Product) applyDerived(d Derived) {
	p.Slug = d.Slug
	p.Brand = d.Brand
	p.Major = d.Major
	p.Minor = d.Minor
	p.Type = d.Type
	if d.Category != "" {
		p.Category = d.Category
	} else {
		p.Category = DefaultCategory
	}
	p.Width = d.Facets.Width
	p.Features = d.Facets.Features
	p.FuelType = d.Facets.FuelType
	p.Configuration = d.Facets.Configuration
	p.ProductType = d.Facets.ProductType
	p.Data = d.Data
}
