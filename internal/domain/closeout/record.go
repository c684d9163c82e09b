package closeout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mld/backend/internal/domain/catalog"
	"github.com/mld/backend/internal/domain/shared"
)

// Defaults applied when the ERP feed omits a location
const (
	DefaultWarehouse = "SALT LAKE CLOSEOUT"
	DefaultBin       = "default"
)

// Record represents one clearance stock line, always linked to an existing
// catalog product. Quantity never goes negative.
type Record struct {
	shared.BaseEntity
	ProductID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	AcumaticaSku string              `gorm:"type:varchar(120);not null;index:idx_closeout_model_sku,priority:2"`
	ModelNumber  string              `gorm:"type:varchar(64);not null;index:idx_closeout_model_sku,priority:1"`
	Quantity     int                 `gorm:"not null;default:0"`
	Price        decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	MSRP         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Warehouse    string              `gorm:"type:varchar(100);not null;index"`
	Bin          string              `gorm:"type:varchar(100);not null"`
	NewInBox     bool                `gorm:"not null;default:false"`
	LastSyncedAt time.Time           `gorm:"not null;index"`

	Product *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "closeout_inventory"
}

// Snapshot carries the per-item values a sync pass writes to a record
type Snapshot struct {
	Quantity  int
	Price     decimal.NullDecimal
	MSRP      decimal.Decimal
	Warehouse string
	Bin       string
	NewInBox  bool
}

// NewRecord creates a closeout record for a catalog product
func NewRecord(productID uuid.UUID, modelNumber, acumaticaSku string, snap Snapshot) (*Record, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Closeout record requires a catalog product")
	}
	if modelNumber == "" || acumaticaSku == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Closeout record requires model number and SKU")
	}
	if snap.Quantity < 0 {
		snap.Quantity = 0
	}

	r := &Record{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		ModelNumber:  modelNumber,
		AcumaticaSku: acumaticaSku,
		LastSyncedAt: time.Now(),
	}
	r.apply(snap)
	return r, nil
}

// ApplySnapshot overwrites the record with the latest sync values and stamps
// the sync time
func (r *Record) ApplySnapshot(snap Snapshot) {
	if snap.Quantity < 0 {
		snap.Quantity = 0
	}
	r.apply(snap)
	r.LastSyncedAt = time.Now()
	r.Touch()
}

func (r *Record) apply(snap Snapshot) {
	r.Quantity = snap.Quantity
	r.Price = snap.Price
	r.MSRP = snap.MSRP
	if snap.Warehouse != "" {
		r.Warehouse = snap.Warehouse
	} else {
		r.Warehouse = DefaultWarehouse
	}
	if snap.Bin != "" {
		r.Bin = snap.Bin
	} else {
		r.Bin = DefaultBin
	}
	r.NewInBox = snap.NewInBox
}

// ApplyEvent sets the quantity and price from an inserted event without
// touching warehouse, bin or msrp
func (r *Record) ApplyEvent(qty int, price decimal.NullDecimal) {
	if qty < 0 {
		qty = 0
	}
	r.Quantity = qty
	r.Price = price
	r.LastSyncedAt = time.Now()
	r.Touch()
}

// Decrement reduces the quantity by a delete-event amount, floored at zero,
// and records the price and sync time from the event
func (r *Record) Decrement(qty int, price decimal.NullDecimal) {
	r.Quantity -= qty
	if r.Quantity < 0 {
		r.Quantity = 0
	}
	r.Price = price
	r.LastSyncedAt = time.Now()
	r.Touch()
}

// RefreshPrice is the legacy create-path update: price and sync time only
func (r *Record) RefreshPrice(price decimal.NullDecimal) {
	r.Price = price
	r.LastSyncedAt = time.Now()
	r.Touch()
}
