package closeout

import "github.com/shopspring/decimal"

// Failure records one inventory item that could not be matched to the catalog
type Failure struct {
	AcumaticaSku string `json:"acumaticaSku"`
	ModelNumber  string `json:"modelNumber"`
	Reason       string `json:"reason"`
}

// UpdatedRecord summarizes one created or updated closeout row
type UpdatedRecord struct {
	ModelNumber  string              `json:"modelNumber"`
	AcumaticaSku string              `json:"acumaticaSku"`
	Quantity     int                 `json:"qtyOnHand"`
	Price        decimal.NullDecimal `json:"defaultPrice"`
	MSRP         decimal.Decimal     `json:"msrp"`
	Warehouse    string              `json:"warehouse,omitempty"`
	Bin          string              `json:"bin,omitempty"`
}

// SyncReport is the outcome of one reconciliation pass. Item-level failures
// leave Success true; only run-level errors abort a pass.
type SyncReport struct {
	Success                  bool            `json:"success"`
	UpdatedCount             int             `json:"updatedCount"`
	UpdatedRecords           []UpdatedRecord `json:"updatedRecords"`
	FailuresCount            int             `json:"failuresCount"`
	Failures                 []Failure       `json:"failures"`
	MissingDeletedCount      int64           `json:"missingDeletedCount"`
	HousekeepingDeletedCount int64           `json:"housekeepingDeletedCount"`
}

// AddUpdated appends an updated row summary
func (r *SyncReport) AddUpdated(rec UpdatedRecord) {
	r.UpdatedRecords = append(r.UpdatedRecords, rec)
	r.UpdatedCount = len(r.UpdatedRecords)
}

// AddFailure appends an unmatched-item failure
func (r *SyncReport) AddFailure(sku, model, reason string) {
	r.Failures = append(r.Failures, Failure{
		AcumaticaSku: sku,
		ModelNumber:  model,
		Reason:       reason,
	})
	r.FailuresCount = len(r.Failures)
}
