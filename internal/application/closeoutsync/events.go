package closeoutsync

import "github.com/shopspring/decimal"

// InventoryEvent is one discrete ERP inventory change. The field names match
// the ERP's webhook payload.
type InventoryEvent struct {
	InventoryID  string   `json:"InventoryID"`
	QtyOnHand    int      `json:"QtyOnHand"`
	DefaultPrice *float64 `json:"DefaultPrice"`
}

// EventBatch is the webhook body carrying inserted and deleted event lists
type EventBatch struct {
	Inserted []InventoryEvent `json:"Inserted"`
	Deleted  []InventoryEvent `json:"Deleted"`
}

// price converts the optional event price into the stored representation.
// Anything but a plain number arrives as nil and stays null.
func (e InventoryEvent) price() decimal.NullDecimal {
	if e.DefaultPrice == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*e.DefaultPrice), Valid: true}
}
