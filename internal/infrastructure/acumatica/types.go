package acumatica

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mld/backend/internal/domain/shared"
	"github.com/mld/backend/internal/infrastructure/xmltext"
)

// InventoryItem is one normalized closeout inventory row from the ERP,
// regardless of whether it arrived via the OData feed or an export job.
type InventoryItem struct {
	InventoryID  string
	Warehouse    string
	Location     string
	Description  string
	ItemClass    string
	Brand        string
	QtyOnHand    int
	DefaultPrice decimal.NullDecimal
	MSRP         decimal.Decimal
}

// atomFeed maps the OData Atom envelope. Property elements carry the d:
// namespace prefix; matching by local name covers both prefixed and plain
// documents.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Content struct {
		Properties *atomProperties `xml:"properties"`
	} `xml:"content"`
}

type atomProperties struct {
	InventoryID  xmltext.Value `xml:"InventoryID"`
	Warehouse    xmltext.Value `xml:"Warehouse"`
	Location     xmltext.Value `xml:"Location"`
	Description  xmltext.Value `xml:"Description"`
	ItemClass    xmltext.Value `xml:"ItemClass"`
	Brand        xmltext.Value `xml:"Brand"`
	QtyOnHand    xmltext.Value `xml:"QtyOnHand"`
	DefaultPrice xmltext.Value `xml:"DefaultPrice"`
	MSRP         xmltext.Value `xml:"MSRP"`
}

// ParseAtomSnapshot decodes an OData Atom document into inventory items.
// Entries without a properties block are skipped.
func ParseAtomSnapshot(data []byte) ([]InventoryItem, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("%w: invalid OData response: %v", shared.ErrExternalService, err)
	}

	items := make([]InventoryItem, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		props := entry.Content.Properties
		if props == nil {
			continue
		}
		items = append(items, InventoryItem{
			InventoryID:  props.InventoryID.Trimmed(),
			Warehouse:    props.Warehouse.Trimmed(),
			Location:     props.Location.Trimmed(),
			Description:  string(props.Description),
			ItemClass:    string(props.ItemClass),
			Brand:        string(props.Brand),
			QtyOnHand:    parseQuantity(props.QtyOnHand.Trimmed()),
			DefaultPrice: parseNullPrice(props.DefaultPrice.Trimmed()),
			MSRP:         parsePrice(props.MSRP.Trimmed()),
		})
	}
	return items, nil
}

// itemFromRow maps one export job result row into an inventory item. Text
// fields may arrive as scalars or wrapped containers.
func itemFromRow(row map[string]any) InventoryItem {
	field := func(name string) string { return xmltext.Coerce(row[name]) }
	return InventoryItem{
		InventoryID:  strings.TrimSpace(field("InventoryID")),
		Warehouse:    strings.TrimSpace(field("Warehouse")),
		Location:     strings.TrimSpace(field("Location")),
		Description:  field("Description"),
		ItemClass:    field("ItemClass"),
		Brand:        field("Brand"),
		QtyOnHand:    parseQuantity(field("QtyOnHand")),
		DefaultPrice: parseNullPrice(field("DefaultPrice")),
		MSRP:         parsePrice(field("MSRP")),
	}
}

func parseQuantity(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseNullPrice(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
