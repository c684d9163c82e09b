package closeout

import (
	"regexp"
	"strings"

	"github.com/mld/backend/internal/domain/shared"
)

var modelSeparatorRe = regexp.MustCompile(`[-/\s]`)

// ErrMalformedSKU marks SKUs that don't follow the warehouse/model/suffix
// token layout. Callers skip the item and keep going.
var ErrMalformedSKU = shared.NewDomainError("INVALID_INPUT", "SKU must have at least 3 whitespace-separated tokens")

// SKU is a parsed ERP inventory identifier. The second whitespace token
// carries the model number.
type SKU struct {
	Raw             string
	ModelNumber     string
	NormalizedModel string
}

// ParseSKU trims and tokenizes an ERP SKU string. SKUs with fewer than three
// tokens are rejected.
func ParseSKU(raw string) (SKU, error) {
	trimmed := strings.TrimSpace(raw)
	parts := strings.Fields(trimmed)
	if len(parts) < 3 {
		return SKU{}, ErrMalformedSKU
	}
	return SKU{
		Raw:             trimmed,
		ModelNumber:     parts[1],
		NormalizedModel: NormalizeModelNumber(parts[1]),
	}, nil
}

// NormalizeModelNumber strips dashes, slashes and whitespace so the model
// matches the catalog's normalized model key
func NormalizeModelNumber(model string) string {
	return modelSeparatorRe.ReplaceAllString(model, "")
}
