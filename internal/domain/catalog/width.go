package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	cmToInches = 0.393701
	mmToInches = 0.0393701
)

var (
	minorInchTokenRe = regexp.MustCompile(`(\d{2})"`)
	widthStringRe    = regexp.MustCompile(`(\d+)(?:\s+(\d+)/(\d+))?`)
	nonNumericRe     = regexp.MustCompile(`[^\d.]`)
)

// widthBucket labels every rounded inch value up to and including Max. The
// last bucket of a table is open-ended.
type widthBucket struct {
	Max   int
	Label string
}

const openEnded = math.MaxInt32

// widthTables holds one interval table per catalog type. The tables are
// deliberately not unified: near-identical types bucket differently (a 27"
// range is a 30" slot, a 27" oven is its own slot).
var widthTables = map[string][]widthBucket{
	TypeRanges: {
		{23, `23" or Less`},
		{26, `24"`},
		{32, `30"`},
		{38, `36"`},
		{44, `42"`},
		{53, `48"`},
		{60, `60"`},
		{openEnded, `61" and above`},
	},
	TypeVentilation: {
		{17, `under 18"`},
		{23, `18"-23"`},
		{36, `24"-36"`},
		{48, `37"-48"`},
		{66, `49"-66"`},
		{openEnded, `above 66"`},
	},
	TypeBuiltInOvens: {
		{25, `24"`},
		{28, `27"`},
		{32, `30"`},
		{openEnded, `36"`},
	},
	TypeCooktops: {
		{13, `12"`},
		{17, `15"`},
		{22, `21"`},
		{26, `24"`},
		{32, `30"`},
		{41, `36"`},
		{53, `48"`},
		{60, `60"`},
		{openEnded, `above 60"`},
	},
	TypeWarmingDrawers: {
		{25, `24"`},
		{28, `27"`},
		{openEnded, `30"`},
	},
	TypeRefrigerators: {
		{19, `18"`},
		{23, `under 24"`},
		{26, `24"`},
		{32, `30"`},
		{38, `36"`},
		{44, `42"`},
		{53, `48"`},
		{60, `60"`},
		{openEnded, `above 60"`},
	},
	TypeFreezers: {
		{19, `18"`},
		{23, `under 24"`},
		{26, `24"`},
		{32, `30"`},
		{38, `36"`},
		{44, `42"`},
		{53, `48"`},
		{60, `60"`},
		{openEnded, `above 60"`},
	},
	TypeMicrowave: {
		{26, `24"`},
		{32, `30"`},
		{openEnded, `other`},
	},
	TypeCoffeeSystems: {
		{26, `24"`},
		{openEnded, `30"`},
	},
}

// WidthLabel derives the width-bucket facet for a product view, or "" when
// the type has no width table or the view carries no width evidence.
func WidthLabel(v *ProductView) string {
	table, ok := widthTables[v.Type]
	if !ok {
		return ""
	}
	inches, ok := parseWidthInches(v)
	if !ok {
		return ""
	}
	for _, bucket := range table {
		if inches <= bucket.Max {
			return bucket.Label
		}
	}
	return ""
}

// parseWidthInches resolves a rounded inch width from the minor class text
// (two-digit inch token) or, failing that, from the classification width
// string, which may carry a fraction ("35 7/8") and may be metric.
func parseWidthInches(v *ProductView) (int, bool) {
	if m := minorInchTokenRe.FindStringSubmatch(v.Minor); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}

	raw := strings.TrimSpace(v.WidthText)
	if raw == "" {
		return 0, false
	}

	if m := widthStringRe.FindStringSubmatch(raw); m != nil {
		whole, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		numeric := whole
		if m[2] != "" {
			num, errN := strconv.ParseFloat(m[2], 64)
			den, errD := strconv.ParseFloat(m[3], 64)
			if errN == nil && errD == nil && den != 0 {
				numeric += num / den
			}
		}
		return roundConverted(raw, numeric), true
	}

	cleaned := nonNumericRe.ReplaceAllString(raw, "")
	numeric, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return roundConverted(raw, numeric), true
}

// roundConverted applies unit conversion before rounding. A CM/MM marker
// forces conversion; a magnitude over 100 implies millimeters.
func roundConverted(raw string, numeric float64) int {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "CM"):
		numeric *= cmToInches
	case strings.Contains(upper, "MM") || numeric > 100:
		numeric *= mmToInches
	}
	return int(math.Round(numeric))
}
