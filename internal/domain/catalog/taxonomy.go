package catalog

import "strings"

// Catalog type vocabulary
const (
	TypeMicrowave      = "MICROWAVE"
	TypeWarmingDrawers = "WARMING DRAWERS"
	TypeCooktops       = "COOKTOPS AND RANGETOPS"
	TypeBuiltInOvens   = "BUILT IN OVENS"
	TypeCoffeeSystems  = "COFFEE SYSTEMS"
	TypeRanges         = "RANGES"
	TypeRefrigerators  = "REFRIGERATORS"
	TypeFreezers       = "FREEZERS"
	TypeIceMakers      = "ICE MAKERS"
	TypeDishwashers    = "DISHWASHERS"
	TypeOutdoorGrills  = "OUTDOOR GRILLS"
	TypeVentilation    = "VENTILATION"
	TypeLaundry        = "LAUNDRY"
	TypeDisposer       = "DISPOSER / DISPENSER ACCESSORIES"
	TypeMisc           = "MISC"
)

// Product categories
const (
	DefaultCategory  = "appliances"
	CategoryPlumbing = "plumbing"
)

// predefinedTypes is the probe list for the classifier fallback: a raw class
// label that names a known type directly still classifies without a dedicated
// rule.
var predefinedTypes = []string{
	TypeMicrowave,
	TypeWarmingDrawers,
	TypeCooktops,
	TypeBuiltInOvens,
	TypeCoffeeSystems,
	TypeDishwashers,
	TypeRefrigerators,
	TypeFreezers,
	TypeIceMakers,
	TypeOutdoorGrills,
	TypeLaundry,
	TypeRanges,
	TypeVentilation,
}

// ClassifyInput carries the raw classification text the taxonomy rules
// evaluate. Callers pass fields as-is; uppercasing happens here.
type ClassifyInput struct {
	Major            string
	Minor            string
	MajorCode        string
	MinorDescription string
	ShortDescription string
}

type classifyView struct {
	major     string
	minor     string
	majorCode string
	minorDesc string
	shortDesc string
}

// taxonomyRule pairs a predicate with the classification it yields. The rules
// form an ordered cascade: first match wins, and reordering changes output.
type taxonomyRule struct {
	name    string
	matches func(v classifyView) bool
	resolve func(v classifyView) (typ, category string)
}

func fixed(typ string) func(classifyView) (string, string) {
	return func(classifyView) (string, string) { return typ, DefaultCategory }
}

var taxonomyRules = []taxonomyRule{
	{
		name: "microwave",
		matches: func(v classifyView) bool {
			return strings.Contains(v.majorCode, "MIC") || strings.Contains(v.minor, "MICROWAVE")
		},
		resolve: fixed(TypeMicrowave),
	},
	{
		name:    "warming drawer",
		matches: func(v classifyView) bool { return strings.Contains(v.minor, "WARMING DRAWER") },
		resolve: fixed(TypeWarmingDrawers),
	},
	{
		name: "cooktop/rangetop",
		matches: func(v classifyView) bool {
			return strings.Contains(v.minor, "COOKTOP") || strings.Contains(v.minor, "RANGETOP")
		},
		resolve: fixed(TypeCooktops),
	},
	{
		name:    "oven",
		matches: func(v classifyView) bool { return strings.Contains(v.minor, "OVEN") },
		resolve: fixed(TypeBuiltInOvens),
	},
	{
		name:    "small appliances",
		matches: func(v classifyView) bool { return strings.Contains(v.major, "SMALL APPLIANCES") },
		resolve: func(v classifyView) (string, string) {
			switch {
			case strings.Contains(v.minor, "WARMING DRAWER"):
				return TypeWarmingDrawers, DefaultCategory
			case strings.Contains(v.minor, "COFFEE"):
				return TypeCoffeeSystems, DefaultCategory
			default:
				return TypeMisc, DefaultCategory
			}
		},
	},
	{
		name: "range",
		matches: func(v classifyView) bool {
			return strings.Contains(v.major, "RANGES") || strings.Contains(v.minor, "RANGE")
		},
		resolve: fixed(TypeRanges),
	},
	{
		name:    "refrigerator",
		matches: func(v classifyView) bool { return strings.Contains(v.major, "REFRIGERATORS") },
		resolve: func(v classifyView) (string, string) {
			// Refrigerated drawers marketed as freezers belong with freezers
			if strings.Contains(v.minor, "REFRIGERATED DRAWER") && strings.Contains(v.shortDesc, "FREEZER") {
				return TypeFreezers, DefaultCategory
			}
			return TypeRefrigerators, DefaultCategory
		},
	},
	{
		name:    "freezer",
		matches: func(v classifyView) bool { return strings.Contains(v.major, "FREEZERS") },
		resolve: func(v classifyView) (string, string) {
			if strings.Contains(v.minor, "ICE MAKERS") {
				return TypeIceMakers, DefaultCategory
			}
			return TypeFreezers, DefaultCategory
		},
	},
	{
		name:    "dishwasher",
		matches: func(v classifyView) bool { return strings.Contains(v.major, "DISHWASHERS") },
		resolve: fixed(TypeDishwashers),
	},
	{
		name: "grill",
		matches: func(v classifyView) bool {
			return strings.Contains(v.majorCode, "BBQ") || strings.Contains(v.minor, "BARBEQUES")
		},
		resolve: fixed(TypeOutdoorGrills),
	},
	{
		name:    "ventilation",
		matches: func(v classifyView) bool { return strings.Contains(v.major, "HOODS") },
		resolve: fixed(TypeVentilation),
	},
	{
		name:    "laundry",
		matches: func(v classifyView) bool { return strings.Contains(v.major, "LAUNDRY") },
		resolve: fixed(TypeLaundry),
	},
	{
		name: "disposer/dispenser",
		matches: func(v classifyView) bool {
			return strings.Contains(v.minorDesc, "DISPOSER") || strings.Contains(v.minorDesc, "DISPENSER")
		},
		resolve: func(classifyView) (string, string) { return TypeDisposer, CategoryPlumbing },
	},
	{
		name:    "accessories",
		matches: func(v classifyView) bool { return strings.Contains(v.minor, "ACCESSORIES") },
		resolve: fixed(TypeMisc),
	},
	{
		name: "predefined type probe",
		matches: func(v classifyView) bool {
			return probePredefined(v) != ""
		},
		resolve: func(v classifyView) (string, string) {
			return probePredefined(v), DefaultCategory
		},
	},
}

func probePredefined(v classifyView) string {
	if strings.Contains(v.minor, "ACCESSORIES") {
		return ""
	}
	for _, typ := range predefinedTypes {
		if strings.Contains(v.major, typ) || strings.Contains(v.minor, typ) {
			return typ
		}
	}
	return ""
}

// Classify maps raw class labels into the fixed type/category vocabulary by
// walking the ordered rule table. Entries with no class text at all get no
// type; everything else falls through to MISC.
func Classify(in ClassifyInput) (typ, category string) {
	v := classifyView{
		major:     strings.ToUpper(in.Major),
		minor:     strings.ToUpper(in.Minor),
		majorCode: strings.ToUpper(in.MajorCode),
		minorDesc: strings.ToUpper(in.MinorDescription),
		shortDesc: strings.ToUpper(in.ShortDescription),
	}

	if v.major == "" && v.minor == "" {
		return "", DefaultCategory
	}

	for _, rule := range taxonomyRules {
		if rule.matches(v) {
			return rule.resolve(v)
		}
	}
	return TypeMisc, DefaultCategory
}
