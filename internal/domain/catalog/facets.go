package catalog

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FacetCategory identifies which facet set an extractor feeds
type FacetCategory string

const (
	FacetFeatures      FacetCategory = "features"
	FacetFuelType      FacetCategory = "fuelType"
	FacetConfiguration FacetCategory = "configuration"
	FacetProductType   FacetCategory = "productType"
)

// SpecPair is one key/value row of a canonicalized spec table
type SpecPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SpecSection groups spec pairs under an optional section title
type SpecSection struct {
	SectionTitle *string    `json:"section_title"`
	Pairs        []SpecPair `json:"key_value_pairs"`
}

// ProductView is the normalized read model the facet extractors run over.
// All text fields arrive pre-coerced; Hierarchical is already tag-stripped.
type ProductView struct {
	Brand             string
	BrandCode         string
	Major             string
	Minor             string
	Type              string
	MinorCode         string
	MinorDescription  string
	Height            *float64
	WidthText         string
	Short             string
	Medium            string
	Paragraph         string
	FeatureList       []string
	ImageTitles       []string
	ImageDescriptions []string
	Hierarchical      string
	SpecSections      []SpecSection
}

// bodyText is the lowercased short/medium/paragraph concatenation
func (v *ProductView) bodyText() string {
	return strings.ToLower(strings.Join([]string{v.Short, v.Medium, v.Paragraph}, " "))
}

// marketingText adds the feature list, image feature text and hierarchical
// feature text on top of bodyText
func (v *ProductView) marketingText() string {
	parts := make([]string, 0, 8)
	parts = append(parts, v.FeatureList...)
	parts = append(parts, v.ImageTitles...)
	parts = append(parts, v.ImageDescriptions...)
	parts = append(parts, v.Short, v.Medium, v.Paragraph, v.Hierarchical)
	return strings.ToLower(strings.Join(parts, " "))
}

// specText flattens every spec pair into one searchable string
func (v *ProductView) specText() string {
	var b strings.Builder
	for _, section := range v.SpecSections {
		for _, pair := range section.Pairs {
			b.WriteString(strings.ToLower(pair.Key))
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(pair.Value))
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Facets is the aggregated extraction result for one product
type Facets struct {
	Features      []string
	FuelType      []string
	Configuration []string
	ProductType   []string
	Width         string
}

// Extractor is a single facet rule. Each extractor declares the facet set it
// feeds and the classified type it applies to; an empty AppliesTo runs for
// every type.
type Extractor struct {
	Name      string
	Facet     FacetCategory
	AppliesTo string
	Run       func(v *ProductView) []string
}

// Engine runs the extractor registry over a product view. Extractor panics
// are contained: the offending extractor is logged and skipped, the product
// is never aborted.
type Engine struct {
	logger     *zap.Logger
	extractors []Extractor
}

// NewEngine builds an engine with the default extractor registry
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger:     logger,
		extractors: defaultExtractors(),
	}
}

// Extract runs all gated extractors and the per-type width table, normalizing
// values (trim, lowercase, de-dup) into the four facet sets. Width keeps its
// original label casing.
func (e *Engine) Extract(view *ProductView) Facets {
	sets := map[FacetCategory]*orderedSet{
		FacetFeatures:      newOrderedSet(),
		FacetFuelType:      newOrderedSet(),
		FacetConfiguration: newOrderedSet(),
		FacetProductType:   newOrderedSet(),
	}

	for _, ex := range e.extractors {
		if ex.AppliesTo != "" && ex.AppliesTo != view.Type {
			continue
		}
		for _, value := range e.run(ex, view) {
			value = strings.ToLower(strings.TrimSpace(value))
			if value == "" {
				continue
			}
			sets[ex.Facet].add(value)
		}
	}

	return Facets{
		Features:      sets[FacetFeatures].values(),
		FuelType:      sets[FacetFuelType].values(),
		Configuration: sets[FacetConfiguration].values(),
		ProductType:   sets[FacetProductType].values(),
		Width:         WidthLabel(view),
	}
}

func (e *Engine) run(ex Extractor, view *ProductView) (values []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("facet extractor panicked",
				zap.String("extractor", ex.Name),
				zap.String("type", view.Type),
				zap.Any("panic", r))
			values = nil
		}
	}()
	return ex.Run(view)
}

type orderedSet struct {
	seen map[string]struct{}
	list []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.list = append(s.list, v)
}

func (s *orderedSet) values() []string {
	return s.list
}

var (
	builtInRe         = regexp.MustCompile(`\bbuilt[-\s]?in\b|builtin\b`)
	counterTopRe      = regexp.MustCompile(`\bcounter[\s-]?top\b`)
	sideBurnerRe      = regexp.MustCompile(`\bside[-\s]?burners?\b`)
	sideBurnerExclRe  = regexp.MustCompile(`\b(optional|includes?|with|featuring)\b.{0,30}side[-\s]?burners?\b`)
	plumbedRe         = regexp.MustCompile(`\bplumbed(?:[-\s]?in)?\b`)
	wifiRe            = regexp.MustCompile(`wi[-\s]?fi|smartthings`)
	externalDispRe    = regexp.MustCompile(`external.*dispenser`)
	internalDispRe    = regexp.MustCompile(`internal.*dispenser`)
	internalIceDispRe = regexp.MustCompile(`internal.*ice.*dispenser`)
	internalIceMakRe  = regexp.MustCompile(`internal.*ice.*maker`)
	burnerValueRe     = regexp.MustCompile(`\((\d+)\)`)
)

// rangeFeatureRules are the text probes for range features, order fixed
var rangeFeatureRules = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`\(4\)[^\d]?`), "4 burner"},
	{regexp.MustCompile(`\(5\)[^\d]?`), "5 burner"},
	{regexp.MustCompile(`\(6\)[^\d]?`), "6 burner"},
	{regexp.MustCompile(`\(8\)[^\d]?`), "8 burner"},
	{regexp.MustCompile(`4[\s-]?(burners?|btu)`), "4 burner"},
	{regexp.MustCompile(`5[\s-]?(burners?|btu)`), "5 burner"},
	{regexp.MustCompile(`6[\s-]?(burners?|btu)`), "6 burner"},
	{regexp.MustCompile(`8[\s-]?(burners?|btu)`), "8 burner"},
	{regexp.MustCompile(`griddle`), "griddle"},
	{regexp.MustCompile(`charbroiler`), "charbroiler options"},
	{regexp.MustCompile(`french[\s-]?top`), "french top"},
	{wifiRe, "Wifi Capable"},
	{regexp.MustCompile(`self[\s-]?clean(ing)?`), "Self Cleaning"},
	{regexp.MustCompile(`sabbath`), "Sabbath Mode"},
	{regexp.MustCompile(`lp conversion`), "LP Conversion"},
	{regexp.MustCompile(`leveling legs?`), "Leveling Legs"},
	{regexp.MustCompile(`interior (oven )?light`), "Interior Light"},
	{regexp.MustCompile(`broil`), "Broil Element"},
	{regexp.MustCompile(`oven`), "Oven"},
	{regexp.MustCompile(`clock`), "Clock"},
	{regexp.MustCompile(`timer`), "Includes Timer"},
	{regexp.MustCompile(`hot surface`), "Hot Surface Indicator Lights"},
	{regexp.MustCompile(`warm function`), "Warm Function"},
	{regexp.MustCompile(`title 20`), "Title 20 Compliant"},
	{regexp.MustCompile(`smart home`), "Smart Home"},
	{regexp.MustCompile(`fingerprint resistant`), "Fingerprint Resistant"},
	{regexp.MustCompile(`air fry`), "Air Fry"},
	{regexp.MustCompile(`\bada\b`), "ADA"},
	{regexp.MustCompile(`auto shut[\s-]?off`), "Auto Shut Off"},
	{regexp.MustCompile(`meat thermometer`), "Meat Thermometer"},
	{regexp.MustCompile(`\bgrill\b`), "Grill"},
	{regexp.MustCompile(`steam cook`), "Steam Cooking"},
	{regexp.MustCompile(`pfas`), "Contains PFAS Chemicals"},
	{regexp.MustCompile(`energy star`), "Energy Star"},
	{regexp.MustCompile(`commercial use`), "Approved for Commercial Use"},
	{regexp.MustCompile(`downdraft`), "Downdraft Ventilated"},
	{regexp.MustCompile(`adjustable legs`), "Adjustable Legs"},
	{regexp.MustCompile(`front loading`), "Front Loading"},
	{regexp.MustCompile(`counter depth`), "Counter Depth"},
}

// keywordFeatures are the plain substring feature vocabularies for types that
// have no dedicated feature extractor
var keywordFeatures = map[string][]string{
	TypeCooktops: {
		"2 burner", "3 burner", "4 burner", "5 burner", "6 burner",
		"griddle", "wok ring",
	},
	TypeBuiltInOvens: {
		"Wifi Capable", "touch screen", "handleless", "air fry",
	},
	TypeWarmingDrawers: {
		"Panel Ready", "ADA", "Humidity Control", "Outdoor",
	},
}

func defaultExtractors() []Extractor {
	extractors := []Extractor{
		{
			Name:  "fuelType",
			Facet: FacetFuelType,
			Run:   extractFuelType,
		},
		{
			Name:      "refrigeratorProductType",
			Facet:     FacetProductType,
			AppliesTo: TypeRefrigerators,
			Run:       extractRefrigeratorProductType,
		},
		{
			Name:      "freezerProductType",
			Facet:     FacetProductType,
			AppliesTo: TypeFreezers,
			Run:       extractFreezerProductType,
		},
		{
			Name:      "coffeeProductType",
			Facet:     FacetProductType,
			AppliesTo: TypeCoffeeSystems,
			Run:       extractCoffeeProductType,
		},
		{
			Name:      "grillProductType",
			Facet:     FacetProductType,
			AppliesTo: TypeOutdoorGrills,
			Run:       extractGrillProductType,
		},
		{
			Name:      "laundryProductType",
			Facet:     FacetProductType,
			AppliesTo: TypeLaundry,
			Run:       extractLaundryProductType,
		},
		{
			Name:      "ventilationProductType",
			Facet:     FacetProductType,
			AppliesTo: TypeVentilation,
			Run:       extractVentilationProductType,
		},
		{
			Name:      "refrigeratorFeatures",
			Facet:     FacetFeatures,
			AppliesTo: TypeRefrigerators,
			Run:       extractRefrigeratorFeatures,
		},
		{
			Name:      "rangeFeatures",
			Facet:     FacetFeatures,
			AppliesTo: TypeRanges,
			Run:       extractRangeFeatures,
		},
		{
			Name:      "refrigeratorConfiguration",
			Facet:     FacetConfiguration,
			AppliesTo: TypeRefrigerators,
			Run:       extractRefrigeratorConfiguration,
		},
		{
			Name:      "coffeeConfiguration",
			Facet:     FacetConfiguration,
			AppliesTo: TypeCoffeeSystems,
			Run:       extractCoffeeConfiguration,
		},
		{
			Name:      "laundryConfiguration",
			Facet:     FacetConfiguration,
			AppliesTo: TypeLaundry,
			Run:       extractLaundryConfiguration,
		},
	}

	for typ, vocabulary := range keywordFeatures {
		vocabulary := vocabulary
		extractors = append(extractors, Extractor{
			Name:      "keywordFeatures:" + typ,
			Facet:     FacetFeatures,
			AppliesTo: typ,
			Run: func(v *ProductView) []string {
				return matchVocabulary(v, vocabulary)
			},
		})
	}
	return extractors
}

func matchVocabulary(v *ProductView, vocabulary []string) []string {
	searchable := strings.ToLower(strings.Join(v.FeatureList, " ")) + " " + v.bodyText()
	var out []string
	for _, keyword := range vocabulary {
		if strings.Contains(searchable, strings.ToLower(keyword)) {
			out = append(out, keyword)
		}
	}
	return out
}

func extractFuelType(v *ProductView) []string {
	desc := strings.ToLower(v.Short)
	code := strings.ToUpper(v.MinorCode)

	var types []string
	if strings.Contains(code, "BBQLP") {
		types = append(types, "LP Gas")
	}
	if strings.Contains(code, "BBQNG") {
		types = append(types, "Natural Gas")
	}
	if strings.Contains(desc, "dual fuel") {
		types = append(types, "Dual Fuel")
	}
	if strings.Contains(desc, "induction") {
		types = append(types, "Induction")
	}
	if strings.Contains(desc, "gas") {
		types = append(types, "Gas")
	}
	if strings.Contains(desc, "electric") {
		types = append(types, "Electric")
	}
	return types
}

// refrigeratorTypeCodes maps minor class codes to refrigerator product types
var refrigeratorTypeCodes = map[string]string{
	"FFRENCH": "French Door",
	"BFRENCH": "French Door",
	"FSXS":    "Side by Side",
	"BSXS":    "Side by Side",
	"FTOPF":   "Top Freezer",
	"BTOPF":   "Top Freezer",
	"FBOTF":   "Bottom Freezer",
	"BBOTF":   "Bottom Freezer",
	"COMPACT": "Compact",
	"RWC":     "Wine Storage",
	"BREFALL": "All Fridge",
	"FREFALL": "All Fridge",
	"DRAWER":  "Drawer",
	"FGLASS":  "Glass Door",
	"BGLASS":  "Glass Door",
}

func extractRefrigeratorProductType(v *ProductView) []string {
	code := strings.ToUpper(v.MinorCode)
	if code == "RSPCL" {
		if v.Height != nil && *v.Height < 36 {
			return []string{"Undercounter"}
		}
		return []string{"Specialty / MISC"}
	}
	if label, ok := refrigeratorTypeCodes[code]; ok {
		return []string{label}
	}
	return nil
}

func extractFreezerProductType(v *ProductView) []string {
	code := strings.ToUpper(v.MinorCode)
	switch {
	case code == "DRAWER":
		return []string{"Freezer Drawers"}
	case code == "CHFRZE" || strings.Contains(v.bodyText(), "chest"):
		return []string{"Chest Freezer"}
	case code == "UPFRZE" && v.Height != nil && *v.Height < 36:
		return []string{"Undercounter"}
	case code == "UPFRZE":
		return []string{"Upright Freezer"}
	}
	return nil
}

func extractCoffeeProductType(v *ProductView) []string {
	desc := strings.ToLower(v.MinorDescription)
	body := v.bodyText()
	if builtInRe.MatchString(desc) || builtInRe.MatchString(body) {
		return []string{"Built In"}
	}
	if counterTopRe.MatchString(desc) || counterTopRe.MatchString(body) {
		return []string{"CounterTop"}
	}
	return nil
}

func extractGrillProductType(v *ProductView) []string {
	code := strings.ToUpper(v.MinorCode)
	body := v.bodyText()

	var types []string
	if strings.Contains(code, "BBQPRO") {
		types = append(types, "Pro Style")
	}
	if strings.Contains(code, "BBQPL") {
		types = append(types, "Pellet BBQ")
	}
	if strings.Contains(code, "BBQCH") {
		types = append(types, "Charcoal BBQ")
	}

	// Skip "included side burner" style mentions, and one brand that lists
	// side burners on every model
	if sideBurnerRe.MatchString(body) &&
		!sideBurnerExclRe.MatchString(body) &&
		strings.ToUpper(v.BrandCode) != "BROILKING" {
		types = append(types, "Side Burners")
	}
	return types
}

var (
	laundryDryerCodes  = []string{"DRYE", "COMMD", "DRYTME", "DRYTMG", "DRYEF", "DRYGF", "DRYG", "DRYP"}
	laundryWasherCodes = []string{"WASHF", "WASHT", "WASHHE", "WASHP"}
	laundryComboCodes  = []string{"WASHCE", "WASHCG"}
	laundryTowerCodes  = []string{"COMMC", "WASHC"}
)

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func extractLaundryProductType(v *ProductView) []string {
	code := strings.ToUpper(v.MinorCode)

	var types []string
	if strings.Contains(code, "PDSTL") {
		types = append(types, "Laundry Accessories")
	}
	if containsCode(laundryDryerCodes, code) {
		types = append(types, "Dryers")
	}
	if containsCode(laundryWasherCodes, code) {
		types = append(types, "Washers")
	}
	if containsCode(laundryComboCodes, code) {
		types = append(types, "Washer Dryer Combos")
	}
	if code == "STEAM" {
		types = append(types, "Garment Steamers")
	}
	if containsCode(laundryTowerCodes, code) {
		types = append(types, "WashTowers")
	}
	return types
}

func extractVentilationProductType(v *ProductView) []string {
	if strings.HasPrefix(strings.ToUpper(v.MinorCode), "DUCTED") {
		return []string{"Ducted"}
	}
	return nil
}

func extractRefrigeratorFeatures(v *ProductView) []string {
	text := v.marketingText()

	var features []string
	if externalDispRe.MatchString(text) {
		features = append(features, "External Water/Ice Dispenser")
	}
	if internalIceDispRe.MatchString(text) {
		features = append(features, "Internal Water/Ice Dispenser")
	} else if internalDispRe.MatchString(text) {
		features = append(features, "Internal Water Dispenser")
	}
	if internalIceMakRe.MatchString(text) {
		features = append(features, "Internal Ice Maker")
	}
	if wifiRe.MatchString(text) {
		features = append(features, "Wifi Capable")
	}
	return features
}

func extractRangeFeatures(v *ProductView) []string {
	text := v.marketingText() + " " + v.specText() + " " + strings.ToLower(v.MinorDescription)

	var features []string
	for _, rule := range rangeFeatureRules {
		if rule.re.MatchString(text) {
			features = append(features, rule.label)
		}
	}

	// Burner counts also hide in spec table rows like "Burners: (6) sealed"
	for _, section := range v.SpecSections {
		for _, pair := range section.Pairs {
			if !strings.Contains(strings.ToLower(pair.Key), "burner") {
				continue
			}
			if m := burnerValueRe.FindStringSubmatch(pair.Value); m != nil {
				features = append(features, m[1]+" burner")
			}
		}
	}
	return features
}

func extractRefrigeratorConfiguration(v *ProductView) []string {
	desc := strings.ToLower(v.MinorDescription)
	paragraph := strings.ToLower(v.Paragraph)
	featureText := strings.ToLower(strings.Join(v.FeatureList, " "))
	code := strings.ToLower(v.MinorCode)

	switch {
	case strings.Contains(code, "drawer"):
		return []string{"Drawers"}
	case strings.Contains(desc, "freestanding"):
		return []string{"Freestanding"}
	case builtInRe.MatchString(desc):
		return []string{"Built In"}
	case strings.Contains(desc, "outdoor") || strings.Contains(paragraph, "outdoor") || strings.Contains(featureText, "outdoor"):
		return []string{"Outdoor"}
	}
	return nil
}

func extractCoffeeConfiguration(v *ProductView) []string {
	if plumbedRe.MatchString(v.marketingText()) {
		return []string{"Plumbed"}
	}
	return nil
}

var (
	laundryTopLoadCodes   = []string{"DRYE", "DRYTME", "DRYTMG", "WASHT", "WASHHE", "DRYG"}
	laundryFrontLoadCodes = []string{"DRYEF", "DRYGF", "WASHF"}
	laundryCommCodes      = []string{"COMMW", "COMMC", "COMMD"}
)

func extractLaundryConfiguration(v *ProductView) []string {
	code := strings.ToUpper(v.MinorCode)

	var configs []string
	if containsCode(laundryTopLoadCodes, code) {
		configs = append(configs, "Top Load")
	}
	if containsCode(laundryFrontLoadCodes, code) {
		configs = append(configs, "Front Load")
	}
	if containsCode(laundryCommCodes, code) {
		configs = append(configs, "Commercial")
	}
	return configs
}
