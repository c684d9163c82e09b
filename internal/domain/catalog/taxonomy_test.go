package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		in           ClassifyInput
		wantType     string
		wantCategory string
	}{
		{
			name:         "no class text yields no type",
			in:           ClassifyInput{},
			wantType:     "",
			wantCategory: DefaultCategory,
		},
		{
			name:         "microwave by minor text",
			in:           ClassifyInput{Major: "Cooking", Minor: "Over the Range Microwave"},
			wantType:     TypeMicrowave,
			wantCategory: DefaultCategory,
		},
		{
			name:         "microwave by major class code",
			in:           ClassifyInput{Major: "Cooking", Minor: "Compact", MajorCode: "MIC"},
			wantType:     TypeMicrowave,
			wantCategory: DefaultCategory,
		},
		{
			name:         "warming drawer before generic oven",
			in:           ClassifyInput{Minor: "Warming Drawer"},
			wantType:     TypeWarmingDrawers,
			wantCategory: DefaultCategory,
		},
		{
			name:         "rangetop classified as cooktop before range",
			in:           ClassifyInput{Major: "Ranges", Minor: "Rangetops"},
			wantType:     TypeCooktops,
			wantCategory: DefaultCategory,
		},
		{
			name:         "oven minor wins over refrigerator major",
			in:           ClassifyInput{Major: "Refrigerators", Minor: "Single Wall Oven"},
			wantType:     TypeBuiltInOvens,
			wantCategory: DefaultCategory,
		},
		{
			name:         "small appliances with coffee minor",
			in:           ClassifyInput{Major: "Small Appliances", Minor: "Coffee Makers and Grinders"},
			wantType:     TypeCoffeeSystems,
			wantCategory: DefaultCategory,
		},
		{
			name:         "small appliances fallback",
			in:           ClassifyInput{Major: "Small Appliances", Minor: "Blenders"},
			wantType:     TypeMisc,
			wantCategory: DefaultCategory,
		},
		{
			name:         "range by minor",
			in:           ClassifyInput{Major: "Cooking", Minor: "Professional Gas Range"},
			wantType:     TypeRanges,
			wantCategory: DefaultCategory,
		},
		{
			name: "refrigerated drawer sold as freezer",
			in: ClassifyInput{
				Major:            "Refrigerators",
				Minor:            "Refrigerated Drawer",
				ShortDescription: "24\" Freezer Drawer",
			},
			wantType:     TypeFreezers,
			wantCategory: DefaultCategory,
		},
		{
			name:         "plain refrigerator",
			in:           ClassifyInput{Major: "Refrigerators", Minor: "French Door"},
			wantType:     TypeRefrigerators,
			wantCategory: DefaultCategory,
		},
		{
			name:         "ice maker override under freezers",
			in:           ClassifyInput{Major: "Freezers", Minor: "Ice Makers"},
			wantType:     TypeIceMakers,
			wantCategory: DefaultCategory,
		},
		{
			name:         "dishwasher major",
			in:           ClassifyInput{Major: "Dishwashers", Minor: "Built In"},
			wantType:     TypeDishwashers,
			wantCategory: DefaultCategory,
		},
		{
			name:         "grill by major class code",
			in:           ClassifyInput{Major: "Outdoor", Minor: "Islands", MajorCode: "BBQ"},
			wantType:     TypeOutdoorGrills,
			wantCategory: DefaultCategory,
		},
		{
			name:         "ventilation via hoods",
			in:           ClassifyInput{Major: "Hoods and Vents", Minor: "Wall Mount"},
			wantType:     TypeVentilation,
			wantCategory: DefaultCategory,
		},
		{
			name:         "laundry major",
			in:           ClassifyInput{Major: "Laundry", Minor: "Front Load Washer"},
			wantType:     TypeLaundry,
			wantCategory: DefaultCategory,
		},
		{
			name: "disposer moves to plumbing",
			in: ClassifyInput{
				Major:            "Kitchen",
				Minor:            "Other",
				MinorDescription: "Disposer Flange",
			},
			wantType:     TypeDisposer,
			wantCategory: CategoryPlumbing,
		},
		{
			name:         "accessories collapse to misc",
			in:           ClassifyInput{Major: "Outdoor Kitchen", Minor: "Grill Accessories"},
			wantType:     TypeMisc,
			wantCategory: DefaultCategory,
		},
		{
			name:         "predefined probe catches direct type names",
			in:           ClassifyInput{Major: "Ventilation", Minor: "Island"},
			wantType:     TypeVentilation,
			wantCategory: DefaultCategory,
		},
		{
			name:         "unmatched input defaults to misc",
			in:           ClassifyInput{Major: "Water Treatment", Minor: "Filters"},
			wantType:     TypeMisc,
			wantCategory: DefaultCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, category := Classify(tt.in)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantCategory, category)
		})
	}
}

func TestClassifyOrderMatters(t *testing.T) {
	// An input matching both the microwave rule and the refrigerator rule
	// must resolve to the earlier rule.
	typ, _ := Classify(ClassifyInput{Major: "Refrigerators", Minor: "Microwave Drawer"})
	assert.Equal(t, TypeMicrowave, typ)

	// Accessories only collapse to MISC when no earlier rule fires.
	typ, _ = Classify(ClassifyInput{Major: "Laundry", Minor: "Washer Accessories"})
	assert.Equal(t, TypeLaundry, typ)
}
