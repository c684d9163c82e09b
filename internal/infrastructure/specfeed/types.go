package specfeed

import (
	"github.com/mld/backend/internal/infrastructure/xmltext"
)

// Feed is the parsed manufacturer specification document
type Feed struct {
	Specs []ProductSpec
}

// ProductSpec is one product entry. Some feeds nest the body under <data>,
// some put classification at the entry root; Body resolves either way.
type ProductSpec struct {
	Data *SpecBody `xml:"data"`
	SpecBody
}

// Body returns the effective spec subtree for this entry
func (s *ProductSpec) Body() *SpecBody {
	if s.Data != nil {
		return s.Data
	}
	return &s.SpecBody
}

// SpecBody holds the classification, marketing and media subtrees of a spec
type SpecBody struct {
	Classification  Classification `xml:"classification"`
	MarketingCopy   MarketingCopy  `xml:"marketing_copy"`
	Media           Media          `xml:"media"`
	ManagedData     RawSubtree     `xml:"managed_data"`
	Disclosures     RawSubtree     `xml:"disclosures"`
	AuthorTimestamp xmltext.Value  `xml:"author_timestamp"`
}

// RawSubtree keeps an opaque subtree as its inner XML for pass-through storage
type RawSubtree struct {
	Inner string `xml:",innerxml"`
}

// Classification carries the manufacturer's class and identity fields
type Classification struct {
	PN                 xmltext.Value `xml:"pn"`
	ManufacturerPN     xmltext.Value `xml:"manufacturer_pn"`
	BrandName          xmltext.Value `xml:"brand_name"`
	BrandCode          xmltext.Value `xml:"brand_code"`
	MajorClassDesc     xmltext.Value `xml:"major_class_description"`
	MinorClassDesc     xmltext.Value `xml:"minor_class_description"`
	MajorClassCode     xmltext.Value `xml:"major_class_code"`
	MinorClassCode     xmltext.Value `xml:"minor_class_code"`
	Height             xmltext.Value `xml:"height"`
	Width              xmltext.Value `xml:"width"`
	WidthString        xmltext.Value `xml:"width_string"`
	NominalWidthInches xmltext.Value `xml:"nominal_width_in_inches_string"`
	RelatedItems       RelatedItems  `xml:"related_items"`
}

// WidthText returns the best available width evidence
func (c *Classification) WidthText() string {
	for _, v := range []xmltext.Value{c.NominalWidthInches, c.WidthString, c.Width} {
		if v.Trimmed() != "" {
			return v.Trimmed()
		}
	}
	return ""
}

// RelatedItems lists cross-referenced item keys
type RelatedItems struct {
	Keys []xmltext.Value `xml:"related_item_key"`
}

// MarketingCopy carries descriptions, feature lists and the spec table
type MarketingCopy struct {
	ShortDescription     xmltext.Value  `xml:"short_description"`
	MediumDescription    xmltext.Value  `xml:"medium_description"`
	ParagraphDescription xmltext.Value  `xml:"paragraph_description"`
	Features             FeatureList    `xml:"features"`
	ImageFeatures        ImageFeatures  `xml:"image_features"`
	HierarchicalHTML     RawSubtree     `xml:"hierarchical_features_html"`
	SpecTable            *SpecTable     `xml:"spec_table_as_key_value_pairs"`
	SpecTableHTML        RawSubtree     `xml:"spec_table_html"`
}

// FeatureList is the flat marketing feature list
type FeatureList struct {
	Feature []xmltext.Value `xml:"feature"`
}

// ImageFeatures groups illustrated feature callouts
type ImageFeatures struct {
	ImageFeature []ImageFeature `xml:"image_feature"`
}

// ImageFeature is one illustrated feature callout
type ImageFeature struct {
	Title       xmltext.Value `xml:"title"`
	Description xmltext.Value `xml:"feature_description"`
	ImageURL    xmltext.Value `xml:"image_url"`
}

// SpecTable is the raw key/value spec table container. Feeds emit either a
// flat pair list or pre-sectioned groups.
type SpecTable struct {
	Pairs    []SpecTablePair    `xml:"spec_table_pair"`
	Sections []SpecTableSection `xml:"section"`
}

// SpecTableSection is a titled group of spec pairs
type SpecTableSection struct {
	SectionTitle xmltext.Value   `xml:"section_title"`
	Pairs        []SpecTablePair `xml:"key_value_pairs>spec_table_pair"`
}

// SpecTablePair is one raw key/value row
type SpecTablePair struct {
	Key   xmltext.Value `xml:"key"`
	Value xmltext.Value `xml:"value"`
}

// Media carries image and document references
type Media struct {
	Images MediaImages `xml:"images"`
	PDFs   MediaPDFs   `xml:"pdfs"`
}

// MediaImages wraps the image list
type MediaImages struct {
	Image []MediaImage `xml:"image"`
}

// MediaImage is a single product image reference
type MediaImage struct {
	FileName     xmltext.Value `xml:"file_name"`
	FullSizeURL  xmltext.Value `xml:"full_size_url"`
	ThumbnailURL xmltext.Value `xml:"thumbnail_url"`
}

// MediaPDFs wraps the document list
type MediaPDFs struct {
	PDF []MediaPDF `xml:"pdf"`
}

// MediaPDF is a single spec sheet or manual reference
type MediaPDF struct {
	URL         xmltext.Value `xml:"url"`
	FileName    xmltext.Value `xml:"file_name"`
	Description xmltext.Value `xml:"description"`
}
