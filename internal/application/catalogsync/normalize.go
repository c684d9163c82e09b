package catalogsync

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mld/backend/internal/domain/catalog"
	"github.com/mld/backend/internal/infrastructure/specfeed"
	"github.com/mld/backend/internal/infrastructure/xmltext"
)

// StoredData is the normalized JSON blob persisted on the product row. Spec
// tables are canonicalized to sectioned key/value lists, media and related
// items are always lists, and the raw spec_table_html is dropped.
type StoredData struct {
	Classification  StoredClassification `json:"classification"`
	MarketingCopy   StoredMarketingCopy  `json:"marketing_copy"`
	Media           StoredMedia          `json:"media"`
	ManagedData     string               `json:"managed_data,omitempty"`
	Disclosures     string               `json:"disclosures,omitempty"`
	AuthorTimestamp *string              `json:"author_timestamp"`
}

// StoredClassification mirrors the feed classification subtree with all
// values coerced to text
type StoredClassification struct {
	PN                 string              `json:"pn,omitempty"`
	ManufacturerPN     string              `json:"manufacturer_pn,omitempty"`
	BrandName          string              `json:"brand_name,omitempty"`
	BrandCode          string              `json:"brand_code,omitempty"`
	MajorClassDesc     string              `json:"major_class_description,omitempty"`
	MinorClassDesc     string              `json:"minor_class_description,omitempty"`
	MajorClassCode     string              `json:"major_class_code,omitempty"`
	MinorClassCode     string              `json:"minor_class_code,omitempty"`
	Height             string              `json:"height,omitempty"`
	Width              string              `json:"width,omitempty"`
	WidthString        string              `json:"width_string,omitempty"`
	NominalWidthInches string              `json:"nominal_width_in_inches_string,omitempty"`
	RelatedItems       *StoredRelatedItems `json:"related_items,omitempty"`
}

// StoredRelatedItems always carries a list, even when the feed emitted a
// single key
type StoredRelatedItems struct {
	RelatedItemKey []string `json:"related_item_key"`
}

// StoredMarketingCopy is the marketing subtree with the pseudo-markup
// translated and the spec table canonicalized
type StoredMarketingCopy struct {
	ShortDescription     string                `json:"short_description,omitempty"`
	MediumDescription    string                `json:"medium_description,omitempty"`
	ParagraphDescription string                `json:"paragraph_description,omitempty"`
	Features             []string              `json:"features"`
	ImageFeatures        []StoredImageFeature  `json:"image_features"`
	HierarchicalHTML     string                `json:"hierarchical_features_html,omitempty"`
	SpecTable            []catalog.SpecSection `json:"spec_table_as_key_value_pairs"`
}

// StoredImageFeature is one illustrated feature callout
type StoredImageFeature struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"feature_description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// StoredMedia forces image and PDF references into lists
type StoredMedia struct {
	Images []StoredImage `json:"images"`
	PDFs   []StoredPDF   `json:"pdfs"`
}

// StoredImage is one product image reference
type StoredImage struct {
	FileName     string `json:"file_name"`
	FullSizeURL  string `json:"full_size_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// StoredPDF is one spec sheet or manual reference
type StoredPDF struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	Description string `json:"description"`
}

// markupReplacements maps the feed's parenthesized pseudo-markup onto real
// HTML tags. (BR) runs first so the (B) pattern can't split it.
var markupReplacements = []struct {
	re   *regexp.Regexp
	html string
}{
	{regexp.MustCompile(`(?i)\(BR\)`), "<br />"},
	{regexp.MustCompile(`(?i)\(B\)`), "<b>"},
	{regexp.MustCompile(`(?i)\(/B\)`), "</b>"},
	{regexp.MustCompile(`(?i)\(P\)`), "<p>"},
	{regexp.MustCompile(`(?i)\(/P\)`), "</p>"},
	{regexp.MustCompile(`(?i)\(UL\)`), "<ul>"},
	{regexp.MustCompile(`(?i)\(/UL\)`), "</ul>"},
	{regexp.MustCompile(`(?i)\(LI\)`), "<li>"},
	{regexp.MustCompile(`(?i)\(/LI\)`), "</li>"},
}

// NormalizeMarkup converts the feed's pseudo-markup tags into HTML
func NormalizeMarkup(s string) string {
	for _, r := range markupReplacements {
		s = r.re.ReplaceAllString(s, r.html)
	}
	return s
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// stripTags replaces markup tags with spaces so word boundaries survive
func stripTags(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, " "))
}

// canonicalSections flattens a feed spec table into the stored sectioned
// shape. Flat pair lists become one untitled section; rows without a key are
// dropped.
func canonicalSections(table *specfeed.SpecTable) []catalog.SpecSection {
	if table == nil {
		return []catalog.SpecSection{}
	}

	if len(table.Sections) > 0 {
		sections := make([]catalog.SpecSection, 0, len(table.Sections))
		for _, raw := range table.Sections {
			pairs := canonicalPairs(raw.Pairs)
			if len(pairs) == 0 {
				continue
			}
			section := catalog.SpecSection{Pairs: pairs}
			if title := raw.SectionTitle.Trimmed(); title != "" {
				section.SectionTitle = &title
			}
			sections = append(sections, section)
		}
		return sections
	}

	pairs := canonicalPairs(table.Pairs)
	if len(pairs) == 0 {
		return []catalog.SpecSection{}
	}
	return []catalog.SpecSection{{SectionTitle: nil, Pairs: pairs}}
}

func canonicalPairs(raw []specfeed.SpecTablePair) []catalog.SpecPair {
	pairs := make([]catalog.SpecPair, 0, len(raw))
	for _, p := range raw {
		key := p.Key.Trimmed()
		if key == "" {
			continue
		}
		pairs = append(pairs, catalog.SpecPair{Key: key, Value: p.Value.Trimmed()})
	}
	return pairs
}

// BuildStoredData assembles the normalized data blob for one feed entry
func BuildStoredData(body *specfeed.SpecBody) StoredData {
	c := body.Classification
	m := body.MarketingCopy

	stored := StoredData{
		Classification: StoredClassification{
			PN:                 c.PN.Trimmed(),
			ManufacturerPN:     c.ManufacturerPN.Trimmed(),
			BrandName:          c.BrandName.Trimmed(),
			BrandCode:          c.BrandCode.Trimmed(),
			MajorClassDesc:     c.MajorClassDesc.Trimmed(),
			MinorClassDesc:     c.MinorClassDesc.Trimmed(),
			MajorClassCode:     c.MajorClassCode.Trimmed(),
			MinorClassCode:     c.MinorClassCode.Trimmed(),
			Height:             c.Height.Trimmed(),
			Width:              c.Width.Trimmed(),
			WidthString:        c.WidthString.Trimmed(),
			NominalWidthInches: c.NominalWidthInches.Trimmed(),
		},
		MarketingCopy: StoredMarketingCopy{
			ShortDescription:     m.ShortDescription.Trimmed(),
			MediumDescription:    m.MediumDescription.Trimmed(),
			ParagraphDescription: NormalizeMarkup(m.ParagraphDescription.Trimmed()),
			Features:             valueStrings(m.Features.Feature),
			ImageFeatures:        storedImageFeatures(m.ImageFeatures.ImageFeature),
			HierarchicalHTML:     strings.TrimSpace(m.HierarchicalHTML.Inner),
			SpecTable:            canonicalSections(m.SpecTable),
		},
		Media:       storedMedia(body.Media),
		ManagedData: strings.TrimSpace(body.ManagedData.Inner),
		Disclosures: strings.TrimSpace(body.Disclosures.Inner),
	}

	if ts := body.AuthorTimestamp.Trimmed(); ts != "" {
		stored.AuthorTimestamp = &ts
	}
	if keys := valueStrings(c.RelatedItems.Keys); len(keys) > 0 {
		stored.Classification.RelatedItems = &StoredRelatedItems{RelatedItemKey: keys}
	}
	return stored
}

func storedMedia(media specfeed.Media) StoredMedia {
	out := StoredMedia{
		Images: make([]StoredImage, 0, len(media.Images.Image)),
		PDFs:   make([]StoredPDF, 0, len(media.PDFs.PDF)),
	}
	for _, img := range media.Images.Image {
		out.Images = append(out.Images, StoredImage{
			FileName:     img.FileName.Trimmed(),
			FullSizeURL:  img.FullSizeURL.Trimmed(),
			ThumbnailURL: img.ThumbnailURL.Trimmed(),
		})
	}
	for _, pdf := range media.PDFs.PDF {
		out.PDFs = append(out.PDFs, StoredPDF{
			URL:         pdf.URL.Trimmed(),
			FileName:    pdf.FileName.Trimmed(),
			Description: pdf.Description.Trimmed(),
		})
	}
	return out
}

func storedImageFeatures(raw []specfeed.ImageFeature) []StoredImageFeature {
	out := make([]StoredImageFeature, 0, len(raw))
	for _, f := range raw {
		out = append(out, StoredImageFeature{
			Title:       f.Title.Trimmed(),
			Description: f.Description.Trimmed(),
			ImageURL:    f.ImageURL.Trimmed(),
		})
	}
	return out
}

func valueStrings(values []xmltext.Value) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := v.Trimmed(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// BuildProductView projects a feed entry into the read model the facet
// extractors run over
func BuildProductView(body *specfeed.SpecBody, typ string) *catalog.ProductView {
	c := body.Classification
	m := body.MarketingCopy

	view := &catalog.ProductView{
		Brand:            c.BrandName.Trimmed(),
		BrandCode:        c.BrandCode.Trimmed(),
		Major:            c.MajorClassDesc.Trimmed(),
		Minor:            c.MinorClassDesc.Trimmed(),
		Type:             typ,
		MinorCode:        c.MinorClassCode.Trimmed(),
		MinorDescription: c.MinorClassDesc.Trimmed(),
		WidthText:        c.WidthText(),
		Short:            m.ShortDescription.Trimmed(),
		Medium:           m.MediumDescription.Trimmed(),
		Paragraph:        NormalizeMarkup(m.ParagraphDescription.Trimmed()),
		FeatureList:      valueStrings(m.Features.Feature),
		Hierarchical:     stripTags(m.HierarchicalHTML.Inner),
		SpecSections:     canonicalSections(m.SpecTable),
	}

	if h, err := strconv.ParseFloat(c.Height.Trimmed(), 64); err == nil {
		view.Height = &h
	}
	for _, f := range m.ImageFeatures.ImageFeature {
		if t := f.Title.Trimmed(); t != "" {
			view.ImageTitles = append(view.ImageTitles, t)
		}
		if d := f.Description.Trimmed(); d != "" {
			view.ImageDescriptions = append(view.ImageDescriptions, d)
		}
	}
	return view
}
