package catalogsync

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mld/backend/internal/infrastructure/specfeed"
)

func TestNormalizeMarkup(t *testing.T) {
	t.Run("translates pseudo-markup to html", func(t *testing.T) {
		in := "(P)(B)Bold(/B) text(BR)(UL)(LI)one(/LI)(/UL)(/P)"
		out := NormalizeMarkup(in)
		assert.Equal(t, "<p><b>Bold</b> text<br /><ul><li>one</li></ul></p>", out)
	})

	t.Run("is case insensitive", func(t *testing.T) {
		assert.Equal(t, "<br /><b>x</b>", NormalizeMarkup("(br)(b)x(/B)"))
	})

	t.Run("leaves plain text alone", func(t *testing.T) {
		assert.Equal(t, "A 30\" range (gas)", NormalizeMarkup("A 30\" range (gas)"))
	})
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Spacious   Oven", stripTags("<ul><li>Spacious</li> <li>Oven</li></ul>"))
	assert.Equal(t, "plain", stripTags("plain"))
}

func parseSingleSpec(t *testing.T, xml string) *specfeed.SpecBody {
	t.Helper()
	feed, err := specfeed.Parse([]byte(xml))
	require.NoError(t, err)
	require.Len(t, feed.Specs, 1)
	return feed.Specs[0].Body()
}

func TestBuildStoredData(t *testing.T) {
	body := parseSingleSpec(t, `
<product_data>
  <product_specs>
    <classification>
      <pn>KFGC500JSS</pn>
      <brand_name>KitchenAid</brand_name>
      <major_class_description>RANGES</major_class_description>
      <minor_class_description>GAS RANGE</minor_class_description>
      <related_items>
        <related_item_key>ABC1</related_item_key>
      </related_items>
    </classification>
    <marketing_copy>
      <paragraph_description>(P)Cook (B)better(/B)(/P)</paragraph_description>
      <features>
        <feature>Even-Heat</feature>
        <feature>  </feature>
      </features>
      <spec_table_as_key_value_pairs>
        <spec_table_pair><key>Fuel Type</key><value>Gas</value></spec_table_pair>
        <spec_table_pair><key></key><value>orphan</value></spec_table_pair>
      </spec_table_as_key_value_pairs>
      <spec_table_html><table><tr><td>raw</td></tr></table></spec_table_html>
    </marketing_copy>
    <media>
      <images>
        <image><file_name>front.jpg</file_name><full_size_url>http://cdn/front.jpg</full_size_url></image>
      </images>
    </media>
  </product_specs>
</product_data>`)

	stored := BuildStoredData(body)

	assert.Equal(t, "<p>Cook <b>better</b></p>", stored.MarketingCopy.ParagraphDescription)
	assert.Equal(t, []string{"Even-Heat"}, stored.MarketingCopy.Features)
	require.NotNil(t, stored.Classification.RelatedItems)
	assert.Equal(t, []string{"ABC1"}, stored.Classification.RelatedItems.RelatedItemKey)

	// single flat pair list becomes one untitled section, empty keys dropped
	require.Len(t, stored.MarketingCopy.SpecTable, 1)
	section := stored.MarketingCopy.SpecTable[0]
	assert.Nil(t, section.SectionTitle)
	require.Len(t, section.Pairs, 1)
	assert.Equal(t, "Fuel Type", section.Pairs[0].Key)
	assert.Equal(t, "Gas", section.Pairs[0].Value)

	// media is always a list, even with one member
	require.Len(t, stored.Media.Images, 1)
	assert.Equal(t, "front.jpg", stored.Media.Images[0].FileName)
	assert.Empty(t, stored.Media.PDFs)

	// the raw html table never reaches the stored blob
	blob, err := json.Marshal(stored)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "spec_table_html")
	assert.NotContains(t, string(blob), "<table>")
}

func TestBuildStoredDataSectionedTable(t *testing.T) {
	body := parseSingleSpec(t, `
<product_data>
  <product_specs>
    <classification><pn>X100</pn></classification>
    <marketing_copy>
      <spec_table_as_key_value_pairs>
        <section>
          <section_title>Dimensions</section_title>
          <key_value_pairs>
            <spec_table_pair><key>Width</key><value>30"</value></spec_table_pair>
          </key_value_pairs>
        </section>
        <section>
          <section_title>Empty</section_title>
          <key_value_pairs></key_value_pairs>
        </section>
      </spec_table_as_key_value_pairs>
    </marketing_copy>
  </product_specs>
</product_data>`)

	stored := BuildStoredData(body)

	require.Len(t, stored.MarketingCopy.SpecTable, 1)
	require.NotNil(t, stored.MarketingCopy.SpecTable[0].SectionTitle)
	assert.Equal(t, "Dimensions", *stored.MarketingCopy.SpecTable[0].SectionTitle)
}

func TestBuildProductView(t *testing.T) {
	body := parseSingleSpec(t, `
<product_data>
  <product_specs>
    <classification>
      <pn>KFGC500JSS</pn>
      <brand_name>KitchenAid</brand_name>
      <brand_code>KTA</brand_code>
      <major_class_description>RANGES</major_class_description>
      <minor_class_description>GAS RANGE</minor_class_description>
      <minor_class_code>RNG30</minor_class_code>
      <height>36.5</height>
      <nominal_width_in_inches_string>30</nominal_width_in_inches_string>
    </classification>
    <marketing_copy>
      <short_description>30" gas range</short_description>
      <hierarchical_features_html><ul><li>Even-Heat True Convection</li></ul></hierarchical_features_html>
      <image_features>
        <image_feature>
          <title>Smart Oven</title>
          <feature_description>Wi-Fi enabled controls</feature_description>
        </image_feature>
      </image_features>
    </marketing_copy>
  </product_specs>
</product_data>`)

	view := BuildProductView(body, "RANGES")

	assert.Equal(t, "KitchenAid", view.Brand)
	assert.Equal(t, "KTA", view.BrandCode)
	assert.Equal(t, "RNG30", view.MinorCode)
	assert.Equal(t, "30", view.WidthText)
	require.NotNil(t, view.Height)
	assert.InDelta(t, 36.5, *view.Height, 0.001)
	assert.Equal(t, []string{"Smart Oven"}, view.ImageTitles)
	assert.Equal(t, []string{"Wi-Fi enabled controls"}, view.ImageDescriptions)
	assert.Contains(t, view.Hierarchical, "Even-Heat True Convection")
	assert.NotContains(t, view.Hierarchical, "<li>")
}
