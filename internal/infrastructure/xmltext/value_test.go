package xmltext

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Field Value `xml:"field"`
}

func parse(t *testing.T, raw string) Value {
	t.Helper()
	var d doc
	require.NoError(t, xml.Unmarshal([]byte(raw), &d))
	return d.Field
}

func TestValueUnmarshalXML(t *testing.T) {
	t.Run("plain character data", func(t *testing.T) {
		v := parse(t, `<doc><field>WH 123ABC EXTRA</field></doc>`)
		assert.Equal(t, "WH 123ABC EXTRA", v.String())
	})

	t.Run("numeric content stays textual", func(t *testing.T) {
		v := parse(t, `<doc><field>199.99</field></doc>`)
		assert.Equal(t, "199.99", v.String())
	})

	t.Run("wrapped single child unwraps", func(t *testing.T) {
		v := parse(t, `<doc><field><text>hello</text></field></doc>`)
		assert.Equal(t, "hello", v.String())
	})

	t.Run("first child wins in a container", func(t *testing.T) {
		v := parse(t, `<doc><field><a>first</a><b>second</b></field></doc>`)
		assert.Equal(t, "first", v.String())
	})

	t.Run("direct text beats children", func(t *testing.T) {
		v := parse(t, `<doc><field>direct<a>child</a></field></doc>`)
		assert.Equal(t, "direct", v.String())
	})

	t.Run("empty element", func(t *testing.T) {
		v := parse(t, `<doc><field/></doc>`)
		assert.Equal(t, "", v.String())
	})

	t.Run("trimmed strips whitespace", func(t *testing.T) {
		v := parse(t, "<doc><field>  spaced  </field></doc>")
		assert.Equal(t, "spaced", v.Trimmed())
	})
}
