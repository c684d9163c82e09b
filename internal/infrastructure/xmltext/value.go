// Package xmltext provides a tolerant text type for feed XML fields that
// arrive either as plain character data or wrapped in a container element.
package xmltext

import (
	"encoding/xml"
	"strings"
)

// Value coerces an XML element to text at the parse boundary: direct
// character data wins, else the text of the first child element, else empty.
type Value string

// String returns the coerced text
func (v Value) String() string {
	return string(v)
}

// Trimmed returns the coerced text with surrounding whitespace removed
func (v Value) Trimmed() string {
	return strings.TrimSpace(string(v))
}

// UnmarshalXML implements xml.Unmarshaler
func (v *Value) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var direct, firstChild strings.Builder
	depth := 0
	childCount := 0
	inFirstChild := false

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				childCount++
				inFirstChild = childCount == 1
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				// closing tag of the element itself
				*v = pick(direct.String(), firstChild.String(), childCount)
				return nil
			}
			depth--
			if depth == 0 {
				inFirstChild = false
			}
		case xml.CharData:
			if depth == 0 {
				direct.Write(t)
			} else if inFirstChild {
				firstChild.Write(t)
			}
		}
	}
}

func pick(direct, firstChild string, childCount int) Value {
	if childCount > 0 && strings.TrimSpace(direct) == "" {
		return Value(firstChild)
	}
	return Value(direct)
}
