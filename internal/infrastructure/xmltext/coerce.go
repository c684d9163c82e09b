package xmltext

import (
	"fmt"
	"sort"
	"strconv"
)

// Coerce flattens a decoded feed value into plain text. Upstream serializers
// wrap some fields in single-key containers such as {"text": "…"} or
// {"#text": "…", "@xml:space": "preserve"}; scalars pass through, containers
// resolve to their text key or first value.
func Coerce(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		for _, key := range []string{"#text", "text"} {
			if inner, ok := v[key]; ok {
				return Coerce(inner)
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := Coerce(v[k]); s != "" {
				return s
			}
		}
		return ""
	case []any:
		if len(v) == 0 {
			return ""
		}
		return Coerce(v[0])
	default:
		return fmt.Sprintf("%v", v)
	}
}
