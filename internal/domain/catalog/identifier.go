package catalog

import (
	"regexp"
	"strings"
)

var (
	modelStripRe   = regexp.MustCompile(`[-/]`)
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// DeriveModel produces the stable catalog key for a feed entry.
// The manufacturer part number wins over the plain part number; dashes and
// slashes are stripped and the rest is uppercased. Returns false when the
// entry carries neither identifier.
func DeriveModel(manufacturerPN, pn string) (string, bool) {
	raw := strings.TrimSpace(manufacturerPN)
	if raw == "" {
		raw = strings.TrimSpace(pn)
	}
	if raw == "" {
		return "", false
	}
	return strings.ToUpper(modelStripRe.ReplaceAllString(raw, "")), true
}

// SlugPart normalizes a single slug component: lowercase, ampersands spelled
// out, non-alphanumeric runs collapsed to a single dash.
func SlugPart(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.ReplaceAll(s, "&", "and")
	s = slugInvalidRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// BuildSlug joins brand, major class, minor class and model into a URL-safe
// slug, dropping empty components and collapsing repeated separators.
func BuildSlug(brand, major, minor, model string) string {
	parts := make([]string, 0, 4)
	for _, raw := range []string{brand, major, minor, model} {
		if p := SlugPart(raw); p != "" {
			parts = append(parts, p)
		}
	}
	return slugCollapseRe.ReplaceAllString(strings.Join(parts, "-"), "-")
}
