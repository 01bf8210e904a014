// Package filter expands user-supplied filter patterns against the fixed
// product vocabularies and normalizes filter specs before they reach the
// aggregation layer.
package filter

import (
	"path"
	"sort"
	"strings"
)

// ValidSets is the closed vocabulary of product-set codes observed in the
// source data.
var ValidSets = map[string]struct{}{
	"SV01": {}, "SV02": {}, "SV03": {}, "SV03.5": {}, "SV04": {},
	"SV04.5": {}, "SV05": {}, "SV06": {}, "SV06.5": {}, "SV07": {},
	"SV08": {}, "SV08.5": {}, "SV09": {}, "SV10": {},
	"SWSH06": {}, "SWSH07": {}, "SWSH07.5": {}, "SWSH08": {}, "SWSH09": {},
	"SWSH10": {}, "SWSH11": {}, "SWSH12": {}, "SWSH12.5": {},
}

// ValidTypes is the closed vocabulary of product types.
var ValidTypes = map[string]struct{}{
	"Card":              {},
	"Booster Box":       {},
	"Elite Trainer Box": {},
}

// DefaultPeriod is the single period label the dataset currently carries.
const DefaultPeriod = "3M"

// ValidPeriods holds the allowed period labels.
var ValidPeriods = map[string]struct{}{DefaultPeriod: {}}

// ExpandSets expands a set pattern ("*", "SV*", "SV01,SV02", …) into the
// concrete set codes it selects. Unknown values are dropped silently; an
// empty result is a valid outcome the caller must notice.
func ExpandSets(pattern string) map[string]struct{} {
	return expand(pattern, ValidSets)
}

// ExpandTypes expands a type pattern ("*", "*Box", "Card", …) into the
// concrete product types it selects.
func ExpandTypes(pattern string) map[string]struct{} {
	return expand(pattern, ValidTypes)
}

// ValidPeriod reports whether period is an allowed period label.
func ValidPeriod(period string) bool {
	_, ok := ValidPeriods[period]
	return ok
}

func expand(pattern string, vocabulary map[string]struct{}) map[string]struct{} {
	result := make(map[string]struct{})
	if pattern == "*" {
		for v := range vocabulary {
			result[v] = struct{}{}
		}
		return result
	}

	for _, token := range strings.Split(pattern, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if !strings.ContainsAny(token, "*?[") {
			if _, ok := vocabulary[token]; ok {
				result[token] = struct{}{}
			}
			continue
		}
		for v := range vocabulary {
			// Vocabulary values never contain '/', so path.Match is a
			// plain case-sensitive shell glob here.
			if ok, err := path.Match(token, v); err == nil && ok {
				result[v] = struct{}{}
			}
		}
	}
	return result
}

// Families returns the distinct alphabetic prefixes of the set vocabulary
// ("SV", "SWSH"), sorted. Discovery and alternative suggestions use these
// to build per-family wildcard patterns.
func Families() []string {
	seen := make(map[string]struct{})
	for code := range ValidSets {
		i := 0
		for i < len(code) && (code[i] < '0' || code[i] > '9') {
			i++
		}
		if i > 0 {
			seen[code[:i]] = struct{}{}
		}
	}
	families := make([]string, 0, len(seen))
	for f := range seen {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}

// Sorted returns the values of a set in ascending order, for logging and
// deterministic output.
func Sorted(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
