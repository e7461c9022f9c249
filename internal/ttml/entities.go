package ttml

import (
	"fmt"
	"regexp"
	"strings"
)

// namedRef matches a named character reference. Numeric references start
// with '#' and never match.
var namedRef = regexp.MustCompile(`&([A-Za-z_:][A-Za-z0-9_.:-]*);`)

var predefinedEntities = map[string]bool{
	"amp":  true,
	"lt":   true,
	"gt":   true,
	"quot": true,
	"apos": true,
}

// dropUnknownEntities removes named references outside the five predefined
// XML entities so the strict reader never sees them. Each removal is
// reported as a warning.
func dropUnknownEntities(src string) (string, []string) {
	if !strings.Contains(src, "&") {
		return src, nil
	}
	var warnings []string
	out := namedRef.ReplaceAllStringFunc(src, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if predefinedEntities[name] {
			return ref
		}
		warnings = append(warnings, fmt.Sprintf("ignored unknown entity reference &%s;", name))
		return ""
	})
	return out, warnings
}
