package dashboard

import (
	"regexp"
	"strings"
)

// filterSegment matches one filter expression: an alphabetic field name, an
// alphabetic operator in parentheses, and the rest of the segment as the
// value (which may itself contain '=').
var filterSegment = regexp.MustCompile(`^([A-Za-z]+)\(([A-Za-z]+)\)=(.*)$`)

// ParseFilters translates the compact filter grammar
// "field(operator)=value&field(operator)=value" into query parameters keyed
// by "field(operator)". Parsing is permissive: segments that do not match
// the grammar are silently dropped, and operators are not validated here,
// the dashboard rejects ones it does not know (eq, ne, gt, lt, ge, le,
// like, nlike are the documented set).
//
// Empty input yields an empty map.
func ParseFilters(text string) map[string]string {
	filters := make(map[string]string)
	if text == "" {
		return filters
	}

	for _, segment := range strings.Split(text, "&") {
		m := filterSegment.FindStringSubmatch(segment)
		if m == nil {
			continue
		}
		filters[m[1]+"("+m[2]+")"] = m[3]
	}
	return filters
}
