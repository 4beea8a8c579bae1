package common

import (
	"strings"
)

// FilterParam reads an optional list filter. Empty and "all" both mean no
// filter.
func FilterParam(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "all") {
		return ""
	}
	return value
}
