package core

// convert.go turns raw CSV cells into typed values.
//
// These functions handle the messy reality of exported statistics:
//   - Surrounding whitespace and stray quotes
//   - Excel formula prefixes (="value")
//   - Thousands separators in numbers
//   - Placeholders such as ".." or "n/a" for unavailable data
//
// Nothing here returns an error: an unusable cell becomes Missing and the
// load carries on.

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/hivdash/internal/schema"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// thousandsRegex matches numbers whose commas are well-formed thousands
// groups. A decimal comma ("0,5") or stray commas ("1,2,3") do not match.
var thousandsRegex = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// ParseNumber converts a cleaned cell into a Value.
// Empty and non-numeric input yield Missing.
func ParseNumber(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing
	}

	if strings.Contains(s, ",") {
		if !thousandsRegex.MatchString(s) {
			return Missing
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	if !numericRegex.MatchString(s) {
		return Missing
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing
	}
	return Num(f)
}

// yearCell applies the primary-file imputation rules to one year cell:
// an empty cell is treated as zero, an unparseable one as missing.
func yearCell(raw string) Value {
	if raw == "" {
		return Num(0)
	}
	return ParseNumber(raw)
}

// orUnknown returns s, or the Unknown sentinel when s is empty.
func orUnknown(s string) string {
	if s == "" {
		return schema.Unknown
	}
	return s
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// The first occurrence of a name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := schema.NormalizeHeader(CleanCell(h))
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// - Replaces invalid UTF-8
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.ToValidUTF8(s, "�")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
