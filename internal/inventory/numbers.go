package inventory

import (
	"strconv"
	"strings"
	"unicode"
)

// parseLeadingInt ixtiyoriy ishora va boshidagi raqamlarni o'qiydi:
// "12 pcs" 12, "3.5" esa 3 bo'ladi.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseQuantity matndagi miqdorni int ga aylantiradi; o'qib bo'lmasa 0
func ParseQuantity(s string) int {
	n, ok := parseLeadingInt(s)
	if !ok {
		return 0
	}
	return n
}

// ColumnIndex ustun harfini 1 dan boshlanadigan indeksga aylantiradi ("A" -> 1).
// Faqat birinchi belgi hisobga olinadi, harf bo'lmasa 0.
func ColumnIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return 0
	}
	r := []rune(column)[0]
	idx := int(r) - 64
	if idx <= 0 {
		return 0
	}
	return idx
}
