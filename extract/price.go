package extract

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice converts a price cell such as "₺2.345,67" into 2345.67.
//
// Everything except digits, '.' and ',' is dropped, '.' is treated as a
// thousands separator and removed, and the first ',' becomes the decimal
// point. Only the leading number is read, so a second ',' ends it:
// "2,450,10" is 2.45. Empty or unparsable input yields nil; it never fails
// loudly so the extractors can keep scanning.
func ParsePrice(input string) *float64 {
	if input == "" {
		return nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		// '.' is thousands grouping and dropped together with symbols.
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if i := strings.IndexByte(cleaned, ','); i >= 0 {
		frac := cleaned[i+1:]
		if j := strings.IndexByte(frac, ','); j >= 0 {
			frac = frac[:j]
		}
		cleaned = cleaned[:i] + "." + frac
	}
	if cleaned == "" || cleaned == "." {
		return nil
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// ParsePriceRaw is ParsePrice for optional cells.
func ParsePriceRaw(input *string) *float64 {
	if input == nil {
		return nil
	}
	return ParsePrice(*input)
}
