// Package numerator provides document code generation for the ledger series.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Series identifies a document code series by its default prefix.
type Series string

const (
	SeriesImport   Series = "N"
	SeriesExport   Series = "X"
	SeriesTransfer Series = "DC"
	SeriesProduct  Series = "SP"
)

// Prefix returns the fallback prefix of the series.
func (s Series) Prefix() string { return string(s) }

// PadWidth is the minimum number of digits in a generated code.
const PadWidth = 3

// NextCode derives the code following last.
//
//	NextCode("N007", "N")  == "N008"
//	NextCode("", "X")      == "X001"
//	NextCode("DC099", "N") == "DC100"
//	NextCode("N999", "N")  == "N1000"
//
// A last code that does not start with a letter is ignored and the series
// restarts at fallback+"001". Overflow past PadWidth digits is kept, not truncated.
func NextCode(last, fallback string) string {
	last = strings.TrimSpace(last)
	first := true
	var prefix, digits strings.Builder
	for _, r := range last {
		if first && !unicode.IsLetter(r) {
			return start(fallback)
		}
		first = false
		switch {
		case unicode.IsLetter(r):
			prefix.WriteRune(r)
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		}
	}
	if last == "" {
		return start(fallback)
	}

	p := prefix.String()
	if p == "" {
		p = fallback
	}
	if digits.Len() == 0 {
		return start(p)
	}
	n, err := strconv.ParseUint(digits.String(), 10, 63)
	if err != nil {
		return start(p)
	}
	return fmt.Sprintf("%s%0*d", p, PadWidth, n+1)
}

func start(prefix string) string {
	return fmt.Sprintf("%s%0*d", prefix, PadWidth, 1)
}
