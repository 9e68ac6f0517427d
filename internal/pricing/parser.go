package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseEntries extracts a deduplicated list of price entries from a raw
// price file. Each non-blank line must be CODE<TAB>PRICE. Lines that cannot
// be parsed are skipped and reported as human-readable messages in the
// second return value; they never abort the parse.
//
// Duplicate codes are deduplicated with last-occurrence-wins semantics: the
// entry keeps its first-insertion position but carries the price from the
// last line that mentioned the code.
func ParseEntries(text string) ([]Entry, []string) {
	var parseErrors []string
	entries := make([]Entry, 0)
	position := make(map[string]int)

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		code, rawPrice, found := strings.Cut(line, "\t")
		if !found {
			parseErrors = append(parseErrors, fmt.Sprintf("line %d: missing tab separator", i+1))
			continue
		}

		code = strings.TrimSpace(code)
		if code == "" {
			parseErrors = append(parseErrors, fmt.Sprintf("line %d: empty code", i+1))
			continue
		}

		price, err := ParsePrice(rawPrice)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("line %d: invalid price %q", i+1, strings.TrimSpace(rawPrice)))
			continue
		}

		if pos, seen := position[code]; seen {
			entries[pos].Price = price
			continue
		}
		position[code] = len(entries)
		entries = append(entries, Entry{Code: code, Price: price})
	}

	return entries, parseErrors
}

// ParsePrice parses a decimal price written with either '.' or ',' as the
// decimal separator, tolerating thousands grouping. When both separators
// occur, the rightmost one is the decimal separator and every occurrence of
// the other is grouping; with a single separator kind, its last occurrence
// is the decimal separator and earlier occurrences are grouping. So
// "1.234,56" and "1,234.56" both parse to 1234.56, while "200.50" and
// "1,5" keep their plain meanings.
func ParsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	price, err := strconv.ParseFloat(normalizeDecimal(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price is not finite: %q", s)
	}
	return price, nil
}

func normalizeDecimal(s string) string {
	sep := strings.LastIndexByte(s, '.')
	if c := strings.LastIndexByte(s, ','); c > sep {
		sep = c
	}
	if sep < 0 {
		return s
	}
	intPart := strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, s[:sep])
	return intPart + "." + s[sep+1:]
}
