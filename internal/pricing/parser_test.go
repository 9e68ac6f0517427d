package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEntries_LastOccurrenceWins(t *testing.T) {
	entries, parseErrors := ParseEntries("A1\t100\nA2\t200.50\nA1\t150")

	assert.Empty(t, parseErrors)
	assert.Equal(t, []Entry{
		{Code: "A1", Price: 150},
		{Code: "A2", Price: 200.50},
	}, entries)
}

func TestParseEntries_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "\n", "\n\n  \n\r\n"} {
		entries, parseErrors := ParseEntries(text)
		assert.Empty(t, entries)
		assert.Empty(t, parseErrors)
	}
}

func TestParseEntries_SkipsBlankLinesAndTrimsCodes(t *testing.T) {
	entries, parseErrors := ParseEntries("  A1 \t10\n\n\nB2\t20\r\n")

	assert.Empty(t, parseErrors)
	assert.Equal(t, []Entry{
		{Code: "A1", Price: 10},
		{Code: "B2", Price: 20},
	}, entries)
}

func TestParseEntries_AccumulatesMalformedLines(t *testing.T) {
	entries, parseErrors := ParseEntries("A1\t10\nno-tab-here\nB2\tabc\n\t30\nC3\t12,5")

	assert.Equal(t, []Entry{
		{Code: "A1", Price: 10},
		{Code: "C3", Price: 12.5},
	}, entries)
	assert.Len(t, parseErrors, 3)
	assert.Contains(t, parseErrors[0], "line 2")
	assert.Contains(t, parseErrors[0], "missing tab")
	assert.Contains(t, parseErrors[1], "line 3")
	assert.Contains(t, parseErrors[1], "invalid price")
	assert.Contains(t, parseErrors[2], "line 4")
	assert.Contains(t, parseErrors[2], "empty code")
}

func TestParseEntries_DedupKeepsFirstInsertionOrder(t *testing.T) {
	entries, _ := ParseEntries("B\t1\nA\t2\nB\t3\nC\t4\nA\t5")

	assert.Equal(t, []Entry{
		{Code: "B", Price: 3},
		{Code: "A", Price: 5},
		{Code: "C", Price: 4},
	}, entries)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{name: "plain integer", in: "100", want: 100},
		{name: "dot decimal", in: "200.50", want: 200.50},
		{name: "comma decimal", in: "12,5", want: 12.5},
		{name: "thousands dot with comma decimal", in: "1.234,56", want: 1234.56},
		{name: "thousands comma with dot decimal", in: "1,234.56", want: 1234.56},
		{name: "multiple grouping separators", in: "1.234.567,89", want: 1234567.89},
		{name: "surrounding whitespace", in: " 99,90 ", want: 99.90},
		{name: "not a number", in: "abc", wantErr: true},
		{name: "empty", in: "   ", wantErr: true},
		{name: "infinity rejected", in: "Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
