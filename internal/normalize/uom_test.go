package normalize_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bkcnorm/internal/domain"
	"bkcnorm/internal/normalize"
)

func testUOMTable() normalize.UOMTable {
	return normalize.UOMTable{
		{Code: "KGS", Synonyms: []any{"kg", "Kgs", "kilogram", "Kilogrammes"}},
		{Code: "TNE", Synonyms: []any{"tonne", "MT", "metric ton", ""}},
		{Code: "PCE", Synonyms: []any{"piece(s)", "pieces", "pcs", 42, nil}},
		{Code: "PKG", Synonyms: []any{"package", "pcs"}},
	}
}

func TestUOMCanonicalizer_RoundTrip(t *testing.T) {
	table := testUOMTable()
	c, err := normalize.NewUOMCanonicalizer(table)
	require.NoError(t, err)

	for _, entry := range table {
		for _, syn := range entry.Synonyms {
			s, ok := syn.(string)
			if !ok || s == "" {
				continue
			}
			if entry.Code == "PKG" && s == "pcs" {
				continue // claimed by PCE first
			}
			assert.Equal(t, entry.Code, c.Canonicalize(s), "synonym %q", s)
		}
	}
}

func TestUOMCanonicalizer_CaseAndSpacing(t *testing.T) {
	c, err := normalize.NewUOMCanonicalizer(testUOMTable())
	require.NoError(t, err)

	assert.Equal(t, "PCE", c.Canonicalize("Piece(s)"))
	assert.Equal(t, "PCE", c.Canonicalize("  PIECES "))
	assert.Equal(t, "TNE", c.Canonicalize("Metric   Ton"))
	assert.Equal(t, "KGS", c.Canonicalize("kilogrammés"))
}

func TestUOMCanonicalizer_UnknownPassesThrough(t *testing.T) {
	c, err := normalize.NewUOMCanonicalizer(testUOMTable())
	require.NoError(t, err)

	assert.Equal(t, "Drums", c.Canonicalize("Drums"))
	assert.Equal(t, "", c.Canonicalize(""))
	assert.Equal(t, "42", c.Canonicalize("42"))

	_, ok := c.Lookup("Drums")
	assert.False(t, ok)
}

func TestUOMCanonicalizer_FirstCodeWins(t *testing.T) {
	c, err := normalize.NewUOMCanonicalizer(testUOMTable())
	require.NoError(t, err)
	assert.Equal(t, "PCE", c.Canonicalize("pcs"))
}

func TestUOMCanonicalizer_SkipsEmptyAndNonString(t *testing.T) {
	c, err := normalize.NewUOMCanonicalizer(testUOMTable())
	require.NoError(t, err)
	// 4 KGS + 3 TNE + 3 PCE + 1 PKG
	assert.Equal(t, 11, c.Len())
}

func TestUOMCanonicalizer_EmptyTable(t *testing.T) {
	_, err := normalize.NewUOMCanonicalizer(nil)
	assert.ErrorIs(t, err, domain.ErrMissingUOMTable)

	_, err = normalize.NewUOMCanonicalizer(normalize.UOMTable{{Code: "KGS", Synonyms: []any{1, ""}}})
	assert.ErrorIs(t, err, domain.ErrMissingUOMTable)
}

func TestUOMCanonicalizer_ConcurrentReads(t *testing.T) {
	c, err := normalize.NewUOMCanonicalizer(testUOMTable())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "KGS", c.Canonicalize("KG"))
			}
		}()
	}
	wg.Wait()
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "piece(s)", normalize.FoldKey(" Piece(s) "))
	assert.Equal(t, "nhava sheva", normalize.FoldKey("NHAVA\tSHEVA"))
	assert.Equal(t, "sao paulo", normalize.FoldKey("São Paulo"))
	assert.Equal(t, "", normalize.FoldKey("   "))
}
