package sleeve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"example.com/sleeveselector/internal/reference"
)

func newTestSelector(t *testing.T) *Selector {
	t.Helper()
	catalog, err := LoadCatalog(context.Background(), EmbeddedSource{})
	require.NoError(t, err)
	set, err := reference.LoadDefault()
	require.NoError(t, err)
	selector, err := NewSelector(catalog, set)
	require.NoError(t, err)
	return selector
}

func models(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Model)
	}
	return out
}

func TestProductDerivedDimensions(t *testing.T) {
	classic := Product{Model: "Classic", Length: 6.5, Girth: 6.0}
	require.Equal(t, 1.91, classic.Diameter())
	require.Equal(t, 5.5, classic.MaxInternalLength())

	girth := Product{Model: "Classic GIRTH", Length: 6.0, Girth: 7.25}
	require.Equal(t, 2.308, girth.Diameter())
	require.Equal(t, 5.5, girth.MaxInternalLength())
}

func TestGirthWhenWorn(t *testing.T) {
	require.Equal(t, 7.14, GirthWhenWorn(1.5, 1.125, 2.149))
	// Compressed total smaller than the sleeve: the sleeve circumference wins.
	require.Equal(t, 6.28, GirthWhenWorn(1.0, 0.9, 2.0))
}

func TestRecommendOpening(t *testing.T) {
	selector := newTestSelector(t)

	cases := []struct {
		diameter float64
		category string
		want     float64
		ok       bool
	}{
		{1.0, "Low", 0.9, true},
		{1.0, "High", 0, false},
		{2.25, " medium ", 0, false},
		{2.25, "high", 1.5, true},
		{0.875, "low", 0, false},
		{0.999, "high", 0, false},
		{0.5, "low", 0, false},
		{1.2496, "low", 0.9, true},
		{1.25, "low", 1.0, true},
		{1.3996, "high", 1.0, true},
		{1.4996, "firm", 1.125, true},
		{2.149, "medium", 1.375, true},
		{99.9, "high", 1.5, true},
		{100, "high", 0, false},
	}
	for _, tc := range cases {
		got, ok := selector.RecommendOpening(tc.diameter, tc.category)
		require.Equal(t, tc.ok, ok, "%g %s", tc.diameter, tc.category)
		require.Equal(t, tc.want, got, "%g %s", tc.diameter, tc.category)
	}
}

func TestCompatibleFiltersCatalog(t *testing.T) {
	selector := newTestSelector(t)

	matches, err := selector.Compatible(Query{Diameter: 1.5, Length: 6})
	require.NoError(t, err)
	want := []string{"Ridge", "Ridge Girth", "Summit", "Summit Girth", "Tower"}
	if diff := cmp.Diff(want, models(matches)); diff != "" {
		t.Fatalf("unexpected matches (-want +got):\n%s", diff)
	}

	ridge := matches[0]
	require.Equal(t, 2.149, ridge.SleeveDiameter)
	require.Equal(t, 6.5, ridge.InternalLength)
	require.Equal(t, 1.125, ridge.RecommendedDiameter)
	require.Equal(t, "6 x 1.125", ridge.RecommendedInternalDimensions)
	require.Equal(t, 7.14, ridge.GirthWhenWorn)
}

func TestCompatibleDropsProductsWithoutRecommendation(t *testing.T) {
	selector := newTestSelector(t)

	matches, err := selector.Compatible(Query{Diameter: 2.25, Length: 6})
	require.NoError(t, err)
	require.Equal(t, []string{"Ridge Girth", "Summit", "Summit Girth"}, models(matches))
}

func TestCompatibleAppliesWindows(t *testing.T) {
	selector := newTestSelector(t)
	maxGirth := 8.0
	minLength := 7.5

	matches, err := selector.Compatible(Query{Diameter: 1.5, Length: 6, MaxGirth: &maxGirth})
	require.NoError(t, err)
	require.Equal(t, []string{"Ridge", "Ridge Girth", "Summit"}, models(matches))

	matches, err = selector.Compatible(Query{Diameter: 1.5, Length: 6, MinLength: &minLength})
	require.NoError(t, err)
	require.Equal(t, []string{"Ridge", "Summit", "Summit Girth", "Tower"}, models(matches))
}

func TestCompatibleBelowSmallestOpening(t *testing.T) {
	selector := newTestSelector(t)

	matches, err := selector.Compatible(Query{Diameter: 0.875, Length: 6})
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestCompatibleRejectsInvalidQuery(t *testing.T) {
	selector := newTestSelector(t)

	_, err := selector.Compatible(Query{Diameter: 0, Length: 6})
	require.ErrorIs(t, err, ErrInvalidQuery)

	lo, hi := 9.0, 6.0
	_, err = selector.Compatible(Query{Diameter: 1.5, Length: 6, MinGirth: &lo, MaxGirth: &hi})
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestOptions(t *testing.T) {
	selector := newTestSelector(t)

	opts := selector.Options()
	require.Len(t, opts.Diameters, 17)
	require.Equal(t, 1.0, opts.Diameters[0])
	require.Equal(t, 1.125, opts.Diameters[1])
	require.Equal(t, 3.0, opts.Diameters[16])
	require.Len(t, opts.Lengths, 25)
	require.Equal(t, 9.0, opts.Lengths[24])
	require.Equal(t, Bounds{MinLength: 5, MaxLength: 10, MinGirth: 5.5, MaxGirth: 9}, opts.Bounds)
}

func TestNewCatalogValidation(t *testing.T) {
	_, err := NewCatalog(nil)
	require.Error(t, err)

	_, err = NewCatalog([]Product{{Model: "Broken", Length: 0, Girth: 6}})
	require.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Model":"Solo","Length":7,"Girth":7,"Girth Category":"Low"}]`), 0o600))

	catalog, err := LoadCatalog(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	require.Equal(t, 1, catalog.Len())
	require.Equal(t, "Low", catalog.Products()[0].GirthCategory)

	_, err = LoadCatalog(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
}
