package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows() []Row {
	return []Row{
		{Country: "Norway", Year: 2000, GDPPerCapita: 60000, PovertyRate: 1.2, LifeExpectancy: 78.5, Population: 4.5e6},
		{Country: "Norway", Year: 2010, GDPPerCapita: 70000, PovertyRate: 0.8, LifeExpectancy: 80.9, Population: 4.9e6},
		{Country: "India", Year: 2000, GDPPerCapita: 2500, PovertyRate: 55.0, LifeExpectancy: 62.1, Population: 1.05e9},
		{Country: "India", Year: 2010, GDPPerCapita: 4300, PovertyRate: 42.3, LifeExpectancy: 66.7, Population: 1.23e9},
		{Country: "Brazil", Year: 2010, GDPPerCapita: 14500, PovertyRate: 21.0, LifeExpectancy: 73.3, Population: 1.96e8},
	}
}

func TestFilterYear(t *testing.T) {
	tbl := NewTable(testRows())
	got := tbl.FilterYear(2010)
	assert.Equal(t, 3, got.Len())
	for _, r := range got.Rows() {
		assert.Equal(t, 2010, r.Year)
	}
	// The source table is untouched.
	assert.Equal(t, 5, tbl.Len())
}

func TestFilterCountries(t *testing.T) {
	tbl := NewTable(testRows())
	got := tbl.FilterCountries([]string{"India", "Brazil"})
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, []string{"Brazil", "India"}, got.Countries())
}

func TestFilterYearRange(t *testing.T) {
	tbl := NewTable(testRows())
	assert.Equal(t, 2, tbl.FilterYearRange(1999, 2005).Len())
	assert.Equal(t, 5, tbl.FilterYearRange(2000, 2010).Len())
	assert.Equal(t, 0, tbl.FilterYearRange(2011, 2020).Len())
}

func TestCountriesSortedUnique(t *testing.T) {
	tbl := NewTable(testRows())
	assert.Equal(t, []string{"Brazil", "India", "Norway"}, tbl.Countries())
}

func TestYearBounds(t *testing.T) {
	tbl := NewTable(testRows())
	minYear, maxYear, err := tbl.YearBounds()
	require.NoError(t, err)
	assert.Equal(t, 2000, minYear)
	assert.Equal(t, 2010, maxYear)

	_, _, err = NewTable(nil).YearBounds()
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	tbl := NewTable(testRows())
	summary, err := tbl.Summarize(2010)
	require.NoError(t, err)

	assert.Equal(t, 2010, summary.Year)
	assert.InDelta(t, (80.9+66.7+73.3)/3, summary.MeanLifeExpectancy, 1e-9)
	assert.InDelta(t, 14500, summary.MedianGDPPerCapita, 1e-9)
	assert.InDelta(t, (0.8+42.3+21.0)/3, summary.MeanPovertyRate, 1e-9)
	assert.Equal(t, 3, summary.Countries)
}

func TestSummarizeNoObservations(t *testing.T) {
	tbl := NewTable(testRows())
	_, err := tbl.Summarize(1990)
	assert.Error(t, err)
}

func TestDropMissing(t *testing.T) {
	rows := testRows()
	rows = append(rows, Row{Country: "Atlantis", Year: 2010, GDPPerCapita: math.NaN(), PovertyRate: 3, LifeExpectancy: 70, Population: 1000})
	tbl := NewTable(rows).DropMissing()
	assert.Equal(t, 5, tbl.Len())
	assert.NotContains(t, tbl.Countries(), "Atlantis")
}

func TestFeatureMatrix(t *testing.T) {
	tbl := NewTable(testRows())
	x, y, err := tbl.FeatureMatrix()
	require.NoError(t, err)

	rows, cols := x.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 5, y.Len())

	// First row: Norway 2000.
	assert.Equal(t, 60000.0, x.At(0, 0))
	assert.Equal(t, 1.2, x.At(0, 1))
	assert.Equal(t, 2000.0, x.At(0, 2))
	assert.Equal(t, 78.5, y.AtVec(0))
}

func TestFeatureMatrixEmpty(t *testing.T) {
	_, _, err := NewTable(nil).FeatureMatrix()
	assert.Error(t, err)
}
