package figure

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens-io/lifelens/dataset"
	"github.com/lifelens-io/lifelens/ensemble"
)

func testTable() *dataset.Table {
	return dataset.NewTable([]dataset.Row{
		{Country: "Germany", Year: 2000, GDPPerCapita: 40000, PovertyRate: 2.0, LifeExpectancy: 78.1, Population: 8.2e7},
		{Country: "Germany", Year: 2010, GDPPerCapita: 45000, PovertyRate: 1.5, LifeExpectancy: 80.0, Population: 8.1e7},
		{Country: "Thailand", Year: 2000, GDPPerCapita: 7000, PovertyRate: 30.0, LifeExpectancy: 70.6, Population: 6.3e7},
		{Country: "Thailand", Year: 2010, GDPPerCapita: 12000, PovertyRate: 12.0, LifeExpectancy: 73.9, Population: 6.7e7},
		{Country: "Atlantis", Year: 2010, GDPPerCapita: 9000, PovertyRate: 9.0, LifeExpectancy: 71.0, Population: 1e6},
	})
}

func TestGDPLifeExpectancyScatter(t *testing.T) {
	spec, err := GDPLifeExpectancyScatter(testTable(), 2010)
	require.NoError(t, err)

	assert.Equal(t, "scatter", spec.Type)
	assert.True(t, spec.Layout.LogX)
	require.Len(t, spec.Traces, 1)
	trace := spec.Traces[0]
	assert.Len(t, trace.X, 3)
	assert.Equal(t, trace.Size, []float64{8.1e7, 6.7e7, 1e6})
	assert.Contains(t, trace.Text, "Thailand")
}

func TestScatterUnknownYear(t *testing.T) {
	_, err := GDPLifeExpectancyScatter(testTable(), 1950)
	assert.Error(t, err)
}

func TestCountryTrends(t *testing.T) {
	spec, err := CountryTrends(testTable(), []string{"Germany", "Thailand"})
	require.NoError(t, err)

	assert.Equal(t, "line", spec.Type)
	// One life-expectancy and one GDP trace per country.
	require.Len(t, spec.Traces, 4)
	assert.Equal(t, "Germany - Life Expectancy", spec.Traces[0].Name)
	assert.Equal(t, "Germany - GDP", spec.Traces[1].Name)
	assert.Equal(t, "y2", spec.Traces[1].YAxis)

	// Years are sorted within a trace.
	assert.Equal(t, []float64{2000, 2010}, spec.Traces[0].X)
	assert.Equal(t, []float64{78.1, 80.0}, spec.Traces[0].Y)
}

func TestCountryTrendsEmptySelection(t *testing.T) {
	_, err := CountryTrends(testTable(), nil)
	assert.Error(t, err)
	_, err = CountryTrends(testTable(), []string{"Narnia"})
	assert.Error(t, err)
}

func TestWorldMap(t *testing.T) {
	spec, err := WorldMap(testTable(), 2000)
	require.NoError(t, err)

	assert.Equal(t, "choropleth", spec.Type)
	require.Len(t, spec.Traces, 1)
	assert.Equal(t, []string{"Germany", "Thailand"}, spec.Traces[0].Locations)
	assert.Equal(t, []float64{78.1, 70.6}, spec.Traces[0].Values)
	assert.Contains(t, spec.Traces[0].Text[0], "78.1 years")
}

func TestLifeExpectancyBox(t *testing.T) {
	spec, err := LifeExpectancyBox(testTable(), 2010)
	require.NoError(t, err)
	assert.Equal(t, "box", spec.Type)
	assert.Len(t, spec.Traces[0].Y, 3)
}

func TestImportanceBar(t *testing.T) {
	ranked := []ensemble.FeatureImportance{
		{Feature: "year", Score: 0.1},
		{Feature: "poverty", Score: 0.3},
		{Feature: "gdp", Score: 0.6},
	}
	spec := ImportanceBar(ranked)

	assert.Equal(t, "bar", spec.Type)
	assert.Equal(t, []string{"year", "poverty", "gdp"}, spec.Traces[0].Labels)
	assert.Equal(t, []float64{0.1, 0.3, 0.6}, spec.Traces[0].X)
}

func TestMapLayersInnerMerge(t *testing.T) {
	layers, err := MapLayers(testTable(), 2010)
	require.NoError(t, err)
	require.Len(t, layers, 3)

	// Atlantis has no coordinates and is dropped; only Germany and
	// Thailand survive the merge.
	for _, layer := range layers {
		require.Len(t, layer.Points, 2)
	}
	scatter := layers[0]
	assert.Equal(t, "scatterplot", scatter.Kind)
	assert.Equal(t, "Germany", scatter.Points[0].Country)
	assert.Equal(t, "80.0 years", scatter.Points[0].LifeExpectancy)
	assert.Equal(t, "$45000", scatter.Points[0].GDPPerCapita)
}

func TestMapLayersUnknownYear(t *testing.T) {
	_, err := MapLayers(testTable(), 1950)
	assert.Error(t, err)
}

func TestRenderScatterSVG(t *testing.T) {
	spec, err := GDPLifeExpectancyScatter(testTable(), 2010)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(spec, &buf, "svg"))
	assert.True(t, strings.Contains(buf.String(), "<svg"))
}

func TestRenderImportanceBarSVG(t *testing.T) {
	spec := ImportanceBar([]ensemble.FeatureImportance{
		{Feature: "year", Score: 0.1},
		{Feature: "gdp", Score: 0.9},
	})
	var buf bytes.Buffer
	require.NoError(t, Render(spec, &buf, "svg"))
	assert.NotZero(t, buf.Len())
}

func TestRenderUnsupportedType(t *testing.T) {
	spec, err := WorldMap(testTable(), 2000)
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, Render(spec, &buf, "svg"))
}
