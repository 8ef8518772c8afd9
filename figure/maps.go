package figure

import (
	"fmt"

	"github.com/lifelens-io/lifelens/dataset"
	"github.com/lifelens-io/lifelens/pkg/errors"
)

// coordinate is a rough country centroid. A real deployment would merge a
// proper geocoding table; this covers the default explorer selection.
type coordinate struct {
	Lat float64
	Lon float64
}

var countryCoordinates = map[string]coordinate{
	"United States": {37.0902, -95.7129},
	"China":         {35.8617, 104.1954},
	"Germany":       {51.1657, 10.4515},
	"Russia":        {61.5240, 105.3188},
	"Thailand":      {15.8700, 100.9925},
}

// MapPoint is one positioned observation with formatted tooltip fields.
type MapPoint struct {
	Country        string  `json:"country"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	LifeExpectancy string  `json:"life_expectancy"`
	GDPPerCapita   string  `json:"gdp_per_capita"`
	PovertyRate    string  `json:"poverty_rate"`
	Elevation      float64 `json:"elevation"` // raw GDP, drives the hexagon layer
}

// MapLayer is one renderable deck layer.
type MapLayer struct {
	Name   string     `json:"name"`
	Kind   string     `json:"kind"` // scatterplot, hexagon, text
	Points []MapPoint `json:"points"`
}

// MapLayers builds the three map layers for one year: life-expectancy
// markers, GDP elevation hexagons and country labels. Countries without a
// coordinate are dropped (inner merge).
func MapLayers(t *dataset.Table, year int) ([]MapLayer, error) {
	rows := t.FilterYear(year).Rows()
	if len(rows) == 0 {
		return nil, errors.Newf("lifelens: no observations for year %d", year)
	}

	var points []MapPoint
	for _, r := range rows {
		coord, ok := countryCoordinates[r.Country]
		if !ok {
			continue
		}
		points = append(points, MapPoint{
			Country:        r.Country,
			Lat:            coord.Lat,
			Lon:            coord.Lon,
			LifeExpectancy: fmt.Sprintf("%.1f years", r.LifeExpectancy),
			GDPPerCapita:   fmt.Sprintf("$%.0f", r.GDPPerCapita),
			PovertyRate:    fmt.Sprintf("%.1f%%", r.PovertyRate),
			Elevation:      r.GDPPerCapita,
		})
	}

	return []MapLayer{
		{Name: "Life Expectancy", Kind: "scatterplot", Points: points},
		{Name: "GDP per Capita", Kind: "hexagon", Points: points},
		{Name: "Poverty Rate", Kind: "text", Points: points},
	}, nil
}
