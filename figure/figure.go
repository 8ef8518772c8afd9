// Package figure builds renderable chart specifications from the development
// table. Builders are pure: they filter the table and return a Spec that the
// dashboard serializes as JSON or renders server-side via gonum/plot.
package figure

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/lifelens-io/lifelens/dataset"
	"github.com/lifelens-io/lifelens/ensemble"
	"github.com/lifelens-io/lifelens/pkg/errors"
)

// Spec is a figure specification: typed traces plus layout hints.
type Spec struct {
	Type   string  `json:"type"` // scatter, line, choropleth, box, bar
	Title  string  `json:"title"`
	Traces []Trace `json:"traces"`
	Layout Layout  `json:"layout"`
}

// Trace is one series of a figure. Only the fields meaningful for the
// figure's type are populated.
type Trace struct {
	Name      string    `json:"name,omitempty"`
	X         []float64 `json:"x,omitempty"`
	Y         []float64 `json:"y,omitempty"`
	Labels    []string  `json:"labels,omitempty"`    // categorical x values or map locations
	Text      []string  `json:"text,omitempty"`      // hover text per point
	Size      []float64 `json:"size,omitempty"`      // marker sizes (population)
	Color     []float64 `json:"color,omitempty"`     // marker color values
	YAxis     string    `json:"yaxis,omitempty"`     // "y2" for the secondary axis
	Locations []string  `json:"locations,omitempty"` // choropleth country names
	Values    []float64 `json:"values,omitempty"`    // choropleth values
}

// Layout carries the axis configuration shared by all traces.
type Layout struct {
	XTitle  string `json:"x_title,omitempty"`
	YTitle  string `json:"y_title,omitempty"`
	Y2Title string `json:"y2_title,omitempty"`
	LogX    bool   `json:"log_x,omitempty"`
}

// GDPLifeExpectancyScatter relates GDP per capita (log scale) to life
// expectancy for one year, with population-sized, poverty-colored markers.
func GDPLifeExpectancyScatter(t *dataset.Table, year int) (*Spec, error) {
	rows := t.FilterYear(year).Rows()
	if len(rows) == 0 {
		return nil, errors.Newf("lifelens: no observations for year %d", year)
	}
	trace := Trace{
		X:     lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.GDPPerCapita }),
		Y:     lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.LifeExpectancy }),
		Size:  lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.Population }),
		Color: lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.PovertyRate }),
		Text:  lo.Map(rows, func(r dataset.Row, _ int) string { return r.Country }),
	}
	return &Spec{
		Type:   "scatter",
		Title:  fmt.Sprintf("Relationship between GDP per Capita and Life Expectancy (%d)", year),
		Traces: []Trace{trace},
		Layout: Layout{
			XTitle: "GDP per Capita (USD, log scale)",
			YTitle: "Life Expectancy (years)",
			LogX:   true,
		},
	}, nil
}

// GDPPovertyScatter relates GDP per capita (log scale) to the poverty rate
// for one year, colored by life expectancy.
func GDPPovertyScatter(t *dataset.Table, year int) (*Spec, error) {
	rows := t.FilterYear(year).Rows()
	if len(rows) == 0 {
		return nil, errors.Newf("lifelens: no observations for year %d", year)
	}
	trace := Trace{
		X:     lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.GDPPerCapita }),
		Y:     lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.PovertyRate }),
		Size:  lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.Population }),
		Color: lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.LifeExpectancy }),
		Text:  lo.Map(rows, func(r dataset.Row, _ int) string { return r.Country }),
	}
	return &Spec{
		Type:   "scatter",
		Title:  fmt.Sprintf("Relationship between GDP and Poverty Rate (%d)", year),
		Traces: []Trace{trace},
		Layout: Layout{
			XTitle: "GDP per Capita (USD, log scale)",
			YTitle: "Poverty Rate (%)",
			LogX:   true,
		},
	}, nil
}

// CountryTrends plots life expectancy over time per country, with GDP per
// capita on a secondary axis.
func CountryTrends(t *dataset.Table, countries []string) (*Spec, error) {
	if len(countries) == 0 {
		return nil, errors.New("lifelens: no countries selected")
	}
	selected := t.FilterCountries(countries)
	if selected.Len() == 0 {
		return nil, errors.Newf("lifelens: no observations for countries %v", countries)
	}

	var traces []Trace
	for _, country := range selected.Countries() {
		rows := append([]dataset.Row(nil), selected.FilterCountries([]string{country}).Rows()...)
		sort.Slice(rows, func(a, b int) bool { return rows[a].Year < rows[b].Year })

		years := lo.Map(rows, func(r dataset.Row, _ int) float64 { return float64(r.Year) })
		traces = append(traces, Trace{
			Name: country + " - Life Expectancy",
			X:    years,
			Y:    lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.LifeExpectancy }),
		})
		traces = append(traces, Trace{
			Name:  country + " - GDP",
			X:     years,
			Y:     lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.GDPPerCapita }),
			YAxis: "y2",
		})
	}
	return &Spec{
		Type:   "line",
		Title:  "Life Expectancy and GDP Trends by Country",
		Traces: traces,
		Layout: Layout{
			XTitle:  "Year",
			YTitle:  "Life Expectancy (years)",
			Y2Title: "GDP per Capita (USD)",
		},
	}, nil
}

// WorldMap is a choropleth of life expectancy by country name for one year.
func WorldMap(t *dataset.Table, year int) (*Spec, error) {
	rows := t.FilterYear(year).Rows()
	if len(rows) == 0 {
		return nil, errors.Newf("lifelens: no observations for year %d", year)
	}
	trace := Trace{
		Locations: lo.Map(rows, func(r dataset.Row, _ int) string { return r.Country }),
		Values:    lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.LifeExpectancy }),
		Text: lo.Map(rows, func(r dataset.Row, _ int) string {
			return fmt.Sprintf("%s: %.1f years, $%.0f, %.1f%%",
				r.Country, r.LifeExpectancy, r.GDPPerCapita, r.PovertyRate)
		}),
	}
	return &Spec{
		Type:   "choropleth",
		Title:  fmt.Sprintf("World Life Expectancy Map (%d)", year),
		Traces: []Trace{trace},
	}, nil
}

// LifeExpectancyBox is a box plot of life expectancy by country for one year.
func LifeExpectancyBox(t *dataset.Table, year int) (*Spec, error) {
	rows := t.FilterYear(year).Rows()
	if len(rows) == 0 {
		return nil, errors.Newf("lifelens: no observations for year %d", year)
	}
	trace := Trace{
		Labels: lo.Map(rows, func(r dataset.Row, _ int) string { return r.Country }),
		Y:      lo.Map(rows, func(r dataset.Row, _ int) float64 { return r.LifeExpectancy }),
	}
	return &Spec{
		Type:   "box",
		Title:  fmt.Sprintf("Life Expectancy Distribution by Country (%d)", year),
		Traces: []Trace{trace},
		Layout: Layout{XTitle: "Country", YTitle: "Life Expectancy (years)"},
	}, nil
}

// ImportanceBar is the horizontal feature-importance bar chart. The ranked
// slice is already ascending, so the most important feature renders on top.
func ImportanceBar(ranked []ensemble.FeatureImportance) *Spec {
	trace := Trace{
		Labels: lo.Map(ranked, func(fi ensemble.FeatureImportance, _ int) string { return fi.Feature }),
		X:      lo.Map(ranked, func(fi ensemble.FeatureImportance, _ int) float64 { return fi.Score }),
	}
	return &Spec{
		Type:   "bar",
		Title:  "Feature Importance for Life Expectancy Prediction",
		Traces: []Trace{trace},
		Layout: Layout{XTitle: "Relative Importance"},
	}
}
