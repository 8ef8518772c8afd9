// Package dataset provides the global development training table: CSV
// loading, filtering and aggregation for the dashboard, and feature-range
// extraction for the prediction service.
package dataset

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// Column names exactly as they appear in the source CSV. The prediction
// service depends on this naming; a missing column is a TrainingError.
const (
	ColCountry        = "country"
	ColYear           = "year"
	ColGDPPerCapita   = "GDP per capita"
	ColPovertyRate    = "headcount_ratio_upper_mid_income_povline"
	ColLifeExpectancy = "Life Expectancy (IHME)"
	ColPopulation     = "Population"
)

// FeatureColumns is the model's input feature order: GDP per capita, poverty
// rate, year.
var FeatureColumns = []string{ColGDPPerCapita, ColPovertyRate, ColYear}

// TargetColumn is the regression target.
const TargetColumn = ColLifeExpectancy

// RequiredColumns lists every column the table must provide.
var RequiredColumns = []string{
	ColCountry, ColYear, ColGDPPerCapita, ColPovertyRate, ColLifeExpectancy, ColPopulation,
}

// Row is one (country, year) observation. Uniqueness of the pair is assumed,
// not enforced.
type Row struct {
	Country        string  `json:"country"`
	Year           int     `json:"year"`
	GDPPerCapita   float64 `json:"gdp_per_capita"`
	PovertyRate    float64 `json:"poverty_rate"`
	LifeExpectancy float64 `json:"life_expectancy"`
	Population     float64 `json:"population"`
}

// Table is an immutable collection of rows. All filter operations return a
// new Table sharing no state with the receiver.
type Table struct {
	rows []Row
}

// NewTable creates a table from rows.
func NewTable(rows []Row) *Table {
	return &Table{rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the underlying rows. Callers must not modify the result.
func (t *Table) Rows() []Row {
	return t.rows
}

// FilterYear returns the rows observed in the given year.
func (t *Table) FilterYear(year int) *Table {
	return NewTable(lo.Filter(t.rows, func(r Row, _ int) bool {
		return r.Year == year
	}))
}

// FilterCountries returns the rows for the given countries.
func (t *Table) FilterCountries(countries []string) *Table {
	wanted := lo.SliceToMap(countries, func(c string) (string, struct{}) {
		return c, struct{}{}
	})
	return NewTable(lo.Filter(t.rows, func(r Row, _ int) bool {
		_, ok := wanted[r.Country]
		return ok
	}))
}

// FilterYearRange returns the rows with from <= year <= to.
func (t *Table) FilterYearRange(from, to int) *Table {
	return NewTable(lo.Filter(t.rows, func(r Row, _ int) bool {
		return r.Year >= from && r.Year <= to
	}))
}

// DropMissing returns the rows whose numeric fields are all present.
func (t *Table) DropMissing() *Table {
	return NewTable(lo.Filter(t.rows, func(r Row, _ int) bool {
		return !math.IsNaN(r.GDPPerCapita) && !math.IsNaN(r.PovertyRate) &&
			!math.IsNaN(r.LifeExpectancy) && !math.IsNaN(r.Population)
	}))
}

// Countries returns the sorted unique country names.
func (t *Table) Countries() []string {
	countries := lo.Uniq(lo.Map(t.rows, func(r Row, _ int) string {
		return r.Country
	}))
	sort.Strings(countries)
	return countries
}

// YearBounds returns the minimum and maximum observed year.
func (t *Table) YearBounds() (minYear, maxYear int, err error) {
	if len(t.rows) == 0 {
		return 0, 0, errors.NewTrainingError("Table.YearBounds", "empty table")
	}
	minYear, maxYear = t.rows[0].Year, t.rows[0].Year
	for _, r := range t.rows[1:] {
		if r.Year < minYear {
			minYear = r.Year
		}
		if r.Year > maxYear {
			maxYear = r.Year
		}
	}
	return minYear, maxYear, nil
}

// Summary holds the dashboard overview metrics for one year.
type Summary struct {
	Year               int     `json:"year"`
	MeanLifeExpectancy float64 `json:"mean_life_expectancy"`
	MedianGDPPerCapita float64 `json:"median_gdp_per_capita"`
	MeanPovertyRate    float64 `json:"mean_poverty_rate"`
	Countries          int     `json:"countries"`
}

// Summarize computes the overview metrics for the given year: mean life
// expectancy, median GDP per capita, mean poverty rate and the number of
// countries observed.
func (t *Table) Summarize(year int) (Summary, error) {
	yearRows := t.FilterYear(year)
	if yearRows.Len() == 0 {
		return Summary{}, errors.Newf("lifelens: no observations for year %d", year)
	}

	lifeExp := lo.Map(yearRows.rows, func(r Row, _ int) float64 { return r.LifeExpectancy })
	gdp := lo.Map(yearRows.rows, func(r Row, _ int) float64 { return r.GDPPerCapita })
	poverty := lo.Map(yearRows.rows, func(r Row, _ int) float64 { return r.PovertyRate })
	sort.Float64s(gdp)

	return Summary{
		Year:               year,
		MeanLifeExpectancy: stat.Mean(lifeExp, nil),
		MedianGDPPerCapita: stat.Quantile(0.5, stat.Empirical, gdp, nil),
		MeanPovertyRate:    stat.Mean(poverty, nil),
		Countries:          len(yearRows.Countries()),
	}, nil
}

// FeatureMatrix returns the model inputs X (one row per observation, columns
// in FeatureColumns order) and the target vector y.
func (t *Table) FeatureMatrix() (*mat.Dense, *mat.VecDense, error) {
	if len(t.rows) == 0 {
		return nil, nil, errors.NewTrainingError("Table.FeatureMatrix", "empty table")
	}
	x := mat.NewDense(len(t.rows), len(FeatureColumns), nil)
	y := mat.NewVecDense(len(t.rows), nil)
	for i, r := range t.rows {
		x.Set(i, 0, r.GDPPerCapita)
		x.Set(i, 1, r.PovertyRate)
		x.Set(i, 2, float64(r.Year))
		y.SetVec(i, r.LifeExpectancy)
	}
	return x, y, nil
}

// featureValue resolves a feature column to its value in a row.
func featureValue(r Row, column string) (float64, bool) {
	switch column {
	case ColYear:
		return float64(r.Year), true
	case ColGDPPerCapita:
		return r.GDPPerCapita, true
	case ColPovertyRate:
		return r.PovertyRate, true
	case ColLifeExpectancy:
		return r.LifeExpectancy, true
	case ColPopulation:
		return r.Population, true
	default:
		return 0, false
	}
}
