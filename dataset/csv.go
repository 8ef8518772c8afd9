package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// ReadCSV parses the global development table from r. The header must contain
// every column in RequiredColumns; extra columns are ignored. Blank or
// non-numeric cells parse as NaN so that DropMissing can remove them.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read CSV header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.NewMissingColumnError("ReadCSV", col)
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read CSV record")
		}
		year, err := strconv.Atoi(record[index[ColYear]])
		if err != nil {
			// Non-integer years make the row unusable for every consumer.
			continue
		}
		rows = append(rows, Row{
			Country:        record[index[ColCountry]],
			Year:           year,
			GDPPerCapita:   parseFloat(record[index[ColGDPPerCapita]]),
			PovertyRate:    parseFloat(record[index[ColPovertyRate]]),
			LifeExpectancy: parseFloat(record[index[ColLifeExpectancy]]),
			Population:     parseFloat(record[index[ColPopulation]]),
		})
	}
	return NewTable(rows), nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// WriteCSV writes the table in the source schema, for the explorer download.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(RequiredColumns); err != nil {
		return errors.Wrap(err, "write CSV header")
	}
	for _, r := range t.rows {
		record := []string{
			r.Country,
			strconv.Itoa(r.Year),
			formatFloat(r.GDPPerCapita),
			formatFloat(r.PovertyRate),
			formatFloat(r.LifeExpectancy),
			formatFloat(r.Population),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "write CSV record")
		}
	}
	writer.Flush()
	return errors.WithStack(writer.Error())
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// PreviewResult is the header and leading records of an arbitrary CSV, for
// the one-off dataset viewer. No schema is assumed.
type PreviewResult struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total_rows"`
}

// Preview reads up to n records from an arbitrary CSV. The remainder is
// consumed to report the total row count.
func Preview(r io.Reader, n int) (*PreviewResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read CSV header")
	}
	result := &PreviewResult{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read CSV record")
		}
		result.Total++
		if len(result.Rows) < n {
			result.Rows = append(result.Rows, record)
		}
	}
	return result, nil
}
