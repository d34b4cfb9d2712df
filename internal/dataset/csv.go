package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ParseCSV reads delimited text with a header row into a Dataset.
// Cells are type-inferred per inferCell.
func ParseCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv: no data")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	d := &Dataset{Columns: header, Rows: [][]any{}}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = inferCell(cell)
		}
		d.Rows = append(d.Rows, row)
	}
	return d, nil
}
