package dataset

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ParseExcel reads the first sheet of a spreadsheet into a Dataset,
// treating the first row as the header. Short rows are padded with
// empty cells so the aligned-row-count invariant holds.
func ParseExcel(b []byte) (*Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("excel: open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel: no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("excel: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("excel: no data")
	}

	d := &Dataset{Columns: rows[0], Rows: make([][]any, 0, len(rows)-1)}
	for _, record := range rows[1:] {
		row := make([]any, len(d.Columns))
		for i := range d.Columns {
			if i < len(record) {
				row[i] = inferCell(record[i])
			} else {
				row[i] = ""
			}
		}
		d.Rows = append(d.Rows, row)
	}
	return d, nil
}
