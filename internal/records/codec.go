package records

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// encodeDataset serializes the whole table as CSV with a header row in
// canonical column order.
func encodeDataset(students []Student) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(datasetColumns); err != nil {
		return nil, fmt.Errorf("could not write header: %w", err)
	}
	for i := range students {
		row := make([]string, len(datasetColumns))
		for j, column := range datasetColumns {
			value, _ := students[i].Field(column)
			row[j] = value
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("could not write row for id %d: %w", students[i].ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("could not flush dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeDataset parses a serialized table. The header drives column mapping,
// so datasets written with an older, smaller schema load fine: columns the
// header doesn't mention are backfilled as empty strings, and columns this
// build doesn't know are ignored.
func decodeDataset(data []byte) ([]Student, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // tolerate ragged legacy rows

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	students := make([]Student, 0, len(rows)-1)
	for n, row := range rows[1:] {
		var s Student
		for j, column := range header {
			if j >= len(row) {
				break
			}
			if column == "id" {
				id, err := strconv.Atoi(row[j])
				if err != nil {
					return nil, fmt.Errorf("row %d: invalid id %q", n+1, row[j])
				}
				s.ID = id
				continue
			}
			if ref := s.fieldRef(column); ref != nil {
				*ref = row[j]
			}
		}
		students = append(students, s)
	}
	return students, nil
}
