package mast

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"specfetch/internal/services"
)

// headerRows counts the column name and column type lines that open every
// CSV result.
const headerRows = 2

// parseRows returns the data rows of a CSV search result.
func parseRows(text string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for line := 0; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrMalformed, "mast", "parse csv", "", err)
		}
		if line < headerRows {
			continue
		}
		rows = append(rows, record)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}
