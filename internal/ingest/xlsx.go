package ingest

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of an XLSX workbook into a header row and
// data rows.
func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	var headers []string
	var data [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		if headers == nil {
			headers = record
			continue
		}
		data = append(data, record)
	}

	if err := rows.Error(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}

	if headers == nil {
		return nil, nil, fmt.Errorf("xlsx file %s is empty", path)
	}

	return headers, data, nil
}

// readCSV reads a CSV file into a header row and data rows.
func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open csv file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv file %s is empty", path)
	}

	return records[0], records[1:], nil
}
