package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

// readTable loads one yearly source table into a string-typed frame.
// The format follows the file extension: .csv or .xlsx.
func readTable(path string) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVTable(path)
	case ".xlsx":
		return readExcelTable(path)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("unsupported source format %q", filepath.Ext(path))
	}
}

// readCSVTable parses a CSV with a header row. Every column stays a
// string series; AQI cells are parsed during the melt so empty and
// malformed cells can be told apart.
func readCSVTable(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parsing CSV: %w", df.Err)
	}
	return df, nil
}

// readExcelTable reads the first sheet of an XLSX workbook. The first row
// is the header. Short rows are padded and fully empty rows skipped, so
// sheets with ragged or trailing blank rows still line up.
func readExcelTable(path string) (dataframe.DataFrame, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("opening workbook: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return dataframe.DataFrame{}, errors.New("workbook has no sheets")
	}

	sheet := wb.Sheets[0]
	if len(sheet.Rows) == 0 {
		return dataframe.DataFrame{}, errors.New("sheet has no header row")
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, cell.Value)
	}
	if len(headers) == 0 {
		return dataframe.DataFrame{}, errors.New("sheet has an empty header row")
	}

	columns := make([][]string, len(headers))
	for _, row := range sheet.Rows[1:] {
		if rowEmpty(row) {
			continue
		}
		for i := range headers {
			v := ""
			if i < len(row.Cells) {
				v = row.Cells[i].Value
			}
			columns[i] = append(columns[i], v)
		}
	}

	cols := make([]series.Series, len(headers))
	for i, name := range headers {
		cols[i] = series.New(columns[i], series.String, name)
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("assembling frame: %w", df.Err)
	}
	return df, nil
}

func rowEmpty(row *xlsx.Row) bool {
	for _, cell := range row.Cells {
		if strings.TrimSpace(cell.Value) != "" {
			return false
		}
	}
	return true
}
