package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Row is one parsed price-list line ready to become a contract line. Raw
// preserves the source cells keyed by header for the line's raw_payload.
type Row struct {
	ItemNumber  string
	UOM         string
	Description string
	Price       decimal.Decimal
	Currency    string
	Raw         json.RawMessage
}

// RowError reports a rejected source row. Row numbers are 1-based and include
// the header row, matching what a user sees in a spreadsheet.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

var ErrUnsupportedFileType = errors.New("unsupported price list file type")

// column headers recognized in the first row, case-insensitive
const (
	headerItemNumber  = "item_number"
	headerUOM         = "uom"
	headerDescription = "description"
	headerPrice       = "price"
	headerCurrency    = "currency"
)

// ParsePriceList parses a vendor price list into rows. xlsx files are read
// via the first sheet; csv files via encoding/csv. Columns are matched by
// header name, so column order does not matter. Rows missing item_number or
// with an unparseable price are returned as RowErrors alongside the good rows.
func ParsePriceList(r io.Reader, fileType string) ([]Row, []RowError, error) {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case "xlsx":
		return parseXLSX(r)
	case "csv":
		return parseCSV(r)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}
}

func parseXLSX(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	return parseRecords(records)
}

func parseCSV(r io.Reader) ([]Row, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read csv: %w", err)
	}
	return parseRecords(records)
}

func parseRecords(records [][]string) ([]Row, []RowError, error) {
	if len(records) == 0 {
		return nil, nil, errors.New("file is empty")
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[headerItemNumber]; !ok {
		return nil, nil, fmt.Errorf("header row is missing required column %q", headerItemNumber)
	}
	if _, ok := cols[headerPrice]; !ok {
		return nil, nil, fmt.Errorf("header row is missing required column %q", headerPrice)
	}

	cell := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []Row
	var rowErrs []RowError
	for i, record := range records[1:] {
		rowNum := i + 2

		if isBlank(record) {
			continue
		}

		itemNumber := cell(record, headerItemNumber)
		if itemNumber == "" {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: "item_number is empty"})
			continue
		}

		rawPrice := cell(record, headerPrice)
		price, err := decimal.NewFromString(strings.ReplaceAll(rawPrice, ",", ""))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: fmt.Sprintf("price %q is not a number", rawPrice)})
			continue
		}

		raw := map[string]string{}
		for name, idx := range cols {
			if idx < len(record) {
				raw[name] = strings.TrimSpace(record[idx])
			}
		}
		rawJSON, _ := json.Marshal(raw)

		rows = append(rows, Row{
			ItemNumber:  itemNumber,
			UOM:         cell(record, headerUOM),
			Description: cell(record, headerDescription),
			Price:       price,
			Currency:    strings.ToUpper(cell(record, headerCurrency)),
			Raw:         rawJSON,
		})
	}

	return rows, rowErrs, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
