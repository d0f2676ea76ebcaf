package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestParsePriceList_XLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"item_number", "uom", "description", "price", "currency"},
		{"A-100", "EA", "Widget", "12.5000", "usd"},
		{"B-200", "CS", "", "1,234.5678", ""},
	})

	rows, rowErrs, err := ParsePriceList(buf, "xlsx")
	if err != nil {
		t.Fatalf("ParsePriceList: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ItemNumber != "A-100" || rows[0].UOM != "EA" || rows[0].Currency != "USD" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[0].Price.String() != "12.5000" {
		t.Fatalf("row 0 price = %s", rows[0].Price.String())
	}
	if rows[1].Price.String() != "1234.5678" {
		t.Fatalf("thousands separator should be stripped, got %s", rows[1].Price.String())
	}
	if len(rows[1].Raw) == 0 {
		t.Fatal("raw payload should carry the source cells")
	}
}

func TestParsePriceList_CSVHeaderOrderIndependent(t *testing.T) {
	csv := strings.NewReader("price,item_number,uom\n9.9900,C-300,EA\n")

	rows, rowErrs, err := ParsePriceList(csv, "CSV")
	if err != nil {
		t.Fatalf("ParsePriceList: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 1 || rows[0].ItemNumber != "C-300" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Price.String() != "9.9900" {
		t.Fatalf("price = %s", rows[0].Price.String())
	}
}

func TestParsePriceList_RowErrorsCarryRowNumbers(t *testing.T) {
	csv := strings.NewReader(strings.Join([]string{
		"item_number,uom,price",
		"A-100,EA,1.00",
		",EA,2.00",
		"B-200,EA,not-a-price",
		"",
	}, "\n"))

	rows, rowErrs, err := ParsePriceList(csv, "csv")
	if err != nil {
		t.Fatalf("ParsePriceList: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 good row, got %d", len(rows))
	}
	if len(rowErrs) != 2 {
		t.Fatalf("expected 2 row errors, got %v", rowErrs)
	}
	if rowErrs[0].Row != 3 || !strings.Contains(rowErrs[0].Reason, "item_number") {
		t.Fatalf("first error = %+v", rowErrs[0])
	}
	if rowErrs[1].Row != 4 || !strings.Contains(rowErrs[1].Reason, "not-a-price") {
		t.Fatalf("second error = %+v", rowErrs[1])
	}
}

func TestParsePriceList_MissingHeaderFails(t *testing.T) {
	csv := strings.NewReader("sku,cost\nA,1\n")
	if _, _, err := ParsePriceList(csv, "csv"); err == nil {
		t.Fatal("missing item_number header should fail")
	}
}

func TestParsePriceList_UnsupportedType(t *testing.T) {
	_, _, err := ParsePriceList(strings.NewReader("x"), "pdf")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported file type error, got %v", err)
	}
}
