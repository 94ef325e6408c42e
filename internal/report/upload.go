package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Benediks/Sidaya/internal/inventory"

	"github.com/xuri/excelize/v2"
)

// ErrUnreadableFile is returned when the upload is not a readable workbook.
var ErrUnreadableFile = errors.New("file is not a readable xlsx workbook")

// ParseTransactions reads the first sheet of an xlsx upload. The first row
// is the header; columns are matched to TransactionHeaders ignoring case
// and surrounding spaces, unknown columns are ignored and blank rows
// skipped. Cell values are kept as found so the ingestion engine decides
// what is missing.
func ParseTransactions(r io.Reader) ([]inventory.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, header string) string {
		i, ok := col[strings.ToLower(header)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]inventory.Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		if blank(raw) {
			continue
		}
		out = append(out, inventory.Row{
			TransactionID: cell(raw, "ID_Transaksi"),
			Date:          normalizeDate(cell(raw, "Tanggal")),
			MenuName:      cell(raw, "Nama_Menu"),
			Quantity:      parseWhole(cell(raw, "Jumlah")),
			UnitPrice:     parseOptional(cell(raw, "Harga_Satuan")),
			Total:         parseOptional(cell(raw, "Total")),
			Note:          cell(raw, "Catatan"),
		})
	}
	return out, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeDate turns an Excel date serial into YYYY-MM-DD and leaves
// anything else for the engine to parse.
func normalizeDate(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial <= 0 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format("2006-01-02")
}

// parseWhole returns 0 for anything that is not a whole number, which the
// engine rejects as a missing quantity.
func parseWhole(v string) int64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0
	}
	return int64(f)
}

func parseOptional(v string) *int64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil
	}
	n := int64(math.Round(f))
	return &n
}
