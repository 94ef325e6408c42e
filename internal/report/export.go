// Package report builds the stock workbook and transaction CSV exports,
// parses transaction uploads and aggregates the dashboard.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Benediks/Sidaya/internal/audit"
	"github.com/Benediks/Sidaya/internal/logger"
	"github.com/Benediks/Sidaya/internal/metrics"
	"github.com/Benediks/Sidaya/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"

	SheetStock = "Data Stok"
	SheetMenu  = "Data Menu"
)

// TransactionHeaders is shared by the CSV export and the upload parser so
// an export can be uploaded back unchanged.
var TransactionHeaders = []string{"ID_Transaksi", "Tanggal", "Nama_Menu", "Jumlah", "Harga_Satuan", "Total", "Catatan"}

// Export is a finished file ready to be sent.
type Export struct {
	FileName    string
	ContentType string
	Records     int
	Body        []byte
}

type Exporter struct {
	db     *gorm.DB
	sink   audit.Sink
	logger *zap.Logger
	now    func() time.Time
}

func NewExporter(db *gorm.DB, sink audit.Sink, log *zap.Logger) *Exporter {
	return &Exporter{
		db:     db,
		sink:   sink,
		logger: logger.Named(log, "report"),
		now:    time.Now,
	}
}

// StockWorkbook builds the two-sheet stock and menu workbook. One EXPORT
// entry is recorded whatever the outcome.
func (e *Exporter) StockWorkbook(ctx context.Context, actor audit.Actor) (*Export, error) {
	fileName := fmt.Sprintf("Sidaya_DataStok_%s.xlsx", e.now().Format("2006-01-02"))

	body, records, err := e.buildStockWorkbook(ctx)
	e.finish(ctx, actor, "stock_xlsx", fileName, records, err)
	if err != nil {
		return nil, err
	}
	return &Export{FileName: fileName, ContentType: ContentTypeXLSX, Records: records, Body: body}, nil
}

func (e *Exporter) buildStockWorkbook(ctx context.Context) ([]byte, int, error) {
	db := e.db.WithContext(ctx)

	var stocks []models.StockItem
	if err := db.Order("id").Find(&stocks).Error; err != nil {
		return nil, 0, fmt.Errorf("load stock: %w", err)
	}
	var menus []models.MenuItem
	if err := db.Order("id").Find(&menus).Error; err != nil {
		return nil, 0, fmt.Errorf("load menus: %w", err)
	}
	ingredients, err := ingredientSummaries(db)
	if err != nil {
		return nil, 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetStock); err != nil {
		return nil, 0, fmt.Errorf("name stock sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetMenu); err != nil {
		return nil, 0, fmt.Errorf("create menu sheet: %w", err)
	}

	stockRows := make([][]interface{}, 0, len(stocks)+1)
	stockRows = append(stockRows, []interface{}{"ID_Stok", "Nama_Stok", "Kategori_Stok", "Jumlah", "Satuan", "Harga_Beli", "Tanggal_Masuk", "Tanggal_Update"})
	for _, s := range stocks {
		stockRows = append(stockRows, []interface{}{
			s.ID, s.Name, s.Category, s.Quantity, s.Unit, s.UnitCost,
			s.CreatedAt.Format("2006-01-02"), s.UpdatedAt.Format("2006-01-02"),
		})
	}
	if err := writeRows(f, SheetStock, stockRows); err != nil {
		return nil, 0, err
	}

	menuRows := make([][]interface{}, 0, len(menus)+1)
	menuRows = append(menuRows, []interface{}{"ID_Menu", "Nama_Menu", "Kategori_Menu", "Jumlah_Stok", "Harga", "Bahan_Dibutuhkan"})
	for _, m := range menus {
		bahan := ingredients[m.ID]
		if bahan == "" {
			bahan = "-"
		}
		menuRows = append(menuRows, []interface{}{m.ID, m.Name, m.Category, m.Available, m.Price, bahan})
	}
	if err := writeRows(f, SheetMenu, menuRows); err != nil {
		return nil, 0, err
	}

	_ = f.SetColWidth(SheetStock, "A", "A", 42)
	_ = f.SetColWidth(SheetStock, "B", "C", 20)
	_ = f.SetColWidth(SheetMenu, "A", "A", 42)
	_ = f.SetColWidth(SheetMenu, "B", "B", 24)
	_ = f.SetColWidth(SheetMenu, "F", "F", 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), len(stocks) + len(menus), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// ingredientSummaries renders each menu's recipe as "Gula (2 gr), Kopi (1 gr)".
func ingredientSummaries(db *gorm.DB) (map[string]string, error) {
	var rows []struct {
		MenuID      string
		StockName   string
		RequiredQty float64
		Unit        string
	}
	err := db.Table("recipe_links").
		Select("recipe_links.menu_id, stock_items.name AS stock_name, recipe_links.required_qty, stock_items.unit").
		Joins("JOIN stock_items ON stock_items.id = recipe_links.stock_id").
		Order("recipe_links.menu_id, stock_items.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}

	parts := make(map[string][]string)
	for _, r := range rows {
		qty := strconv.FormatFloat(r.RequiredQty, 'f', -1, 64)
		parts[r.MenuID] = append(parts[r.MenuID], fmt.Sprintf("%s (%s %s)", r.StockName, qty, r.Unit))
	}
	out := make(map[string]string, len(parts))
	for id, p := range parts {
		out[id] = strings.Join(p, ", ")
	}
	return out, nil
}

// TransactionsCSV exports sales between from and to (inclusive days; zero
// values leave that side open) with the upload headers.
func (e *Exporter) TransactionsCSV(ctx context.Context, actor audit.Actor, from, to time.Time) (*Export, error) {
	fileName := fmt.Sprintf("Sidaya_Transaksi_%s.csv", e.now().Format("2006-01-02"))

	body, records, err := e.buildTransactionsCSV(ctx, from, to)
	e.finish(ctx, actor, "transactions_csv", fileName, records, err)
	if err != nil {
		return nil, err
	}
	return &Export{FileName: fileName, ContentType: ContentTypeCSV, Records: records, Body: body}, nil
}

func (e *Exporter) buildTransactionsCSV(ctx context.Context, from, to time.Time) ([]byte, int, error) {
	var rows []struct {
		ID        string
		Date      time.Time
		MenuName  string
		Quantity  int64
		UnitPrice int64
		Total     int64
		Note      string
	}
	q := e.db.WithContext(ctx).Table("transactions").
		Select("transactions.id, transactions.date, COALESCE(menu_items.name, transactions.menu_id) AS menu_name, " +
			"transactions.quantity, transactions.unit_price, transactions.total, transactions.note").
		Joins("LEFT JOIN menu_items ON menu_items.id = transactions.menu_id")
	if !from.IsZero() {
		q = q.Where("transactions.date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("transactions.date < ?", to.AddDate(0, 0, 1))
	}
	if err := q.Order("transactions.date, transactions.id").Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("load transactions: %w", err)
	}

	var buf bytes.Buffer
	// UTF-8 BOM so spreadsheet apps pick the right encoding
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	_ = w.Write(TransactionHeaders)
	for _, r := range rows {
		_ = w.Write([]string{
			r.ID,
			r.Date.Format("2006-01-02"),
			r.MenuName,
			strconv.FormatInt(r.Quantity, 10),
			strconv.FormatInt(r.UnitPrice, 10),
			strconv.FormatInt(r.Total, 10),
			r.Note,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), len(rows), nil
}

func (e *Exporter) finish(ctx context.Context, actor audit.Actor, kind, fileName string, records int, err error) {
	entry := audit.Entry{
		Actor:     actor,
		Type:      audit.ActivityExport,
		Status:    audit.StatusSuccess,
		FileName:  fileName,
		Processed: records,
		Succeeded: records,
	}
	if err != nil {
		entry.Status = audit.StatusFailed
		entry.Succeeded = 0
		entry.ErrorDetail = err.Error()
		e.logger.Error("export failed", zap.String("kind", kind), zap.Error(err))
	} else {
		e.logger.Info("export built", zap.String("kind", kind), zap.String("file", fileName), zap.Int("records", records))
	}
	metrics.Exports.WithLabelValues(kind, entry.Status).Inc()

	if e.sink == nil {
		return
	}
	if rerr := e.sink.Record(ctx, entry); rerr != nil {
		e.logger.Warn("audit record failed", zap.String("file", fileName), zap.Error(rerr))
	}
}
