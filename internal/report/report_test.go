package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Benediks/Sidaya/internal/audit"
	"github.com/Benediks/Sidaya/internal/database/dbtest"
	"github.com/Benediks/Sidaya/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memSink struct {
	entries []audit.Entry
}

func (m *memSink) Record(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]models.StockItem{
		{ID: "S1", Name: "Kopi", Category: "Bahan", Quantity: 10, Unit: "gr", UnitCost: 100},
		{ID: "S2", Name: "Gula", Category: "Bahan", Quantity: 4, Unit: "gr", UnitCost: 50},
	}).Error)
	require.NoError(t, db.Create(&[]models.MenuItem{
		{ID: "M1", Name: "Kopi Manis", Category: "beverage", Price: 15000, Available: 2},
		{ID: "M2", Name: "Air Putih", Category: "beverage", Price: 0},
	}).Error)
	require.NoError(t, db.Create(&[]models.RecipeLink{
		{MenuID: "M1", StockID: "S1", RequiredQty: 2},
		{MenuID: "M1", StockID: "S2", RequiredQty: 1.5},
	}).Error)
}

func TestStockWorkbook(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	sink := &memSink{}
	ex := NewExporter(db, sink, zap.NewNop())
	ex.now = func() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }

	out, err := ex.StockWorkbook(context.Background(), audit.Actor{IP: "10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, "Sidaya_DataStok_2025-03-09.xlsx", out.FileName)
	assert.Equal(t, 4, out.Records)

	f, err := excelize.OpenReader(bytes.NewReader(out.Body))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetStock, SheetMenu}, f.GetSheetList())

	stock, err := f.GetRows(SheetStock)
	require.NoError(t, err)
	require.Len(t, stock, 3)
	assert.Equal(t, "ID_Stok", stock[0][0])
	assert.Equal(t, "Kopi", stock[1][1])

	menu, err := f.GetRows(SheetMenu)
	require.NoError(t, err)
	require.Len(t, menu, 3)
	assert.Equal(t, "Gula (1.5 gr), Kopi (2 gr)", menu[1][5])
	assert.Equal(t, "-", menu[2][5])

	require.Len(t, sink.entries, 1)
	e := sink.entries[0]
	assert.Equal(t, audit.ActivityExport, e.Type)
	assert.Equal(t, audit.StatusSuccess, e.Status)
	assert.Equal(t, 4, e.Processed)
	assert.Equal(t, "10.0.0.2", e.Actor.IP)
}

func TestTransactionsCSV(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, db.Create(&[]models.Transaction{
		{ID: "T1", MenuID: "M1", Date: day(1), Quantity: 2, UnitPrice: 15000, Total: 30000, Note: "meja 3"},
		{ID: "T2", MenuID: "M1", Date: day(5), Quantity: 1, UnitPrice: 15000, Total: 15000},
	}).Error)

	sink := &memSink{}
	ex := NewExporter(db, sink, zap.NewNop())

	out, err := ex.TransactionsCSV(context.Background(), audit.Actor{}, day(2), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Records)
	require.True(t, bytes.HasPrefix(out.Body, []byte{0xEF, 0xBB, 0xBF}))

	lines := strings.Split(strings.TrimSpace(string(out.Body[3:])), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(TransactionHeaders, ","), lines[0])
	assert.Equal(t, "T2,2025-01-05,Kopi Manis,1,15000,15000,", lines[1])

	all, err := ex.TransactionsCSV(context.Background(), audit.Actor{}, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Records)
	assert.Len(t, sink.entries, 2)
}

func buildUpload(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseTransactions(t *testing.T) {
	buf := buildUpload(t, [][]interface{}{
		{"nama_menu", " Tanggal ", "JUMLAH", "Harga_Satuan", "Total", "Catatan", "ID_Transaksi", "Extra"},
		{"Kopi Manis", "2025-01-01", 3, "", "", "pagi", "", "x"},
		{},
		{"Kopi Manis", time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), 1, 12000, 12000, "", "TRX-9"},
		{"Teh", "2025/01/02", 1.5},
	})

	rows, err := ParseTransactions(buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Kopi Manis", rows[0].MenuName)
	assert.Equal(t, "2025-01-01", rows[0].Date)
	assert.Equal(t, int64(3), rows[0].Quantity)
	assert.Nil(t, rows[0].UnitPrice)
	assert.Equal(t, "pagi", rows[0].Note)

	assert.Equal(t, "2025-02-14", rows[1].Date)
	require.NotNil(t, rows[1].UnitPrice)
	assert.Equal(t, int64(12000), *rows[1].UnitPrice)
	assert.Equal(t, "TRX-9", rows[1].TransactionID)

	assert.Equal(t, "2025/01/02", rows[2].Date)
	assert.Equal(t, int64(0), rows[2].Quantity, "fractional quantity is treated as missing")
}

func TestParseTransactions_HeaderOnlyAndGarbage(t *testing.T) {
	rows, err := ParseTransactions(buildUpload(t, [][]interface{}{{"Nama_Menu", "Tanggal", "Jumlah"}}))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = ParseTransactions(strings.NewReader("not a workbook"))
	assert.True(t, errors.Is(err, ErrUnreadableFile))
}

func TestBuildDashboard(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	require.NoError(t, db.Create(&models.MenuItem{ID: "M3", Name: "Teh", Category: "beverage", Price: 5000}).Error)
	require.NoError(t, db.Create(&[]models.Transaction{
		{ID: "T1", MenuID: "M1", Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Quantity: 2, Total: 30000},
		{ID: "T2", MenuID: "M3", Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), Quantity: 5, Total: 25000},
		{ID: "T3", MenuID: "M1", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Quantity: 1, Total: 15000},
		{ID: "T4", MenuID: "M1", Date: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), Quantity: 9, Total: 99000},
	}).Error)

	d, err := BuildDashboard(context.Background(), db, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, int64(3), d.Cards.TotalMenu)
	assert.Equal(t, int64(2), d.Cards.TotalStock)
	assert.Equal(t, "Kopi Manis", d.Cards.BestSellingMenu)
	require.Len(t, d.Charts.TopMenus, 2)
	assert.Equal(t, MenuSales{Name: "Kopi Manis", Sold: 12}, d.Charts.TopMenus[0])

	require.Len(t, d.Charts.MonthlyRevenue, 6)
	assert.Equal(t, MonthRevenue{Month: "Jan", Year: 2025, Revenue: 0}, d.Charts.MonthlyRevenue[0])
	assert.Equal(t, int64(15000), d.Charts.MonthlyRevenue[3].Revenue)
	assert.Equal(t, MonthRevenue{Month: "Jun", Year: 2025, Revenue: 55000}, d.Charts.MonthlyRevenue[5])
}

func TestBuildDashboard_Empty(t *testing.T) {
	d, err := BuildDashboard(context.Background(), dbtest.Open(t), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "N/A", d.Cards.BestSellingMenu)
	assert.Empty(t, d.Charts.TopMenus)
}
