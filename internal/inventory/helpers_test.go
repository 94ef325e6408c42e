package inventory

import (
	"context"
	"testing"

	"github.com/Benediks/Sidaya/internal/audit"
	"github.com/Benediks/Sidaya/internal/database/dbtest"
	"github.com/Benediks/Sidaya/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSink struct {
	entries []audit.Entry
	err     error
}

func (f *fakeSink) Record(_ context.Context, e audit.Entry) error {
	f.entries = append(f.entries, e)
	return f.err
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	engine *Engine
	sink   *fakeSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	sink := &fakeSink{}
	return &fixture{
		db:     db,
		svc:    NewService(db, zap.NewNop()),
		engine: NewEngine(db, sink, zap.NewNop()),
		sink:   sink,
	}
}

func (f *fixture) addStock(t *testing.T, name string, qty float64) *models.StockItem {
	t.Helper()
	item, err := f.svc.AddStock(context.Background(), StockInput{
		Name:     name,
		Category: "Bahan Baku",
		Quantity: qty,
		Unit:     "pcs",
		UnitCost: 1000,
	}, nil)
	require.NoError(t, err)
	return item
}

func (f *fixture) addMenu(t *testing.T, name string, price int64, recipe ...RecipeLine) *models.MenuItem {
	t.Helper()
	menu, err := f.svc.AddMenu(context.Background(), MenuInput{
		Name:     name,
		Category: models.MenuCategoryBeverage,
		Price:    price,
	}, recipe)
	require.NoError(t, err)
	return menu
}

func (f *fixture) stockQty(t *testing.T, id string) float64 {
	t.Helper()
	var item models.StockItem
	require.NoError(t, f.db.First(&item, "id = ?", id).Error)
	return item.Quantity
}

func (f *fixture) menuAvailable(t *testing.T, id string) int64 {
	t.Helper()
	var item models.MenuItem
	require.NoError(t, f.db.First(&item, "id = ?", id).Error)
	return item.Available
}

// requireConsistent checks every cached availability against a live computation.
func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	var menus []models.MenuItem
	require.NoError(t, f.db.Find(&menus).Error)
	for _, m := range menus {
		live, err := f.svc.Available(context.Background(), m.ID)
		require.NoError(t, err)
		require.Equalf(t, live, m.Available, "menu %s (%s) cached availability drifted", m.ID, m.Name)
	}
}

// requireNonNegative checks every stock item is at or above zero.
func (f *fixture) requireNonNegative(t *testing.T) {
	t.Helper()
	var items []models.StockItem
	require.NoError(t, f.db.Find(&items).Error)
	for _, it := range items {
		require.GreaterOrEqualf(t, it.Quantity, 0.0, "stock %s went negative", it.ID)
	}
}
