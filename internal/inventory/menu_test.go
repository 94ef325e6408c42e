package inventory

import (
	"context"
	"testing"

	"github.com/Benediks/Sidaya/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAddMenu_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kopi := f.addStock(t, "Kopi", 10)

	cases := []struct {
		name   string
		in     MenuInput
		recipe []RecipeLine
		field  string
	}{
		{"blank name", MenuInput{Category: "food", Price: 1}, nil, "name"},
		{"bad category", MenuInput{Name: "Nasi", Category: "snack", Price: 1}, nil, "category"},
		{"negative price", MenuInput{Name: "Nasi", Category: "food", Price: -1}, nil, "price"},
		{"zero requirement", MenuInput{Name: "Nasi", Category: "food"},
			[]RecipeLine{{StockID: kopi.ID, RequiredQty: 0}}, "recipe[0].required_qty"},
		{"negative requirement", MenuInput{Name: "Nasi", Category: "food"},
			[]RecipeLine{{StockID: kopi.ID, RequiredQty: -2}}, "recipe[0].required_qty"},
		{"unknown stock", MenuInput{Name: "Nasi", Category: "food"},
			[]RecipeLine{{StockID: kopi.ID, RequiredQty: 1}, {StockID: "nope", RequiredQty: 1}}, "recipe[1].stock_id"},
		{"repeated stock", MenuInput{Name: "Nasi", Category: "food"},
			[]RecipeLine{{StockID: kopi.ID, RequiredQty: 1}, {StockID: kopi.ID, RequiredQty: 2}}, "recipe[1].stock_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddMenu(ctx, tc.in, tc.recipe)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.MenuItem{}).Count(&count).Error)
	assert.Zero(t, count, "rejected menus must not be written")
}

func TestAddMenu_NameUniqueIgnoringCase(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "Kopi Manis", 15000)

	_, err := f.svc.AddMenu(context.Background(), MenuInput{Name: "kopi MANIS", Category: "Beverage", Price: 1}, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
}

func TestMenuNames_FoldNonASCII(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addStock(t, "Krim", 10)
	menu := f.addMenu(t, "Éclair Cokelat", 20000, RecipeLine{StockID: s.ID, RequiredQty: 1})

	_, err := f.svc.AddMenu(ctx, MenuInput{Name: "éCLAIR cokelat", Category: "food", Price: 1}, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	report, err := f.engine.Ingest(ctx, Batch{Rows: []Row{
		{MenuName: "ÉCLAIR COKELAT", Quantity: 1, Date: "2025-01-01"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Success)

	_, err = f.svc.UpdateMenu(ctx, menu.ID, MenuInput{Name: "Crème Brûlée", Category: "food", Price: 25000}, nil)
	require.NoError(t, err)
	report, err = f.engine.Ingest(ctx, Batch{Rows: []Row{
		{MenuName: "crème brûlée", Quantity: 1, Date: "2025-01-01"},
		{MenuName: "Éclair Cokelat", Quantity: 1, Date: "2025-01-01"},
	}})
	require.NoError(t, err)
	assert.True(t, report.Results[0].Success)
	assert.Equal(t, "Menu 'Éclair Cokelat' not found in database", report.Results[1].Message)
}

func TestAddMenu_EmptyRecipeIsUnavailable(t *testing.T) {
	f := newFixture(t)
	menu := f.addMenu(t, "Air Putih", 0)
	assert.Equal(t, int64(0), menu.Available)
	assert.Equal(t, models.MenuCategoryBeverage, menu.Category)
}

func TestReplaceRecipe_AtomicAndTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.addStock(t, "A", 10)
	b := f.addStock(t, "B", 9)
	menu := f.addMenu(t, "Racikan", 1000, RecipeLine{StockID: a.ID, RequiredQty: 2})
	assert.Equal(t, int64(5), menu.Available)

	require.NoError(t, f.svc.ReplaceRecipe(ctx, menu.ID, []RecipeLine{{StockID: b.ID, RequiredQty: 3}}))

	links, err := f.svc.Recipe(ctx, menu.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, b.ID, links[0].StockID)
	assert.Equal(t, 3.0, links[0].RequiredQty)
	assert.Equal(t, int64(3), f.menuAvailable(t, menu.ID))

	// a rejected replacement leaves the previous recipe untouched
	err = f.svc.ReplaceRecipe(ctx, menu.ID, []RecipeLine{{StockID: a.ID, RequiredQty: 1}, {StockID: "nope", RequiredQty: 1}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	links, err = f.svc.Recipe(ctx, menu.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, b.ID, links[0].StockID)

	assert.ErrorIs(t, f.svc.ReplaceRecipe(ctx, "missing", nil), ErrNotFound)
}

func TestUpdateMenu_RecipeSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kopi := f.addStock(t, "Kopi", 10)
	menu := f.addMenu(t, "Kopi Manis", 15000, RecipeLine{StockID: kopi.ID, RequiredQty: 2})

	// nil keeps the recipe
	updated, err := f.svc.UpdateMenu(ctx, menu.ID, MenuInput{Name: "Kopi Gula Aren", Category: "beverage", Price: 18000}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Kopi Gula Aren", updated.Name)
	assert.Equal(t, int64(18000), updated.Price)
	assert.Equal(t, int64(5), updated.Available)

	// an empty non-nil recipe clears it
	updated, err = f.svc.UpdateMenu(ctx, menu.ID, MenuInput{Name: "Kopi Gula Aren", Category: "beverage", Price: 18000}, []RecipeLine{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Available)

	links, err := f.svc.Recipe(ctx, menu.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
	f.requireConsistent(t)

	_, err = f.svc.UpdateMenu(ctx, "missing", MenuInput{Name: "X", Category: "food"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMenu_KeepsOwnName(t *testing.T) {
	f := newFixture(t)
	menu := f.addMenu(t, "Teh", 5000)
	other := f.addMenu(t, "Jeruk", 6000)

	_, err := f.svc.UpdateMenu(context.Background(), menu.ID, MenuInput{Name: "TEH", Category: "beverage", Price: 5500}, nil)
	require.NoError(t, err)

	_, err = f.svc.UpdateMenu(context.Background(), other.ID, MenuInput{Name: "teh", Category: "beverage", Price: 6000}, nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteMenu_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kopi := f.addStock(t, "Kopi", 10)
	menu := f.addMenu(t, "Kopi Manis", 15000, RecipeLine{StockID: kopi.ID, RequiredQty: 2})
	require.NoError(t, f.db.Create(&models.Promo{ID: "PRM-1", Name: "Promo"}).Error)
	require.NoError(t, f.db.Create(&models.PromoMenu{PromoID: "PRM-1", MenuID: menu.ID, DiscountPercent: 10}).Error)

	require.NoError(t, f.svc.DeleteMenu(ctx, menu.ID))

	var links, promoLines int64
	require.NoError(t, f.db.Model(&models.RecipeLink{}).Where("menu_id = ?", menu.ID).Count(&links).Error)
	require.NoError(t, f.db.Model(&models.PromoMenu{}).Where("menu_id = ?", menu.ID).Count(&promoLines).Error)
	assert.Zero(t, links)
	assert.Zero(t, promoLines)

	_, err := f.svc.GetMenu(ctx, menu.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteMenu(ctx, menu.ID), ErrNotFound)

	// stock is untouched
	assert.Equal(t, 10.0, f.stockQty(t, kopi.ID))
}

func TestGetMenuAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kopi := f.addStock(t, "Kopi", 10) // unit cost 1000
	susu := f.addStock(t, "Susu", 3)
	menu := f.addMenu(t, "Latte", 20000,
		RecipeLine{StockID: kopi.ID, RequiredQty: 2},
		RecipeLine{StockID: susu.ID, RequiredQty: 0.5})

	detail, err := f.svc.GetMenuAvailability(ctx, menu.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.Menu.Available)
	require.Len(t, detail.Ingredients, 2)

	assert.Equal(t, "Kopi", detail.Ingredients[0].StockName)
	assert.Equal(t, int64(5), detail.Ingredients[0].AvailableQty)
	assert.Equal(t, "Susu", detail.Ingredients[1].StockName)
	assert.Equal(t, int64(6), detail.Ingredients[1].AvailableQty)
	assert.InDelta(t, 2500.0, detail.IngredientCost, 1e-9)

	_, err = f.svc.GetMenuAvailability(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecalculateAllMenus_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kopi := f.addStock(t, "Kopi", 10)
	gula := f.addStock(t, "Gula", 7)
	f.addMenu(t, "Kopi Manis", 15000, RecipeLine{StockID: kopi.ID, RequiredQty: 2}, RecipeLine{StockID: gula.ID, RequiredQty: 3})
	f.addMenu(t, "Kopi Hitam", 12000, RecipeLine{StockID: kopi.ID, RequiredQty: 1})
	f.addMenu(t, "Air Putih", 0)

	snapshot := func() map[string]int64 {
		menus, err := f.svc.ListMenus(ctx)
		require.NoError(t, err)
		out := make(map[string]int64, len(menus))
		for _, m := range menus {
			out[m.ID] = m.Available
		}
		return out
	}

	n, err := f.svc.RecalculateAllMenus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	first := snapshot()

	n, err = f.svc.RecalculateAllMenus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, first, snapshot())
	f.requireConsistent(t)
}

func TestRecalculateAllMenus_LogsOnce(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "Air Putih", 0)

	core, logs := observer.New(zap.InfoLevel)
	svc := NewService(f.db, zap.New(core))
	_, err := svc.RecalculateAllMenus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("menu availability recalculated").Len())
}

func TestRecalculateAllMenus_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kopi := f.addStock(t, "Kopi", 10)
	menu := f.addMenu(t, "Kopi Manis", 15000, RecipeLine{StockID: kopi.ID, RequiredQty: 2})
	require.NoError(t, f.db.Model(&models.StockItem{}).Where("id = ?", kopi.ID).UpdateColumn("quantity", 4).Error)

	_, err := f.svc.RecalculateAllMenus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.menuAvailable(t, menu.ID))
}
