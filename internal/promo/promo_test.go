package promo

import (
	"context"
	"testing"

	"github.com/Benediks/Sidaya/internal/database/dbtest"
	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedMenus(t *testing.T, db *gorm.DB) {
	t.Helper()
	menus := []models.MenuItem{
		{ID: "M1", Name: "Kopi Manis", Category: models.MenuCategoryBeverage, Price: 15000},
		{ID: "M2", Name: "Nasi Goreng", Category: models.MenuCategoryFood, Price: 25000},
	}
	require.NoError(t, db.Create(&menus).Error)
}

func TestCreateAndGet(t *testing.T) {
	db := dbtest.Open(t)
	seedMenus(t, db)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{
		Name:      " Ramadan ",
		StartDate: "2025-03-01",
		EndDate:   "2025-03-30",
		Items: []Item{
			{MenuID: "M1", DiscountPercent: 10},
			{MenuID: "M2", DiscountPercent: 25},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ramadan", p.Name)

	d, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, d.Lines, 2)
	assert.Equal(t, "Kopi Manis", d.Lines[0].MenuName)
	assert.Equal(t, int64(13500), d.Lines[0].DiscountedPrice)
	assert.Equal(t, int64(18750), d.Lines[1].DiscountedPrice)
}

func TestCreate_Validation(t *testing.T) {
	db := dbtest.Open(t)
	seedMenus(t, db)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"missing name", Input{StartDate: "2025-01-01", EndDate: "2025-01-02"}, "name"},
		{"end before start", Input{Name: "X", StartDate: "2025-02-01", EndDate: "2025-01-01"}, "end_date"},
		{"bad date", Input{Name: "X", StartDate: "soon", EndDate: "2025-01-01"}, "start_date"},
		{"discount over 100", Input{Name: "X", StartDate: "2025-01-01", EndDate: "2025-01-02",
			Items: []Item{{MenuID: "M1", DiscountPercent: 120}}}, "items[0].discount_percent"},
		{"unknown menu", Input{Name: "X", StartDate: "2025-01-01", EndDate: "2025-01-02",
			Items: []Item{{MenuID: "M1", DiscountPercent: 5}, {MenuID: "M9", DiscountPercent: 5}}}, "items[1].menu_id"},
		{"repeated menu", Input{Name: "X", StartDate: "2025-01-01", EndDate: "2025-01-02",
			Items: []Item{{MenuID: "M1", DiscountPercent: 5}, {MenuID: "M1", DiscountPercent: 7}}}, "items[1].menu_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in, nil)
			var verr *util.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Promo{}).Count(&count).Error)
	assert.Zero(t, count, "a promo with unknown menus must roll back")
}

func TestUpdateReplacesItems_ListAndDelete(t *testing.T) {
	db := dbtest.Open(t)
	seedMenus(t, db)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	early, err := svc.Create(ctx, Input{Name: "Early", StartDate: "2025-01-01", EndDate: "2025-01-31",
		Items: []Item{{MenuID: "M1", DiscountPercent: 10}, {MenuID: "M2", DiscountPercent: 10}}}, nil)
	require.NoError(t, err)
	late, err := svc.Create(ctx, Input{Name: "Late", StartDate: "2025-06-01", EndDate: "2025-06-30"}, nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, early.ID, Input{Name: "Early Bird", StartDate: "2025-01-01", EndDate: "2025-02-01",
		Items: []Item{{MenuID: "M2", DiscountPercent: 50}}})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, late.ID, list[0].ID, "latest start first")
	assert.Equal(t, 0, list[0].MenuCount)
	assert.Equal(t, "Early Bird", list[1].Name)
	assert.Equal(t, 1, list[1].MenuCount)

	require.NoError(t, svc.Delete(ctx, early.ID))
	var items int64
	require.NoError(t, db.Model(&models.PromoMenu{}).Where("promo_id = ?", early.ID).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, svc.Delete(ctx, early.ID), ErrNotFound)
	_, err = svc.Get(ctx, early.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, early.ID, Input{Name: "X", StartDate: "2025-01-01", EndDate: "2025-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscountedPrice(t *testing.T) {
	assert.Equal(t, int64(15000), DiscountedPrice(15000, 0))
	assert.Equal(t, int64(0), DiscountedPrice(15000, 100))
	assert.Equal(t, int64(6701), DiscountedPrice(10001, 33)) // 6700.67
}
