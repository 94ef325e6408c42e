package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Benediks/Sidaya/internal/models"

	"gorm.io/gorm"
)

const (
	dashboardMonths = 6
	topMenuLimit    = 6
)

type Cards struct {
	TotalMenu       int64  `json:"total_menu"`
	TotalStock      int64  `json:"total_stock"`
	BestSellingMenu string `json:"best_selling_menu"`
}

type MonthRevenue struct {
	Month   string `json:"month"` // "Jan"
	Year    int    `json:"year"`
	Revenue int64  `json:"revenue"`
}

type MenuSales struct {
	Name string `json:"name"`
	Sold int64  `json:"sold"`
}

type Charts struct {
	MonthlyRevenue []MonthRevenue `json:"monthly_revenue"`
	TopMenus       []MenuSales    `json:"top_menus"`
}

type Dashboard struct {
	Cards  Cards  `json:"cards"`
	Charts Charts `json:"charts"`
}

// BuildDashboard aggregates counts, the best sellers and revenue for the
// six calendar months ending with now's month. Months without sales are
// reported as zero.
func BuildDashboard(ctx context.Context, db *gorm.DB, now time.Time) (*Dashboard, error) {
	db = db.WithContext(ctx)
	var d Dashboard

	if err := db.Model(&models.MenuItem{}).Count(&d.Cards.TotalMenu).Error; err != nil {
		return nil, fmt.Errorf("count menus: %w", err)
	}
	if err := db.Model(&models.StockItem{}).Count(&d.Cards.TotalStock).Error; err != nil {
		return nil, fmt.Errorf("count stock: %w", err)
	}

	d.Charts.TopMenus = make([]MenuSales, 0, topMenuLimit)
	err := db.Table("transactions").
		Select("menu_items.name AS name, SUM(transactions.quantity) AS sold").
		Joins("JOIN menu_items ON menu_items.id = transactions.menu_id").
		Group("transactions.menu_id, menu_items.name").
		Order("sold DESC, menu_items.name").
		Limit(topMenuLimit).
		Scan(&d.Charts.TopMenus).Error
	if err != nil {
		return nil, fmt.Errorf("top menus: %w", err)
	}
	d.Cards.BestSellingMenu = "N/A"
	if len(d.Charts.TopMenus) > 0 {
		d.Cards.BestSellingMenu = d.Charts.TopMenus[0].Name
	}

	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(dashboardMonths - 1), 0)

	var sales []models.Transaction
	if err := db.Select("date", "total").Where("date >= ?", first).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("load revenue: %w", err)
	}

	d.Charts.MonthlyRevenue = make([]MonthRevenue, dashboardMonths)
	index := make(map[string]int, dashboardMonths)
	for i := 0; i < dashboardMonths; i++ {
		m := first.AddDate(0, i, 0)
		d.Charts.MonthlyRevenue[i] = MonthRevenue{Month: m.Format("Jan"), Year: m.Year()}
		index[m.Format("2006-01")] = i
	}
	for _, s := range sales {
		if i, ok := index[s.Date.UTC().Format("2006-01")]; ok {
			d.Charts.MonthlyRevenue[i].Revenue += s.Total
		}
	}
	return &d, nil
}
