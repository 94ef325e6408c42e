package inventory

import (
	"context"
	"fmt"

	"github.com/Benediks/Sidaya/internal/metrics"
	"github.com/Benediks/Sidaya/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// refreshChunk keeps IN lists under SQLite's host parameter limit.
const refreshChunk = 500

// refresh recomputes and stores MenuItem.Available for menuIDs. All sync
// entry points funnel through here and must be given the caller's tx.
func refresh(tx *gorm.DB, menuIDs []string) (int, error) {
	var updated int
	for start := 0; start < len(menuIDs); start += refreshChunk {
		end := start + refreshChunk
		if end > len(menuIDs) {
			end = len(menuIDs)
		}
		n, err := refreshChunkOf(tx, menuIDs[start:end])
		if err != nil {
			return updated, err
		}
		updated += n
	}
	if tally, ok := tx.Statement.Context.Value(refreshTally{}).(*int); ok {
		*tally += updated
	}
	return updated, nil
}

type refreshTally struct{}

// inTx runs fn in one transaction. Menus refreshed inside it reach
// metrics.MenuRecalculations only once the transaction has committed.
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tally := new(int)
	err := db.WithContext(context.WithValue(ctx, refreshTally{}, tally)).Transaction(fn)
	if err == nil && *tally > 0 {
		metrics.MenuRecalculations.Add(float64(*tally))
	}
	return err
}

func refreshChunkOf(tx *gorm.DB, menuIDs []string) (int, error) {
	var links []models.RecipeLink
	if err := tx.Where("menu_id IN ?", menuIDs).Find(&links).Error; err != nil {
		return 0, fmt.Errorf("load recipe links: %w", err)
	}

	onHand, err := loadOnHand(tx, links)
	if err != nil {
		return 0, err
	}

	byMenu := make(map[string][]models.RecipeLink, len(menuIDs))
	for _, l := range links {
		byMenu[l.MenuID] = append(byMenu[l.MenuID], l)
	}

	var updated int
	for _, id := range menuIDs {
		avail := ComputeAvailable(byMenu[id], onHand)
		res := tx.Model(&models.MenuItem{}).Where("id = ?", id).UpdateColumn("available", avail)
		if res.Error != nil {
			return updated, fmt.Errorf("update availability of menu %s: %w", id, res.Error)
		}
		updated += int(res.RowsAffected)
	}
	return updated, nil
}

// loadOnHand reads current quantities of every stock item referenced by links.
func loadOnHand(tx *gorm.DB, links []models.RecipeLink) (map[string]float64, error) {
	onHand := make(map[string]float64, len(links))
	if len(links) == 0 {
		return onHand, nil
	}

	ids := make([]string, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		if _, ok := seen[l.StockID]; ok {
			continue
		}
		seen[l.StockID] = struct{}{}
		ids = append(ids, l.StockID)
	}

	var stocks []models.StockItem
	if err := tx.Select("id", "quantity").Where("id IN ?", ids).Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("load stock levels: %w", err)
	}
	for _, s := range stocks {
		onHand[s.ID] = s.Quantity
	}
	return onHand, nil
}

// availableIn computes a menu's producible quantity from live rows in tx.
func availableIn(tx *gorm.DB, menuID string) (int64, error) {
	var links []models.RecipeLink
	if err := tx.Where("menu_id = ?", menuID).Find(&links).Error; err != nil {
		return 0, fmt.Errorf("load recipe links: %w", err)
	}
	onHand, err := loadOnHand(tx, links)
	if err != nil {
		return 0, err
	}
	return ComputeAvailable(links, onHand), nil
}

func recalculateOne(tx *gorm.DB, menuID string) error {
	_, err := refresh(tx, []string{menuID})
	return err
}

// menusUsingStock lists menus whose recipe references any of stockIDs.
func menusUsingStock(tx *gorm.DB, stockIDs ...string) ([]string, error) {
	var menuIDs []string
	if len(stockIDs) == 0 {
		return menuIDs, nil
	}
	err := tx.Model(&models.RecipeLink{}).
		Distinct("menu_id").
		Where("stock_id IN ?", stockIDs).
		Pluck("menu_id", &menuIDs).Error
	if err != nil {
		return nil, fmt.Errorf("find menus using stock: %w", err)
	}
	return menuIDs, nil
}

func recalculateAffectedByStock(tx *gorm.DB, stockIDs ...string) (int, error) {
	menuIDs, err := menusUsingStock(tx, stockIDs...)
	if err != nil {
		return 0, err
	}
	return refresh(tx, menuIDs)
}

func recalculateAll(tx *gorm.DB) (int, error) {
	var menuIDs []string
	if err := tx.Model(&models.MenuItem{}).Order("id").Pluck("id", &menuIDs).Error; err != nil {
		return 0, fmt.Errorf("list menus: %w", err)
	}
	return refresh(tx, menuIDs)
}

// RecalculateAllMenus rebuilds every cached availability value from
// current recipes and stock levels and returns how many menus it touched.
func (s *Service) RecalculateAllMenus(ctx context.Context) (int, error) {
	var count int
	err := inTx(ctx, s.db, func(tx *gorm.DB) error {
		n, err := recalculateAll(tx)
		count = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("recalculate all menus: %w", err)
	}
	s.logger.Info("menu availability recalculated", zap.Int("count", count))
	return count, nil
}

// Available computes a menu's producible quantity from live stock without
// touching the cached value.
func (s *Service) Available(ctx context.Context, menuID string) (int64, error) {
	if err := s.db.WithContext(ctx).Select("id").First(&models.MenuItem{}, "id = ?", menuID).Error; err != nil {
		return 0, notFoundOr(err, "menu %s", menuID)
	}
	return availableIn(s.db.WithContext(ctx), menuID)
}
