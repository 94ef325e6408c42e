package inventory

import (
	"context"
	"fmt"

	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/util"

	"gorm.io/gorm"
)

// RecipeLine is one ingredient of a menu: RequiredQty units of StockID per
// unit sold.
type RecipeLine struct {
	StockID     string  `json:"stock_id" validate:"required"`
	RequiredQty float64 `json:"required_qty" validate:"gt=0"`
}

// checkRecipe rejects non-positive quantities, repeated ingredients and
// unknown stock ids before anything is written.
func checkRecipe(tx *gorm.DB, lines []RecipeLine) error {
	fields := make(map[string]string)
	seen := make(map[string]int, len(lines))
	ids := make([]string, 0, len(lines))

	for i, l := range lines {
		prefix := fmt.Sprintf("recipe[%d].", i)
		for k, msg := range util.FieldErrors(l) {
			fields[prefix+k] = msg
		}
		if l.StockID == "" {
			continue
		}
		if first, dup := seen[l.StockID]; dup {
			fields[prefix+"stock_id"] = fmt.Sprintf("duplicates recipe[%d]", first)
			continue
		}
		seen[l.StockID] = i
		ids = append(ids, l.StockID)
	}

	if len(ids) > 0 {
		var found []string
		if err := tx.Model(&models.StockItem{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return fmt.Errorf("check recipe stock: %w", err)
		}
		exists := make(map[string]bool, len(found))
		for _, id := range found {
			exists[id] = true
		}
		for _, id := range ids {
			if !exists[id] {
				fields[fmt.Sprintf("recipe[%d].stock_id", seen[id])] = "unknown stock item " + id
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// replaceRecipe deletes every link of menuID, inserts lines and refreshes
// the menu's availability. Callers own the transaction.
func replaceRecipe(tx *gorm.DB, menuID string, lines []RecipeLine) error {
	if err := checkRecipe(tx, lines); err != nil {
		return err
	}

	if err := tx.Where("menu_id = ?", menuID).Delete(&models.RecipeLink{}).Error; err != nil {
		return fmt.Errorf("delete recipe of menu %s: %w", menuID, err)
	}

	if len(lines) > 0 {
		links := make([]models.RecipeLink, 0, len(lines))
		for _, l := range lines {
			links = append(links, models.RecipeLink{
				MenuID:      menuID,
				StockID:     l.StockID,
				RequiredQty: l.RequiredQty,
			})
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("insert recipe of menu %s: %w", menuID, err)
		}
	}

	return recalculateOne(tx, menuID)
}

// ReplaceRecipe swaps a menu's whole ingredient list in one transaction.
func (s *Service) ReplaceRecipe(ctx context.Context, menuID string, lines []RecipeLine) error {
	return inTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.MenuItem{}, "id = ?", menuID).Error; err != nil {
			return notFoundOr(err, "menu %s", menuID)
		}
		return replaceRecipe(tx, menuID, lines)
	})
}

// Recipe returns the links of a menu ordered by insertion.
func (s *Service) Recipe(ctx context.Context, menuID string) ([]models.RecipeLink, error) {
	var links []models.RecipeLink
	if err := s.db.WithContext(ctx).Where("menu_id = ?", menuID).Order("id").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load recipe of menu %s: %w", menuID, err)
	}
	return links, nil
}
