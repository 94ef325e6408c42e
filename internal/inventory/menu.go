package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MenuInput holds the editable fields of a menu item.
type MenuInput struct {
	Name     string `json:"name" validate:"required,max=128"`
	Category string `json:"category" validate:"required,oneof=food beverage"`
	Price    int64  `json:"price" validate:"min=0"`
}

func (in *MenuInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
}

// IngredientAvailability is one recipe line joined with its stock item.
type IngredientAvailability struct {
	StockID      string  `json:"stock_id"`
	StockName    string  `json:"stock_name"`
	Unit         string  `json:"unit"`
	RequiredQty  float64 `json:"required_qty"`
	OnHand       float64 `json:"on_hand"`
	AvailableQty int64   `json:"available_qty"` // units this ingredient alone allows
	UnitCost     int64   `json:"unit_cost"`
}

// MenuDetail is the read-only availability breakdown of one menu.
type MenuDetail struct {
	Menu           models.MenuItem          `json:"menu"`
	Ingredients    []IngredientAvailability `json:"ingredients"`
	IngredientCost float64                  `json:"ingredient_cost"`
}

// ensureUniqueName rejects a name another menu already uses, ignoring case.
func ensureUniqueName(tx *gorm.DB, name, exceptID string) error {
	q := tx.Model(&models.MenuItem{}).Where("name_key = ?", models.MenuNameKey(name))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check menu name: %w", err)
	}
	if count > 0 {
		return invalid("name", "already used by another menu")
	}
	return nil
}

// AddMenu creates a menu with its initial recipe (possibly empty) and
// computes its availability.
func (s *Service) AddMenu(ctx context.Context, in MenuInput, recipe []RecipeLine) (*models.MenuItem, error) {
	in.normalize()
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}

	item := models.MenuItem{
		ID:       util.NewID("MNU"),
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
	}
	err := inTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, in.Name, ""); err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("insert menu: %w", err)
		}
		if err := replaceRecipe(tx, item.ID, recipe); err != nil {
			return err
		}
		return tx.First(&item, "id = ?", item.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu added", zap.String("menu_id", item.ID), zap.Int64("available", item.Available))
	return &item, nil
}

// UpdateMenu overwrites the menu fields. A nil recipe keeps the current
// ingredients; a non-nil one (even empty) replaces them wholesale.
func (s *Service) UpdateMenu(ctx context.Context, id string, in MenuInput, recipe []RecipeLine) (*models.MenuItem, error) {
	in.normalize()
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}

	var item models.MenuItem
	err := inTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "menu %s", id)
		}
		if err := ensureUniqueName(tx, in.Name, id); err != nil {
			return err
		}

		err := tx.Model(&item).Updates(map[string]interface{}{
			"name":     in.Name,
			"name_key": models.MenuNameKey(in.Name),
			"category": in.Category,
			"price":    in.Price,
		}).Error
		if err != nil {
			return fmt.Errorf("update menu %s: %w", id, err)
		}

		if recipe != nil {
			err = replaceRecipe(tx, id, recipe)
		} else {
			err = recalculateOne(tx, id)
		}
		if err != nil {
			return err
		}
		return tx.First(&item, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteMenu removes a menu with its recipe links and promo lines. Sales
// history referencing it is kept.
func (s *Service) DeleteMenu(ctx context.Context, id string) error {
	err := inTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.MenuItem{}, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "menu %s", id)
		}
		if err := tx.Where("menu_id = ?", id).Delete(&models.RecipeLink{}).Error; err != nil {
			return fmt.Errorf("delete recipe of menu %s: %w", id, err)
		}
		if err := tx.Where("menu_id = ?", id).Delete(&models.PromoMenu{}).Error; err != nil {
			return fmt.Errorf("delete promo lines of menu %s: %w", id, err)
		}
		if err := tx.Delete(&models.MenuItem{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete menu %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("menu deleted", zap.String("menu_id", id))
	return nil
}

func (s *Service) GetMenu(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "menu %s", id)
	}
	return &item, nil
}

// ListMenus returns every menu ordered by name.
func (s *Service) ListMenus(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Order("name, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return items, nil
}

// GetMenuAvailability returns the menu with each ingredient's stock level,
// the units that ingredient alone allows, and the summed ingredient cost.
func (s *Service) GetMenuAvailability(ctx context.Context, id string) (*MenuDetail, error) {
	db := s.db.WithContext(ctx)

	var detail MenuDetail
	if err := db.First(&detail.Menu, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "menu %s", id)
	}

	var links []models.RecipeLink
	if err := db.Where("menu_id = ?", id).Order("id").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load recipe of menu %s: %w", id, err)
	}

	stockIDs := make([]string, 0, len(links))
	for _, l := range links {
		stockIDs = append(stockIDs, l.StockID)
	}
	stocks := make(map[string]models.StockItem, len(links))
	if len(stockIDs) > 0 {
		var rows []models.StockItem
		if err := db.Where("id IN ?", stockIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load stock of menu %s: %w", id, err)
		}
		for _, r := range rows {
			stocks[r.ID] = r
		}
	}

	detail.Ingredients = make([]IngredientAvailability, 0, len(links))
	for _, l := range links {
		st := stocks[l.StockID]
		detail.Ingredients = append(detail.Ingredients, IngredientAvailability{
			StockID:      l.StockID,
			StockName:    st.Name,
			Unit:         st.Unit,
			RequiredQty:  l.RequiredQty,
			OnHand:       st.Quantity,
			AvailableQty: unitsFrom(st.Quantity, l.RequiredQty),
			UnitCost:     st.UnitCost,
		})
		detail.IngredientCost += float64(st.UnitCost) * l.RequiredQty
	}
	return &detail, nil
}
