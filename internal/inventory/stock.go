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

// StockInput holds the editable fields of a stock item.
type StockInput struct {
	Name     string  `json:"name" validate:"required,max=128"`
	Category string  `json:"category" validate:"required,max=32"`
	Quantity float64 `json:"quantity" validate:"min=0,max=1000000000000,whole"`
	Unit     string  `json:"unit" validate:"required,max=16"`
	UnitCost int64   `json:"unit_cost" validate:"min=0"`
}

func (in *StockInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Unit = strings.TrimSpace(in.Unit)
}

// AddStock creates a stock item and recalculates every menu, since a new
// item can only matter to recipes that already reference its id.
func (s *Service) AddStock(ctx context.Context, in StockInput, owner *uint) (*models.StockItem, error) {
	in.normalize()
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}

	item := models.StockItem{
		ID:       util.NewID("STK"),
		Name:     in.Name,
		Category: in.Category,
		Quantity: in.Quantity,
		Unit:     in.Unit,
		UnitCost: in.UnitCost,
		UserID:   owner,
	}
	err := inTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("insert stock: %w", err)
		}
		_, err := recalculateAll(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock added", zap.String("stock_id", item.ID), zap.Float64("quantity", item.Quantity))
	return &item, nil
}

// UpdateStock overwrites a stock item and refreshes the menus that use it.
func (s *Service) UpdateStock(ctx context.Context, id string, in StockInput) (*models.StockItem, error) {
	in.normalize()
	if err := util.ValidateStruct(in); err != nil {
		return nil, err
	}

	var item models.StockItem
	err := inTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "stock %s", id)
		}

		item.Name = in.Name
		item.Category = in.Category
		item.Quantity = in.Quantity
		item.Unit = in.Unit
		item.UnitCost = in.UnitCost
		if err := tx.Save(&item).Error; err != nil {
			return fmt.Errorf("update stock %s: %w", id, err)
		}

		_, err := recalculateAffectedByStock(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteStock removes a stock item and every recipe link to it, then
// refreshes the menus that lost the ingredient.
func (s *Service) DeleteStock(ctx context.Context, id string) error {
	var affected int
	err := inTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.StockItem{}, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "stock %s", id)
		}

		menuIDs, err := menusUsingStock(tx, id)
		if err != nil {
			return err
		}
		affected = len(menuIDs)

		if err := tx.Where("stock_id = ?", id).Delete(&models.RecipeLink{}).Error; err != nil {
			return fmt.Errorf("delete recipe links of stock %s: %w", id, err)
		}
		if err := tx.Delete(&models.StockItem{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete stock %s: %w", id, err)
		}

		_, err = refresh(tx, menuIDs)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("stock deleted", zap.String("stock_id", id), zap.Int("menus_refreshed", affected))
	return nil
}

func (s *Service) GetStock(ctx context.Context, id string) (*models.StockItem, error) {
	var item models.StockItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "stock %s", id)
	}
	return &item, nil
}

// ListStock returns every stock item ordered by name.
func (s *Service) ListStock(ctx context.Context) ([]models.StockItem, error) {
	var items []models.StockItem
	if err := s.db.WithContext(ctx).Order("name, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	return items, nil
}
