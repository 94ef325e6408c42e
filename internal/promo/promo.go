// Package promo manages time-boxed discount campaigns over menu items.
package promo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Benediks/Sidaya/internal/logger"
	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("promo not found")

// Item is one discounted menu of a promo.
type Item struct {
	MenuID          string `json:"menu_id" validate:"required"`
	DiscountPercent int    `json:"discount_percent" validate:"min=0,max=100"`
}

type Input struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description" validate:"max=1000"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	Items       []Item `json:"items" validate:"dive"`
}

// Summary is a list row.
type Summary struct {
	models.Promo
	MenuCount int `json:"menu_count"`
}

// Line is a promo item joined with its menu.
type Line struct {
	MenuID          string `json:"menu_id"`
	MenuName        string `json:"menu_name"`
	Price           int64  `json:"price"`
	DiscountPercent int    `json:"discount_percent"`
	DiscountedPrice int64  `json:"discounted_price"`
}

type Detail struct {
	Promo models.Promo `json:"promo"`
	Lines []Line       `json:"menus"`
}

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, logger: logger.Named(log, "promo")}
}

// parse validates in and returns the resolved dates.
func parse(in *Input) (time.Time, time.Time, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	fields := util.FieldErrors(*in)
	if fields == nil {
		fields = make(map[string]string)
	}

	start, errStart := util.ParseDate(in.StartDate)
	if errStart != nil && in.StartDate != "" {
		fields["start_date"] = "is not a valid date"
	}
	end, errEnd := util.ParseDate(in.EndDate)
	if errEnd != nil && in.EndDate != "" {
		fields["end_date"] = "is not a valid date"
	}
	if errStart == nil && errEnd == nil && end.Before(start) {
		fields["end_date"] = "must not be before start_date"
	}

	seen := make(map[string]int, len(in.Items))
	for i, it := range in.Items {
		if first, dup := seen[it.MenuID]; dup && it.MenuID != "" {
			fields[fmt.Sprintf("items[%d].menu_id", i)] = fmt.Sprintf("duplicates items[%d]", first)
			continue
		}
		seen[it.MenuID] = i
	}

	if len(fields) > 0 {
		return time.Time{}, time.Time{}, &util.ValidationError{Fields: fields}
	}
	return start, end, nil
}

// replaceItems deletes and reinserts the promo's items; every menu must exist.
func replaceItems(tx *gorm.DB, promoID string, items []Item) error {
	if len(items) > 0 {
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.MenuID)
		}
		var found []string
		if err := tx.Model(&models.MenuItem{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return fmt.Errorf("check promo menus: %w", err)
		}
		exists := make(map[string]bool, len(found))
		for _, id := range found {
			exists[id] = true
		}
		fields := make(map[string]string)
		for i, it := range items {
			if !exists[it.MenuID] {
				fields[fmt.Sprintf("items[%d].menu_id", i)] = "unknown menu " + it.MenuID
			}
		}
		if len(fields) > 0 {
			return &util.ValidationError{Fields: fields}
		}
	}

	if err := tx.Where("promo_id = ?", promoID).Delete(&models.PromoMenu{}).Error; err != nil {
		return fmt.Errorf("delete promo items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([]models.PromoMenu, 0, len(items))
	for _, it := range items {
		rows = append(rows, models.PromoMenu{
			PromoID:         promoID,
			MenuID:          it.MenuID,
			DiscountPercent: it.DiscountPercent,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert promo items: %w", err)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input, owner *uint) (*models.Promo, error) {
	start, end, err := parse(&in)
	if err != nil {
		return nil, err
	}

	p := models.Promo{
		ID:          util.NewID("PRM"),
		Name:        in.Name,
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
		UserID:      owner,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("insert promo: %w", err)
		}
		return replaceItems(tx, p.ID, in.Items)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("promo created", zap.String("promo_id", p.ID), zap.Int("items", len(in.Items)))
	return &p, nil
}

// Update overwrites the promo and replaces its items wholesale.
func (s *Service) Update(ctx context.Context, id string, in Input) (*models.Promo, error) {
	start, end, err := parse(&in)
	if err != nil {
		return nil, err
	}

	var p models.Promo
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load promo %s: %w", id, err)
		}

		p.Name = in.Name
		p.Description = in.Description
		p.StartDate = start
		p.EndDate = end
		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("update promo %s: %w", id, err)
		}
		return replaceItems(tx, id, in.Items)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Promo{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete promo %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("promo_id = ?", id).Delete(&models.PromoMenu{}).Error; err != nil {
			return fmt.Errorf("delete promo items: %w", err)
		}
		return nil
	})
}

// List returns every promo with its item count, latest start first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	err := s.db.WithContext(ctx).Model(&models.Promo{}).
		Select("promos.*, COUNT(promo_menus.menu_id) AS menu_count").
		Joins("LEFT JOIN promo_menus ON promo_menus.promo_id = promos.id").
		Group("promos.id").
		Order("promos.start_date DESC, promos.id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list promos: %w", err)
	}
	return out, nil
}

// Get returns the promo with each menu's discounted price.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	db := s.db.WithContext(ctx)

	var d Detail
	if err := db.First(&d.Promo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load promo %s: %w", id, err)
	}

	err := db.Table("promo_menus").
		Select("promo_menus.menu_id, menu_items.name AS menu_name, menu_items.price, promo_menus.discount_percent").
		Joins("JOIN menu_items ON menu_items.id = promo_menus.menu_id").
		Where("promo_menus.promo_id = ?", id).
		Order("menu_items.name").
		Scan(&d.Lines).Error
	if err != nil {
		return nil, fmt.Errorf("load promo items: %w", err)
	}
	for i := range d.Lines {
		d.Lines[i].DiscountedPrice = DiscountedPrice(d.Lines[i].Price, d.Lines[i].DiscountPercent)
	}
	return &d, nil
}

// DiscountedPrice applies pct and rounds to the nearest whole unit.
func DiscountedPrice(price int64, pct int) int64 {
	return int64(math.Round(float64(price) * float64(100-pct) / 100))
}
