package database

import (
	"fmt"

	"github.com/Benediks/Sidaya/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.StockItem{},
		&models.MenuItem{},
		&models.RecipeLink{},
		&models.Transaction{},
		&models.Promo{},
		&models.PromoMenu{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return backfillMenuNameKeys(db)
}

// backfillMenuNameKeys fills name_key for menus stored before the column existed.
func backfillMenuNameKeys(db *gorm.DB) error {
	var menus []models.MenuItem
	if err := db.Select("id", "name").Where("name_key IS NULL OR name_key = ''").Find(&menus).Error; err != nil {
		return fmt.Errorf("load menus without name key: %w", err)
	}
	for _, m := range menus {
		err := db.Model(&models.MenuItem{}).Where("id = ?", m.ID).UpdateColumn("name_key", models.MenuNameKey(m.Name)).Error
		if err != nil {
			return fmt.Errorf("backfill name key of menu %s: %w", m.ID, err)
		}
	}
	return nil
}
