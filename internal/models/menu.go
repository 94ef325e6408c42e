package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Menu categories.
const (
	MenuCategoryFood     = "food"
	MenuCategoryBeverage = "beverage"
)

// MenuItem is a sellable product. Available is a cached value derived from
// the recipe and current stock levels; it is rewritten on every mutation
// that can change it and is never edited directly.
type MenuItem struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	NameKey   string    `gorm:"size:128;index" json:"-"` // MenuNameKey(Name)
	Category  string    `gorm:"size:16;not null" json:"category"`
	Price     int64     `gorm:"not null" json:"price"`
	Available int64     `gorm:"not null" json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MenuNameKey folds a menu name for case-insensitive lookups. SQLite's
// LOWER only folds ASCII, so the folded form is stored.
func MenuNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	m.NameKey = MenuNameKey(m.Name)
	return nil
}

// RecipeLink is one bill-of-materials row: RequiredQty units of StockID
// are consumed per unit of MenuID.
type RecipeLink struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	MenuID      string  `gorm:"size:64;not null;uniqueIndex:idx_recipe_menu_stock" json:"menu_id"`
	StockID     string  `gorm:"size:64;not null;index;uniqueIndex:idx_recipe_menu_stock" json:"stock_id"`
	RequiredQty float64 `gorm:"not null" json:"required_qty"`
}
