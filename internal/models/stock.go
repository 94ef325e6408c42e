package models

import "time"

// StockItem is a raw material tracked by on-hand quantity.
type StockItem struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Category  string    `gorm:"size:32;index;not null" json:"category"`
	Quantity  float64   `gorm:"not null" json:"quantity"` // never negative after commit
	Unit      string    `gorm:"size:16;not null" json:"unit"`
	UnitCost  int64     `gorm:"not null" json:"unit_cost"` // purchase cost per unit, whole currency units
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
