package models

import "time"

// Promo is a time-boxed discount campaign over a set of menu items.
type Promo struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	StartDate   time.Time `gorm:"index;not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PromoMenu links a promo to a discounted menu item.
type PromoMenu struct {
	PromoID         string `gorm:"primaryKey;size:64" json:"promo_id"`
	MenuID          string `gorm:"primaryKey;size:64;index" json:"menu_id"`
	DiscountPercent int    `gorm:"not null" json:"discount_percent"` // 0-100
}
