package models

import "time"

// Transaction records one sale. Rows are only created by batch ingestion
// and are never updated afterwards.
type Transaction struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	MenuID    string    `gorm:"size:64;index;not null" json:"menu_id"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"` // price at time of sale
	Total     int64     `gorm:"not null" json:"total"`
	Note      string    `gorm:"size:255" json:"note,omitempty"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
