package models

import "time"

// ActivityLog is one append-only row per upload or export attempt.
type ActivityLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           *uint     `gorm:"index" json:"user_id,omitempty"`
	ActivityType     string    `gorm:"size:16;index;not null" json:"activity_type"` // UPLOAD / EXPORT
	Status           string    `gorm:"size:16;index;not null" json:"status"`        // SUCCESS / FAILED
	ActionDetails    string    `gorm:"type:text" json:"action_details,omitempty"`   // JSON
	FileName         string    `gorm:"size:255" json:"file_name"`
	RecordsProcessed int       `json:"records_processed"`
	RecordsSuccess   int       `json:"records_success"`
	RecordsFailed    int       `json:"records_failed"`
	ErrorMessage     string    `gorm:"size:2048" json:"error_message,omitempty"`
	IP               string    `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent        string    `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"timestamp"`
}
