// Package audit records upload and export attempts as activity log rows
// and serves the activity log queries.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Benediks/Sidaya/internal/models"

	"gorm.io/gorm"
)

// Activity types.
const (
	ActivityUpload = "UPLOAD"
	ActivityExport = "EXPORT"
)

// Statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Actor identifies who triggered an attempt and from where.
type Actor struct {
	UserID    *uint
	IP        string
	UserAgent string
}

// Entry is one attempt outcome.
type Entry struct {
	Actor       Actor
	Type        string
	Status      string
	FileName    string
	Processed   int
	Succeeded   int
	Failed      int
	Details     any // marshalled to JSON when non-nil
	ErrorDetail string
}

// Sink receives exactly one Entry per upload or export attempt.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// Store is the gorm-backed Sink and activity log reader.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Record appends an activity log row.
func (s *Store) Record(ctx context.Context, e Entry) error {
	row := models.ActivityLog{
		UserID:           e.Actor.UserID,
		ActivityType:     e.Type,
		Status:           e.Status,
		FileName:         e.FileName,
		RecordsProcessed: e.Processed,
		RecordsSuccess:   e.Succeeded,
		RecordsFailed:    e.Failed,
		ErrorMessage:     e.ErrorDetail,
		IP:               e.Actor.IP,
		UserAgent:        e.Actor.UserAgent,
	}
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal activity details: %w", err)
		}
		row.ActionDetails = string(b)
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}
