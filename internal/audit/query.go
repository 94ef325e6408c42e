package audit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Benediks/Sidaya/internal/models"
)

// Filter narrows List results; empty fields match everything.
type Filter struct {
	Type   string
	Status string
	Limit  int
	Offset int
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

type Page struct {
	Logs       []models.ActivityLog `json:"logs"`
	Pagination Pagination           `json:"pagination"`
}

// List returns activity logs, newest first.
func (s *Store) List(ctx context.Context, f Filter) (*Page, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	base := s.DB.WithContext(ctx).Model(&models.ActivityLog{})
	if f.Type != "" {
		base = base.Where("activity_type = ?", f.Type)
	}
	if f.Status != "" {
		base = base.Where("status = ?", f.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count activity logs: %w", err)
	}

	logs := make([]models.ActivityLog, 0, f.Limit)
	if err := base.Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}

	return &Page{
		Logs: logs,
		Pagination: Pagination{
			Total:   total,
			Limit:   f.Limit,
			Offset:  f.Offset,
			HasMore: int64(f.Offset+f.Limit) < total,
		},
	}, nil
}

type Stats struct {
	TotalActivities int64      `json:"total_activities"`
	TotalExports    int64      `json:"total_exports"`
	TotalUploads    int64      `json:"total_uploads"`
	SuccessRate     int        `json:"success_rate"` // percent, rounded
	RecentActivity  *time.Time `json:"recent_activity"`
}

// Stats aggregates the whole activity log.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var row struct {
		Total   int64
		Exports int64
		Uploads int64
		Success int64
	}
	err := s.DB.WithContext(ctx).Model(&models.ActivityLog{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN activity_type = ? THEN 1 ELSE 0 END), 0) AS exports, "+
				"COALESCE(SUM(CASE WHEN activity_type = ? THEN 1 ELSE 0 END), 0) AS uploads, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS success",
			ActivityExport, ActivityUpload, StatusSuccess).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("activity stats: %w", err)
	}

	out := &Stats{
		TotalActivities: row.Total,
		TotalExports:    row.Exports,
		TotalUploads:    row.Uploads,
	}
	if row.Total > 0 {
		out.SuccessRate = int(math.Round(float64(row.Success) / float64(row.Total) * 100))
	}

	var latest []models.ActivityLog
	if err := s.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(1).Find(&latest).Error; err != nil {
		return nil, fmt.Errorf("latest activity: %w", err)
	}
	if len(latest) == 1 {
		ts := latest[0].CreatedAt
		out.RecentActivity = &ts
	}
	return out, nil
}
