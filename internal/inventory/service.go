// Package inventory owns stock items, menu items, recipes and the
// transaction ingestion engine. Every write path that can change a menu's
// producible quantity refreshes the cached value in the same database
// transaction.
package inventory

import (
	"github.com/Benediks/Sidaya/internal/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service exposes the stock, menu and recipe operations.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.Named(log, "inventory"),
	}
}
