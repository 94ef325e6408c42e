package handler

import (
	"time"

	"github.com/Benediks/Sidaya/internal/report"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := report.BuildDashboard(c.Request.Context(), h.DB, time.Now())
	if err != nil {
		writeServiceError(c, err, "Dashboard")
		return
	}
	util.Success(c, util.Response{"cards": d.Cards, "charts": d.Charts})
}
