package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Benediks/Sidaya/internal/audit"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the upload/export activity log.
type ActivityHandler struct {
	Store    *audit.Store
	PageSize int
}

func NewActivityHandler(store *audit.Store, pageSize int) *ActivityHandler {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &ActivityHandler{Store: store, PageSize: pageSize}
}

// List returns activity records newest first, filtered by type and status.
func (h *ActivityHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.PageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	typ := strings.ToUpper(strings.TrimSpace(c.Query("type")))
	if typ != "" && typ != audit.ActivityUpload && typ != audit.ActivityExport {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "type must be UPLOAD or EXPORT")
		return
	}
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if status != "" && status != audit.StatusSuccess && status != audit.StatusFailed {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "status must be SUCCESS or FAILED")
		return
	}

	page, err := h.Store.List(c.Request.Context(), audit.Filter{
		Type:   typ,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeServiceError(c, err, "Activity log")
		return
	}
	util.Success(c, util.Response{"logs": page.Logs, "pagination": page.Pagination})
}

func (h *ActivityHandler) Stats(c *gin.Context) {
	stats, err := h.Store.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Activity log")
		return
	}
	util.Success(c, util.Response{"stats": stats})
}
