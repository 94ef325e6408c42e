package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Benediks/Sidaya/internal/inventory"
	"github.com/Benediks/Sidaya/internal/report"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TransactionHandler serves /api/transactions.
type TransactionHandler struct {
	Engine      *inventory.Engine
	Exporter    *report.Exporter
	UploadMaxMB int64
	Logger      *zap.Logger
}

func NewTransactionHandler(engine *inventory.Engine, exp *report.Exporter, uploadMaxMB int64, log *zap.Logger) *TransactionHandler {
	if uploadMaxMB <= 0 {
		uploadMaxMB = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TransactionHandler{Engine: engine, Exporter: exp, UploadMaxMB: uploadMaxMB, Logger: log}
}

// Upload ingests the rows of a multipart xlsx file ("file").
func (h *TransactionHandler) Upload(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "No file uploaded")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Only .xlsx files are accepted")
		return
	}
	if fh.Size > h.UploadMaxMB<<20 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "File too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to read upload")
		return
	}
	defer f.Close()

	actor := actorOf(c)
	rows, err := report.ParseTransactions(f)
	if err != nil {
		if errors.Is(err, report.ErrUnreadableFile) {
			h.Engine.RejectUpload(c.Request.Context(), actor, fh.Filename, err)
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "File is empty or invalid format")
			return
		}
		writeServiceError(c, err, "Transaction")
		return
	}

	h.ingest(c, inventory.Batch{Actor: actor, FileName: fh.Filename, Rows: rows})
}

type batchReq struct {
	FileName string          `json:"file_name"`
	Rows     []inventory.Row `json:"rows"`
}

// Batch ingests rows posted as JSON.
func (h *TransactionHandler) Batch(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	h.ingest(c, inventory.Batch{Actor: actorOf(c), FileName: req.FileName, Rows: req.Rows})
}

func (h *TransactionHandler) ingest(c *gin.Context, b inventory.Batch) {
	rep, err := h.Engine.Ingest(c.Request.Context(), b)
	if err != nil {
		writeServiceError(c, err, "Transaction")
		return
	}

	h.Logger.Info("batch ingested",
		zap.String("file", b.FileName),
		zap.Int("total", rep.Summary.Total),
		zap.Int("success", rep.Summary.Success),
		zap.Int("failed", rep.Summary.Failed),
	)
	util.Success(c, util.Response{
		"message": "Upload processed",
		"summary": rep.Summary,
		"results": rep.Results,
	})
}

// Export downloads transactions as CSV. from/to (YYYY-MM-DD) are optional
// and inclusive.
func (h *TransactionHandler) Export(c *gin.Context) {
	var from, to time.Time
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		if err := util.ValidateDate(s); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "from must be YYYY-MM-DD")
			return
		}
		from, _ = util.ParseDate(s)
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		if err := util.ValidateDate(s); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "to must be YYYY-MM-DD")
			return
		}
		to, _ = util.ParseDate(s)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "to must not be before from")
		return
	}

	out, err := h.Exporter.TransactionsCSV(c.Request.Context(), actorOf(c), from, to)
	if err != nil {
		writeServiceError(c, err, "Transaction")
		return
	}
	sendFile(c, out.FileName, out.ContentType, out.Body)
}
