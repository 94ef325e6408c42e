package handler

import (
	"net/http"

	"github.com/Benediks/Sidaya/internal/inventory"
	"github.com/Benediks/Sidaya/internal/report"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
)

// StockHandler serves /api/stok.
type StockHandler struct {
	Inventory *inventory.Service
	Exporter  *report.Exporter
}

func NewStockHandler(inv *inventory.Service, exp *report.Exporter) *StockHandler {
	return &StockHandler{Inventory: inv, Exporter: exp}
}

func (h *StockHandler) List(c *gin.Context) {
	items, err := h.Inventory.ListStock(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Stock item")
		return
	}
	util.Success(c, util.Response{"items": items, "total": len(items)})
}

func (h *StockHandler) Get(c *gin.Context) {
	item, err := h.Inventory.GetStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Stock item")
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (h *StockHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req inventory.StockInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	owner := user.ID
	item, err := h.Inventory.AddStock(c.Request.Context(), req, &owner)
	if err != nil {
		writeServiceError(c, err, "Stock item")
		return
	}
	util.Created(c, util.Response{"item": item})
}

func (h *StockHandler) Update(c *gin.Context) {
	var req inventory.StockInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	item, err := h.Inventory.UpdateStock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err, "Stock item")
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (h *StockHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Inventory.DeleteStock(c.Request.Context(), id); err != nil {
		writeServiceError(c, err, "Stock item")
		return
	}
	util.Success(c, util.Response{"message": "Stock item deleted", "id": id})
}

// Export downloads the stock and menu workbook.
func (h *StockHandler) Export(c *gin.Context) {
	out, err := h.Exporter.StockWorkbook(c.Request.Context(), actorOf(c))
	if err != nil {
		writeServiceError(c, err, "Stock")
		return
	}
	sendFile(c, out.FileName, out.ContentType, out.Body)
}
