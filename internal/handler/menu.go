package handler

import (
	"net/http"

	"github.com/Benediks/Sidaya/internal/inventory"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
)

// MenuHandler serves /api/menu.
type MenuHandler struct {
	Inventory *inventory.Service
}

func NewMenuHandler(inv *inventory.Service) *MenuHandler {
	return &MenuHandler{Inventory: inv}
}

// menuReq: an absent or null recipe keeps the current one on update; [] clears it.
type menuReq struct {
	inventory.MenuInput
	Recipe []inventory.RecipeLine `json:"recipe"`
}

func (h *MenuHandler) List(c *gin.Context) {
	items, err := h.Inventory.ListMenus(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Menu")
		return
	}
	util.Success(c, util.Response{"items": items, "total": len(items)})
}

func (h *MenuHandler) Get(c *gin.Context) {
	item, err := h.Inventory.GetMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Menu")
		return
	}
	util.Success(c, util.Response{"item": item})
}

// Details returns per-ingredient availability and cost.
func (h *MenuHandler) Details(c *gin.Context) {
	detail, err := h.Inventory.GetMenuAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Menu")
		return
	}
	util.Success(c, util.Response{"detail": detail})
}

func (h *MenuHandler) Create(c *gin.Context) {
	var req menuReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	item, err := h.Inventory.AddMenu(c.Request.Context(), req.MenuInput, req.Recipe)
	if err != nil {
		writeServiceError(c, err, "Menu")
		return
	}
	util.Created(c, util.Response{"item": item})
}

func (h *MenuHandler) Update(c *gin.Context) {
	var req menuReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	item, err := h.Inventory.UpdateMenu(c.Request.Context(), c.Param("id"), req.MenuInput, req.Recipe)
	if err != nil {
		writeServiceError(c, err, "Menu")
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (h *MenuHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Inventory.DeleteMenu(c.Request.Context(), id); err != nil {
		writeServiceError(c, err, "Menu")
		return
	}
	util.Success(c, util.Response{"message": "Menu deleted", "id": id})
}

// Recalculate rebuilds every menu's availability (owner only).
func (h *MenuHandler) Recalculate(c *gin.Context) {
	n, err := h.Inventory.RecalculateAllMenus(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Menu")
		return
	}
	util.Success(c, util.Response{"message": "Menu availability recalculated", "count": n})
}
