package handler

import (
	"net/http"

	"github.com/Benediks/Sidaya/internal/promo"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
)

// PromoHandler serves /api/promo.
type PromoHandler struct {
	Promos *promo.Service
}

func NewPromoHandler(svc *promo.Service) *PromoHandler {
	return &PromoHandler{Promos: svc}
}

func (h *PromoHandler) List(c *gin.Context) {
	items, err := h.Promos.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Promo")
		return
	}
	util.Success(c, util.Response{"items": items, "total": len(items)})
}

func (h *PromoHandler) Get(c *gin.Context) {
	detail, err := h.Promos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "Promo")
		return
	}
	util.Success(c, util.Response{"detail": detail})
}

func (h *PromoHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req promo.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	owner := user.ID
	p, err := h.Promos.Create(c.Request.Context(), req, &owner)
	if err != nil {
		writeServiceError(c, err, "Promo")
		return
	}
	util.Created(c, util.Response{"item": p})
}

func (h *PromoHandler) Update(c *gin.Context) {
	var req promo.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	p, err := h.Promos.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err, "Promo")
		return
	}
	util.Success(c, util.Response{"item": p})
}

func (h *PromoHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Promos.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err, "Promo")
		return
	}
	util.Success(c, util.Response{"message": "Promo deleted", "id": id})
}
