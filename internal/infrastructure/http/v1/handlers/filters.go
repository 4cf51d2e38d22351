package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"pkgconsole/internal/core/apperror"
	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/infrastructure/http/v1/dto"
)

// FilterService is the saved filter use case the handler serves.
type FilterService interface {
	List(ctx context.Context, key string) ([]filter.Saved, error)
	Upsert(ctx context.Context, saved filter.Saved) (filter.Saved, error)
	Delete(ctx context.Context, id int64) error
}

// FilterHandler serves the saved filter resource.
type FilterHandler struct {
	*BaseHandler
	service FilterService
}

// NewFilterHandler creates a saved filter handler.
func NewFilterHandler(service FilterService) *FilterHandler {
	return &FilterHandler{BaseHandler: NewBaseHandler(), service: service}
}

// List handles GET /api/filters?key=<viewKey>.
func (h *FilterHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Query("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromSavedList(list))
}

// Upsert handles PUT /api/filters.
func (h *FilterHandler) Upsert(c *gin.Context) {
	var req dto.UpsertFilterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	saved, err := h.service.Upsert(c.Request.Context(), req.ToSaved())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.FromSaved(saved))
}

// Delete handles DELETE /api/filters/:id.
func (h *FilterHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.HandleError(c, apperror.NewValidation("invalid id").WithDetail("id", c.Param("id")))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
