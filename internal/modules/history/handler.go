package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brokercrm/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/deals/:id/history", h.DealHistory)
	rg.GET("/deals/:id/related", h.RelatedIDs)
}

func (h *Handler) DealHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal id")
		return
	}

	entries, err := h.service.DealHistory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDealNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Deal not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load deal history")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": entries})
}

func (h *Handler) RelatedIDs(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal id")
		return
	}

	related, err := h.service.CollectRelatedIDs(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to collect related ids")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"related": related})
}
