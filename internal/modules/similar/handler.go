package similar

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"brokercrm/internal/pkg/response"
	"brokercrm/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/deals/similar", h.FindSimilar)
}

func (h *Handler) FindSimilar(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", fields)
		return
	}

	result, err := h.service.FindSimilar(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDealNotFound):
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request",
				gin.H{"target_deal_id": "deal not found"})
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to find similar deals")
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}
