package note

import (
	"net/http"
	"strconv"

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
	rg.POST("/notes", h.CreateNote)
	rg.GET("/deals/:id/notes", h.ListDealNotes)
}

func (h *Handler) CreateNote(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", fields)
		return
	}

	n, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		if err == ErrValidation {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create note")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"note": n})
}

func (h *Handler) ListDealNotes(c *gin.Context) {
	dealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || dealID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal id")
		return
	}

	notes, err := h.service.ListByDeal(c.Request.Context(), dealID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list notes")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notes": notes})
}
