package document

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
	rg.POST("/deals/:id/documents", h.UploadDocument)
	rg.GET("/deals/:id/documents", h.ListDealDocuments)
}

func (h *Handler) UploadDocument(c *gin.Context) {
	dealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || dealID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing file")
		return
	}

	doc, err := h.service.Upload(c.Request.Context(), dealID, c.GetInt64("user_id"), fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload document")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"document": doc})
}

func (h *Handler) ListDealDocuments(c *gin.Context) {
	dealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || dealID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal id")
		return
	}

	docs, err := h.service.ListByDeal(c.Request.Context(), dealID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list documents")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"documents": docs})
}
