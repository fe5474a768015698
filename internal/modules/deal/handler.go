package deal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brokercrm/internal/domain"
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
	rg.POST("/deals", h.CreateDeal)
	rg.GET("/deals", h.ListDeals)
	rg.GET("/deals/:id", h.GetDeal)
	rg.DELETE("/deals/:id", h.DeleteDeal)

	rg.POST("/deals/:id/close", h.CloseDeal)
	rg.POST("/deals/:id/reopen", h.ReopenDeal)

	rg.POST("/deals/:id/quotes", h.AddQuote)
	rg.GET("/deals/:id/quotes", h.ListQuotes)
	rg.POST("/deals/:id/policies", h.AddPolicy)
	rg.GET("/deals/:id/policies", h.ListPolicies)
	rg.POST("/deals/:id/payments", h.AddPayment)
	rg.GET("/deals/:id/payments", h.ListPayments)
	rg.POST("/payments/:id/conduct", h.ConductPayment)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		ID:   c.GetInt64("user_id"),
		Role: domain.Role(c.GetString("role")),
	}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto the envelope. Not-found and
// forbidden stay distinct: a deal outside the caller's scope reads as
// absent, an ownership failure on a visible deal reads as forbidden.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Deal not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Operation not allowed")
	case errors.Is(err, ErrAlreadyClosed):
		response.Error(c, http.StatusBadRequest, "ALREADY_CLOSED", "Deal is already closed")
	case errors.Is(err, ErrNotClosed):
		response.Error(c, http.StatusBadRequest, "NOT_CLOSED", "Deal is not closed")
	case errors.Is(err, ErrPolicyNumberTaken):
		response.Error(c, http.StatusConflict, "POLICY_NUMBER_TAKEN", "Policy number already exists")
	case errors.Is(err, ErrClientConflict):
		response.Error(c, http.StatusBadRequest, "CLIENT_CONFLICT", "Policy client fields point at different clients")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}

func (h *Handler) CreateDeal(c *gin.Context) {
	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", fields)
		return
	}

	d, err := h.service.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"deal": d})
}

func (h *Handler) GetDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deal": d})
}

func (h *Handler) ListDeals(c *gin.Context) {
	var req ListDealsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	deals, total, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deals": deals, "total": total})
}

func (h *Handler) DeleteDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) CloseDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req CloseDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	d, err := h.service.Close(c.Request.Context(), id, actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deal": d})
}

func (h *Handler) ReopenDeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, err := h.service.Reopen(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deal": d})
}

func (h *Handler) AddQuote(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req AddQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	q, err := h.service.AddQuote(c.Request.Context(), id, actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quote": q})
}

func (h *Handler) ListQuotes(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	quotes, err := h.service.ListQuotes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quotes": quotes})
}

func (h *Handler) AddPolicy(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req AddPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.AddPolicy(c.Request.Context(), id, actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"policy": p})
}

func (h *Handler) ListPolicies(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	policies, err := h.service.ListPolicies(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"policies": policies})
}

func (h *Handler) AddPayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.AddPayment(c.Request.Context(), id, actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": p})
}

func (h *Handler) ListPayments(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	payments, err := h.service.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

func (h *Handler) ConductPayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ConductPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	fr, err := h.service.ConductPayment(c.Request.Context(), id, actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"financial_record": fr})
}
