package chat

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"brokercrm/internal/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/deals/:id/messages", h.ListMessages)
	rg.POST("/deals/:id/messages", h.SendMessage)
	rg.GET("/deals/:id/chat/ws", h.ConnectWS)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	dealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || dealID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal id")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	m, err := h.service.Send(c.Request.Context(), dealID, c.GetInt64("user_id"), req.Text)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message text is required")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to send message")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) ListMessages(c *gin.Context) {
	dealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || dealID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal id")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	msgs, err := h.service.History(c.Request.Context(), dealID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load messages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

// ConnectWS subscribes the caller to the deal's live message feed.
func (h *Handler) ConnectWS(c *gin.Context) {
	dealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || dealID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal id")
		return
	}
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("chat: websocket upgrade failed: %v", err)
		return
	}

	sub := h.hub.Join(dealID, conn)
	defer h.hub.Leave(sub)

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req sendMessageRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if _, err := h.service.Send(c.Request.Context(), dealID, userID, req.Text); err != nil {
			sub.Send(gin.H{"error": "failed to send message"})
		}
	}
}
