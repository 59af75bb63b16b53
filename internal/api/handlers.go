package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"maumcare/internal/auth"
	"maumcare/internal/engine"
	"maumcare/internal/models"
	"maumcare/internal/retrieval"
	"maumcare/internal/service/counsel"
	"maumcare/internal/storage"
	"maumcare/internal/worker"
)

// ManualIndex is the reference manual exposed by the rag endpoints.
type ManualIndex interface {
	engine.Retriever
	Info() retrieval.Info
}

// Handler wires HTTP routes to the counselling service and the archive.
type Handler struct {
	chat    *counsel.Service
	store   engine.Store
	manual  ManualIndex
	web     engine.Retriever
	auth    *auth.Service
	limiter *rateLimiter
}

type Option func(*Handler)

// WithArchive exposes stored conversations on the admin routes.
func WithArchive(store engine.Store) Option {
	return func(h *Handler) { h.store = store }
}

func WithManual(m ManualIndex) Option {
	return func(h *Handler) { h.manual = m }
}

func WithWebSearch(r engine.Retriever) Option {
	return func(h *Handler) { h.web = r }
}

// WithRateLimit caps chat requests per client within the window.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(h *Handler) { h.limiter = newRateLimiter(limit, window) }
}

// NewHandler constructs a Handler instance.
func NewHandler(chat *counsel.Service, authService *auth.Service, opts ...Option) *Handler {
	h := &Handler{
		chat:    chat,
		auth:    authService,
		limiter: newRateLimiter(DefaultChatLimit, DefaultChatWindow),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes attaches all HTTP routes to the router. Admin routes exist
// only when admin keys and an archive are configured.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)

	api := router.Group("/api")
	api.POST("/chat", h.rateLimit(), h.chatMessage)
	api.POST("/analysis/history", h.analyzeHistory)
	api.GET("/rag/info", h.ragInfo)
	api.GET("/rag/search", h.ragSearch)

	if h.auth.Enabled() && h.store != nil {
		admin := api.Group("/admin")
		admin.Use(h.auth.Middleware())
		admin.GET("/conversations", h.listConversations)
		admin.GET("/conversations/:key", h.getConversation)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// turnPayload accepts "ai" as an alias of the assistant role.
type turnPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	History                []turnPayload `json:"history"`
	Message                *string       `json:"message"`
	IsAdmin                bool          `json:"is_admin"`
	IncludeHistoryAnalysis bool          `json:"include_history_analysis"`
}

type historyRequest struct {
	History []turnPayload `json:"history"`
	Message string        `json:"message"`
}

func (h *Handler) chatMessage(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Message == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	turns, err := toTurns(req.History)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp := h.chat.Chat(c.Request.Context(), counsel.ChatRequest{
		History:                turns,
		Message:                *req.Message,
		IsAdmin:                req.IsAdmin && h.auth.IsAdmin(c),
		IncludeHistoryAnalysis: req.IncludeHistoryAnalysis,
		ClientID:               c.ClientIP(),
		Throttled:              throttled(c),
	})
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) analyzeHistory(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	turns, err := toTurns(req.History)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	analysis := h.chat.AnalyzeHistory(turns, req.Message)
	if analysis == nil {
		analysis = []models.TurnAnalysis{}
	}
	c.JSON(http.StatusOK, gin.H{"history_analysis": analysis})
}

func (h *Handler) ragInfo(c *gin.Context) {
	if h.manual == nil {
		c.JSON(http.StatusOK, retrieval.Info{Collection: retrieval.DefaultCollection})
		return
	}
	c.JSON(http.StatusOK, h.manual.Info())
}

func (h *Handler) ragSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	includeWeb, err := parseBoolQuery(c, "web")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := []models.Passage{}
	if h.manual != nil {
		passages, err := h.manual.Search(c.Request.Context(), query, nil)
		if err != nil {
			writeError(c, err)
			return
		}
		results = append(results, passages...)
	}
	if includeWeb && h.web != nil {
		passages, err := h.web.Search(c.Request.Context(), query, nil)
		if err != nil {
			log.Printf("web search failed: %v", err)
		} else {
			results = append(results, passages...)
		}
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
}

func (h *Handler) listConversations(c *gin.Context) {
	includeTest, err := parseBoolQuery(c, "include_test")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := h.store.List(c.Request.Context(), includeTest)
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []models.ConversationSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": items})
}

func (h *Handler) getConversation(c *gin.Context) {
	isTest, err := parseBoolQuery(c, "is_test")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.store.Get(c.Request.Context(), c.Param("key"), isTest)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func toTurns(payload []turnPayload) ([]models.Turn, error) {
	turns := make([]models.Turn, 0, len(payload))
	for i, p := range payload {
		var role models.Role
		switch strings.ToLower(strings.TrimSpace(p.Role)) {
		case "user":
			role = models.RoleUser
		case "assistant", "ai":
			role = models.RoleAssistant
		default:
			return nil, fmt.Errorf("history[%d]: invalid role %q", i, p.Role)
		}
		turns = append(turns, models.Turn{Role: role, Content: p.Content})
	}
	return turns, nil
}

func parseBoolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrMissingKey), errors.Is(err, auth.ErrInvalidKey):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, worker.ErrDispatcherBusy):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "server is busy, please retry"})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
