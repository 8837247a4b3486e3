package handler

import (
	"errors"
	"net/http"

	"eduviz-backend/internal/model"
	"eduviz-backend/internal/service"
	"eduviz-backend/internal/storage"
	"eduviz-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type GenerateHandler struct {
	generationService *service.GenerationService
}

func NewGenerateHandler(generationService *service.GenerationService) *GenerateHandler {
	return &GenerateHandler{
		generationService: generationService,
	}
}

func (h *GenerateHandler) CreateSession(c *gin.Context) {
	resp, err := h.generationService.CreateSession()
	if err != nil {
		logger.Errorf("创建会话失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GenerateHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.generationService.DeleteSession(sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": sessionID})
}

// Generate 处理一次表单提交；校验不过返回字段级错误，不会打到模型
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.generationService.Generate(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromptRequired),
			errors.Is(err, service.ErrPromptTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "prompt"})
		case errors.Is(err, service.ErrInvalidDomain):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "domain"})
		case errors.Is(err, service.ErrInvalidPhoto):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "photo_data_uri"})
		case errors.Is(err, storage.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, storage.ErrRequestInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "a request is already in flight"})
		default:
			logger.Errorf("生成请求失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GenerateHandler) ListHistory(c *gin.Context) {
	sessionID := c.Param("session_id")

	entries, err := h.generationService.ListHistory(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"entries":    entries,
	})
}

// GetHistoryEntry 回放单条历史：原样返回存储的请求字段和结果
func (h *GenerateHandler) GetHistoryEntry(c *gin.Context) {
	sessionID := c.Param("session_id")
	entryID := c.Param("entry_id")

	entry, err := h.generationService.GetHistoryEntry(sessionID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, storage.ErrEntryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListDomains 返回固定的 8 个学科，顺序即展示顺序
func (h *GenerateHandler) ListDomains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"domains": model.AllDomains()})
}
