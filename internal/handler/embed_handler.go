package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/homeolab/homeoagent/internal/pkg/errcode"
	"github.com/homeolab/homeoagent/internal/pkg/response"
	"github.com/homeolab/homeoagent/internal/service"
)

type EmbedHandler struct {
	embeds *service.EmbedService
}

func NewEmbedHandler(embeds *service.EmbedService) *EmbedHandler {
	return &EmbedHandler{embeds: embeds}
}

type embedRequest struct {
	Text     string `json:"text"`
	TaskType string `json:"task_type"`
}

func (h *EmbedHandler) Embed(c *gin.Context) {
	var req embedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	values, err := h.embeds.Embed(c.Request.Context(), req.Text, req.TaskType)
	if err != nil {
		if errors.Is(err, service.ErrAIUnavailable) {
			response.Error(c, errcode.ErrAIUnavailable, "embedding provider not configured")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"embedding": values,
		"dimension": len(values),
	})
}

func (h *EmbedHandler) Status(c *gin.Context) {
	response.Success(c, h.embeds.Status(c.Request.Context()))
}
