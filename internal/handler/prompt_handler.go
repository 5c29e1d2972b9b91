package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"mail-assistant-go/internal/bridge"
)

// PromptRunner answers a free-text prompt
type PromptRunner interface {
	Run(ctx context.Context, prompt string) (*bridge.Result, error)
}

// PromptHandlers contains the HTTP handlers of the prompt service
type PromptHandlers struct {
	runner   PromptRunner
	tools    http.Handler
	gatherer prometheus.Gatherer
}

// NewPromptHandlers creates new prompt handlers. tools, when not nil, serves
// the email tool set to external MCP clients.
func NewPromptHandlers(runner PromptRunner, tools http.Handler, gatherer prometheus.Gatherer) *PromptHandlers {
	return &PromptHandlers{runner: runner, tools: tools, gatherer: gatherer}
}

// SetupRoutes sets up all HTTP routes
func (h *PromptHandlers) SetupRoutes(router *gin.Engine) {
	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	router.POST("/prompt", h.HandlePrompt)

	if h.tools != nil {
		router.Any("/mcp", gin.WrapH(h.tools))
	}
}

// HandlePrompt forwards the prompt to the model and returns the rendered result
func (h *PromptHandlers) HandlePrompt(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation_error",
			Detail: "Invalid request body: prompt is required",
			Code:   http.StatusBadRequest,
		})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), *req.Prompt)
	if err != nil {
		logrus.WithField("request_id", c.GetString(RequestIDKey)).Errorf("Prompt failed: %v", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:  "upstream_error",
			Detail: err.Error(),
			Code:   http.StatusBadGateway,
		})
		return
	}

	c.JSON(http.StatusOK, PromptResponse{
		Response:     result.Response,
		HTMLResponse: result.HTMLResponse,
	})
}
