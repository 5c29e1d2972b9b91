package handler

import (
	"bytes"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"mail-assistant-go/internal/config"
	"mail-assistant-go/internal/service"
)

//go:embed templates/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Handlers contains the HTTP handlers of the email service
type Handlers struct {
	emails    *service.EmailService
	ui        config.UIConfig
	gatherer  prometheus.Gatherer
	scheduler ResetScheduler
}

// NewHandlers creates new HTTP handlers
func NewHandlers(emails *service.EmailService, ui config.UIConfig, gatherer prometheus.Gatherer) *Handlers {
	return &Handlers{
		emails:   emails,
		ui:       ui,
		gatherer: gatherer,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.Index)
	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	router.GET("/reset_database", h.ResetDatabase)

	router.POST("/send", h.SendEmail)

	emails := router.Group("/emails")
	{
		emails.GET("", h.ListEmails)
		emails.GET("/search", h.SearchEmails)
		emails.GET("/filter", h.FilterEmails)
		emails.GET("/unread", h.UnreadEmails)
		emails.GET("/:id", h.GetEmail)
		emails.PATCH("/:id/read", h.MarkRead)
		emails.PATCH("/:id/unread", h.MarkUnread)
		emails.DELETE("/:id", h.DeleteEmail)
	}

	h.setupSchedulerRoutes(router)
}

// Health handles liveness requests
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Index serves the UI page with the service base URLs injected
func (h *Handlers) Index(c *gin.Context) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, map[string]string{
		"EmailServer": h.ui.EmailServer,
		"LLMServer":   h.ui.LLMServer,
	})
	if err != nil {
		logrus.Errorf("Failed to render index page: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:  "template_error",
			Detail: "Failed to render page",
			Code:   http.StatusInternalServerError,
		})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "invalid_id",
			Detail: "Invalid email ID",
			Code:   http.StatusBadRequest,
		})
		return 0, false
	}
	return uint(id), true
}

// abortWithError writes the error response matching err's class
func abortWithError(c *gin.Context, err error, action string) {
	var invalid *service.InvalidArgumentError

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:  "not_found",
			Detail: "Email not found",
			Code:   http.StatusNotFound,
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "invalid_argument",
			Detail: invalid.Detail,
			Code:   http.StatusBadRequest,
		})
	default:
		logrus.WithField("request_id", c.GetString(RequestIDKey)).Errorf("Failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:  "database_error",
			Detail: "Failed to " + action,
			Code:   http.StatusInternalServerError,
		})
	}
}
