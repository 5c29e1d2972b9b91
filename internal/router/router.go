package router

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mail-assistant-go/internal/handler"
	"mail-assistant-go/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// Service labels used in HTTP metrics
const (
	ServiceEmail  = "email"
	ServicePrompt = "prompt"
)

// SetupEmailRouter configures the email service router
func SetupEmailRouter(h *handler.Handlers, m *metrics.Metrics) *gin.Engine {
	r := newEngine(ServiceEmail, m)
	h.SetupRoutes(r)
	return r
}

// SetupPromptRouter configures the prompt service router
func SetupPromptRouter(h *handler.PromptHandlers, m *metrics.Metrics) *gin.Engine {
	r := newEngine(ServicePrompt, m)
	h.SetupRoutes(r)
	return r
}

func newEngine(service string, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(loggerMiddleware())
	r.Use(metricsMiddleware(service, m))
	r.Use(corsMiddleware())
	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(handler.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func loggerMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\" %s\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
			param.Keys[handler.RequestIDKey],
		)
	})
}

func metricsMiddleware(service string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(service, c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(service, c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// the UI page is served from a different origin than the prompt service
func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:   []string{requestIDHeader},
		MaxAge:          12 * time.Hour,
	})
}
