package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ResetScheduler controls the scheduled mailbox reset
type ResetScheduler interface {
	Start() error
	Stop() error
	IsRunning() bool
	RunOnce(ctx context.Context) error
	GetNextRun() time.Time
}

// SchedulerStatusResponse represents the reset scheduler state
type SchedulerStatusResponse struct {
	Status  string     `json:"status"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// EnableScheduler exposes the scheduler routes. Call it before SetupRoutes.
func (h *Handlers) EnableScheduler(s ResetScheduler) {
	h.scheduler = s
}

func (h *Handlers) setupSchedulerRoutes(router *gin.Engine) {
	if h.scheduler == nil {
		return
	}

	s := router.Group("/scheduler")
	{
		s.GET("/status", h.GetSchedulerStatus)
		s.POST("/start", h.StartScheduler)
		s.POST("/stop", h.StopScheduler)
		s.POST("/run", h.RunResetOnce)
	}
}

// StartScheduler starts the reset scheduler
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:  "scheduler_error",
			Detail: err.Error(),
			Code:   http.StatusConflict,
		})
		return
	}

	c.JSON(http.StatusOK, h.schedulerStatus())
}

// StopScheduler stops the reset scheduler
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:  "scheduler_error",
			Detail: "Failed to stop scheduler",
			Code:   http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, h.schedulerStatus())
}

// RunResetOnce resets the mailbox immediately through the scheduler
func (h *Handlers) RunResetOnce(c *gin.Context) {
	if err := h.scheduler.RunOnce(c.Request.Context()); err != nil {
		abortWithError(c, err, "reset database")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Database reset and emails reloaded"})
}

// GetSchedulerStatus returns the current scheduler status
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.schedulerStatus())
}

func (h *Handlers) schedulerStatus() SchedulerStatusResponse {
	if !h.scheduler.IsRunning() {
		return SchedulerStatusResponse{Status: "stopped"}
	}

	next := h.scheduler.GetNextRun()
	return SchedulerStatusResponse{Status: "running", NextRun: &next}
}
