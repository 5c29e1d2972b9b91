package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mail-assistant-go/internal/service"
)

// SendEmail creates a new email from the mailbox owner
func (h *Handlers) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation_error",
			Detail: "Invalid request body: recipient, subject and body are required",
			Code:   http.StatusBadRequest,
		})
		return
	}

	email, err := h.emails.Send(c.Request.Context(), *req.Recipient, *req.Subject, *req.Body)
	if err != nil {
		abortWithError(c, err, "send email")
		return
	}

	c.JSON(http.StatusOK, email)
}

// ListEmails returns all emails, newest first
func (h *Handlers) ListEmails(c *gin.Context) {
	emails, err := h.emails.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err, "fetch emails")
		return
	}
	c.JSON(http.StatusOK, emails)
}

// SearchEmails returns emails whose subject, body or sender contains q
func (h *Handlers) SearchEmails(c *gin.Context) {
	q, ok := c.GetQuery("q")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation_error",
			Detail: "Query parameter q is required",
			Code:   http.StatusBadRequest,
		})
		return
	}

	emails, err := h.emails.Search(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, err, "search emails")
		return
	}
	c.JSON(http.StatusOK, emails)
}

// FilterEmails returns emails matching the optional recipient and date bounds
func (h *Handlers) FilterEmails(c *gin.Context) {
	emails, err := h.emails.Filter(c.Request.Context(), service.FilterParams{
		Recipient: c.Query("recipient"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
	})
	if err != nil {
		abortWithError(c, err, "filter emails")
		return
	}
	c.JSON(http.StatusOK, emails)
}

// UnreadEmails returns emails not yet read
func (h *Handlers) UnreadEmails(c *gin.Context) {
	emails, err := h.emails.Unread(c.Request.Context())
	if err != nil {
		abortWithError(c, err, "fetch unread emails")
		return
	}
	c.JSON(http.StatusOK, emails)
}

// GetEmail returns a single email
func (h *Handlers) GetEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	email, err := h.emails.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "fetch email")
		return
	}
	c.JSON(http.StatusOK, email)
}

// MarkRead marks an email as read
func (h *Handlers) MarkRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	email, err := h.emails.MarkRead(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "mark email as read")
		return
	}
	c.JSON(http.StatusOK, email)
}

// MarkUnread marks an email as unread
func (h *Handlers) MarkUnread(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	email, err := h.emails.MarkUnread(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "mark email as unread")
		return
	}
	c.JSON(http.StatusOK, email)
}

// DeleteEmail removes an email
func (h *Handlers) DeleteEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.emails.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err, "delete email")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Email deleted"})
}

// ResetDatabase wipes the store and reloads the seed emails
func (h *Handlers) ResetDatabase(c *gin.Context) {
	if err := h.emails.ResetToSeed(c.Request.Context(), service.TriggerAPI); err != nil {
		abortWithError(c, err, "reset database")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Database reset and emails reloaded"})
}
