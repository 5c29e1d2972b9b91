package handler

// SendEmailRequest represents the request body of the send operation.
// Fields must be present; empty strings are accepted.
type SendEmailRequest struct {
	Recipient *string `json:"recipient" binding:"required"`
	Subject   *string `json:"subject" binding:"required"`
	Body      *string `json:"body" binding:"required"`
}

// PromptRequest represents the request body of the prompt operation.
// The prompt must be present and may be empty.
type PromptRequest struct {
	Prompt *string `json:"prompt" binding:"required"`
}

// PromptResponse carries the rendered answer and the rendered transcript
type PromptResponse struct {
	Response     string `json:"response"`
	HTMLResponse string `json:"html_response"`
}

// MessageResponse represents a plain confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Code   int    `json:"code"`
}

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"
