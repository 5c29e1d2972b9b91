// Package emailclient calls the email service HTTP API.
package emailclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mail-assistant-go/internal/model"
)

// APIError is returned for any non-2xx response of the email service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("email service returned %d: %s", e.StatusCode, e.Detail)
}

// FilterParams holds the optional filter query parameters.
type FilterParams struct {
	Recipient string
	DateFrom  string
	DateTo    string
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

// Client talks to the email service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the service at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListAll(ctx context.Context) ([]model.Email, error) {
	var emails []model.Email
	err := c.do(ctx, http.MethodGet, "/emails", nil, nil, &emails)
	return emails, err
}

func (c *Client) ListUnread(ctx context.Context) ([]model.Email, error) {
	var emails []model.Email
	err := c.do(ctx, http.MethodGet, "/emails/unread", nil, nil, &emails)
	return emails, err
}

func (c *Client) Search(ctx context.Context, query string) ([]model.Email, error) {
	var emails []model.Email
	err := c.do(ctx, http.MethodGet, "/emails/search", url.Values{"q": {query}}, nil, &emails)
	return emails, err
}

func (c *Client) Filter(ctx context.Context, params FilterParams) ([]model.Email, error) {
	q := url.Values{}
	if params.Recipient != "" {
		q.Set("recipient", params.Recipient)
	}
	if params.DateFrom != "" {
		q.Set("date_from", params.DateFrom)
	}
	if params.DateTo != "" {
		q.Set("date_to", params.DateTo)
	}

	var emails []model.Email
	err := c.do(ctx, http.MethodGet, "/emails/filter", q, nil, &emails)
	return emails, err
}

func (c *Client) Get(ctx context.Context, id uint) (*model.Email, error) {
	var email model.Email
	if err := c.do(ctx, http.MethodGet, emailPath(id, ""), nil, nil, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

func (c *Client) MarkRead(ctx context.Context, id uint) (*model.Email, error) {
	var email model.Email
	if err := c.do(ctx, http.MethodPatch, emailPath(id, "/read"), nil, nil, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

func (c *Client) MarkUnread(ctx context.Context, id uint) (*model.Email, error) {
	var email model.Email
	if err := c.do(ctx, http.MethodPatch, emailPath(id, "/unread"), nil, nil, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

func (c *Client) Send(ctx context.Context, recipient, subject, body string) (*model.Email, error) {
	var email model.Email
	req := sendRequest{Recipient: recipient, Subject: subject, Body: body}
	if err := c.do(ctx, http.MethodPost, "/send", nil, req, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

// Delete removes an email and returns the service's confirmation message
func (c *Client) Delete(ctx context.Context, id uint) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, emailPath(id, ""), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func emailPath(id uint, suffix string) string {
	return "/emails/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json.Marshal failed: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("http.NewRequest failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response of %s %s failed: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(raw))}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Detail != "" {
			apiErr.Detail = eb.Detail
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response of %s %s failed: %w", method, path, err)
	}
	return nil
}
