package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mail-assistant-go/internal/config"
	"mail-assistant-go/internal/db/dbtest"
	"mail-assistant-go/internal/handler"
	"mail-assistant-go/internal/metrics"
	"mail-assistant-go/internal/model"
	"mail-assistant-go/internal/repository"
	"mail-assistant-go/internal/router"
	"mail-assistant-go/internal/service"
)

type testEnv struct {
	router http.Handler
	emails *service.EmailService
}

func newTestEnv(t *testing.T) *testEnv {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	svc := service.NewEmailService(repository.New(dbtest.New(t)), m)
	require.NoError(t, svc.ResetToSeed(context.Background(), service.TriggerStartup))

	h := handler.NewHandlers(svc, config.UIConfig{
		EmailServer: "http://mail.test:8000",
		LLMServer:   "http://llm.test:8001",
	}, reg)

	return &testEnv{router: router.SetupEmailRouter(h, m), emails: svc}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListEmails(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/emails", "")
	require.Equal(t, http.StatusOK, w.Code)

	emails := decode[[]model.Email](t, w)
	assert.Len(t, emails, 6)
	for _, e := range emails {
		assert.False(t, e.Read)
	}
}

func TestSendThenGet(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/send", `{"recipient":"alice@work.com","subject":"Hi","body":"Lunch tomorrow?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	sent := decode[model.Email](t, w)
	assert.Equal(t, model.OwnerSender, sent.Sender)
	assert.False(t, sent.Read)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/emails/%d", sent.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.Email](t, w)
	assert.Equal(t, "alice@work.com", got.Recipient)
	assert.Equal(t, "Hi", got.Subject)
	assert.Equal(t, "Lunch tomorrow?", got.Body)
}

func TestListingsNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/send", `{"recipient":"alice@work.com","subject":"Newest","body":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	sent := decode[model.Email](t, w)

	for _, path := range []string{
		"/emails",
		"/emails/unread",
		"/emails/search?q=",
		"/emails/filter",
		"/emails/filter?date_from=" + sent.Timestamp.UTC().Format(service.DateLayout),
	} {
		w := env.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)

		emails := decode[[]model.Email](t, w)
		require.NotEmpty(t, emails, path)
		assert.Equal(t, "Newest", emails[0].Subject, path)
		for i := 1; i < len(emails); i++ {
			assert.False(t, emails[i].Timestamp.After(emails[i-1].Timestamp), path)
		}
	}
}

func TestSendValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"subject":"Hi","body":"x"}`,
		`{"recipient":"a@b.com","subject":"Hi","body":null}`,
		`{"recipient":"a@b.com","body":"x"}`,
		`not json`,
	} {
		w := env.do(t, http.MethodPost, "/send", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "validation_error", decode[handler.ErrorResponse](t, w).Error)
	}
}

func TestSendAcceptsEmptyFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/send", `{"recipient":"not-an-address","subject":"","body":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	sent := decode[model.Email](t, w)
	assert.Equal(t, "not-an-address", sent.Recipient)
	assert.Empty(t, sent.Subject)
}

func TestGetEmailErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/emails/99999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[handler.ErrorResponse](t, w)
	assert.Equal(t, "Email not found", resp.Detail)

	w = env.do(t, http.MethodGet, "/emails/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkReadUnread(t *testing.T) {
	env := newTestEnv(t)
	emails, err := env.emails.List(context.Background())
	require.NoError(t, err)
	id := emails[0].ID

	w := env.do(t, http.MethodPatch, fmt.Sprintf("/emails/%d/read", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.Email](t, w).Read)

	w = env.do(t, http.MethodGet, "/emails/unread", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Email](t, w), 5)

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/emails/%d/unread", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[model.Email](t, w).Read)

	w = env.do(t, http.MethodPatch, "/emails/99999/read", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPatch, "/emails/99999/unread", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEmail(t *testing.T) {
	env := newTestEnv(t)
	emails, err := env.emails.List(context.Background())
	require.NoError(t, err)
	id := emails[0].ID

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/emails/%d", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Email deleted"}`, w.Body.String())

	w = env.do(t, http.MethodGet, fmt.Sprintf("/emails/%d", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/emails/%d", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchEmails(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/emails/search?q=QUARTERLY", "")
	require.Equal(t, http.StatusOK, w.Code)
	emails := decode[[]model.Email](t, w)
	require.Len(t, emails, 1)
	assert.Equal(t, "Quarterly Report", emails[0].Subject)

	w = env.do(t, http.MethodGet, "/emails/search?q=", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Email](t, w), 6)

	w = env.do(t, http.MethodGet, "/emails/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterEmails(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/emails/filter?date_from=2099-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.Email](t, w))

	w = env.do(t, http.MethodGet, "/emails/filter?date_from=1970-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Email](t, w), 6)

	w = env.do(t, http.MethodGet, "/emails/filter?recipient=boss@email.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Email](t, w), 1)

	w = env.do(t, http.MethodGet, "/emails/filter?date_from=not-a-date", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[handler.ErrorResponse](t, w)
	assert.Equal(t, "invalid_argument", resp.Error)
	assert.Equal(t, "Invalid date_from format. Use YYYY-MM-DD", resp.Detail)

	w = env.do(t, http.MethodGet, "/emails/filter?date_to=31-12-2024", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetDatabase(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/send", `{"recipient":"alice@work.com","subject":"Hi","body":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/reset_database", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Database reset and emails reloaded"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/emails", "")
	emails := decode[[]model.Email](t, w)
	assert.Len(t, emails, 6)
	for _, e := range emails {
		assert.NotEqual(t, "Hi", e.Subject)
	}
}

func TestIndexInjectsServerURLs(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `"http://mail.test:8000"`)
	assert.Contains(t, w.Body.String(), `"http://llm.test:8001"`)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/emails", "")

	w := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mail_assistant_http_requests_total{method="GET",route="/emails",service="email",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `mail_assistant_resets_total{trigger="startup"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/emails/1/read", nil)
	req.Header.Set("Origin", "http://ui.test")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
