package handler_test

import (
	"context"
	"net/http"
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
	"mail-assistant-go/internal/scheduler"
	"mail-assistant-go/internal/service"
)

func TestSchedulerRoutesDisabledByDefault(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/scheduler/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedulerRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	svc := service.NewEmailService(repository.New(dbtest.New(t)), m)
	require.NoError(t, svc.ResetToSeed(context.Background(), service.TriggerStartup))

	sched := scheduler.NewScheduler("0 0 3 * * *", svc)
	defer sched.Stop()

	h := handler.NewHandlers(svc, config.UIConfig{}, reg)
	h.EnableScheduler(sched)
	env := &testEnv{router: router.SetupEmailRouter(h, m), emails: svc}

	w := env.do(t, http.MethodGet, "/scheduler/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"stopped"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/scheduler/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[handler.SchedulerStatusResponse](t, w)
	assert.Equal(t, "running", status.Status)
	require.NotNil(t, status.NextRun)
	assert.Equal(t, 3, status.NextRun.Hour())

	w = env.do(t, http.MethodPost, "/scheduler/start", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/send", `{"recipient":"alice@work.com","subject":"Hi","body":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/scheduler/run", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/emails", "")
	assert.Len(t, decode[[]model.Email](t, w), 6)

	w = env.do(t, http.MethodPost, "/scheduler/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"stopped"}`, w.Body.String())
}
