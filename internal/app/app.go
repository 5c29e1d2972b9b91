package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"mail-assistant-go/internal/bridge"
	"mail-assistant-go/internal/config"
	"mail-assistant-go/internal/db"
	"mail-assistant-go/internal/emailclient"
	"mail-assistant-go/internal/handler"
	"mail-assistant-go/internal/llm"
	"mail-assistant-go/internal/metrics"
	"mail-assistant-go/internal/repository"
	"mail-assistant-go/internal/router"
	"mail-assistant-go/internal/scheduler"
	"mail-assistant-go/internal/service"
	"mail-assistant-go/internal/tool"
)

const shutdownTimeout = 30 * time.Second

// RunEmailServer initializes and starts the email service
func RunEmailServer(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if err := cfg.ValidateEmailServer(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logrus.Info("Starting email service")

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(dbConn); err != nil {
			logrus.Errorf("Failed to close database: %v", err)
		}
	}()

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	emails := service.NewEmailService(repository.New(dbConn), m)

	if err := emails.ResetToSeed(context.Background(), service.TriggerStartup); err != nil {
		return fmt.Errorf("failed to load seed emails: %w", err)
	}

	var sched *scheduler.Scheduler
	if cfg.Seed.ResetSchedule != "" {
		sched = scheduler.NewScheduler(cfg.Seed.ResetSchedule, emails)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start reset scheduler: %w", err)
		}
	}

	h := handler.NewHandlers(emails, cfg.UI, prometheus.DefaultGatherer)
	if sched != nil {
		h.EnableScheduler(sched)
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.SetupEmailRouter(h, m),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	err = serve(srv)

	if sched != nil {
		if err := sched.Stop(); err != nil {
			logrus.Errorf("Failed to stop reset scheduler: %v", err)
		}
	}

	return err
}

// RunPromptServer initializes and starts the prompt service
func RunPromptServer(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if err := cfg.ValidatePromptServer(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logrus.Info("Starting prompt service")

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	emailAPI := emailclient.New(cfg.Prompt.EmailServiceURL, cfg.Prompt.ToolTimeout)
	toolServer := tool.NewServer(emailAPI)

	session, err := bridge.ConnectTools(context.Background(), toolServer)
	if err != nil {
		return fmt.Errorf("failed to connect tool session: %w", err)
	}
	defer session.Close()

	client, model, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	logrus.WithField("model", model.String()).Info("Using model")

	b := bridge.New(client, session, m, bridge.Options{
		Model:        model.Name,
		MaxTurns:     cfg.LLM.MaxTurns,
		OwnerAddress: cfg.LLM.OwnerAddress,
	})

	tools := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return toolServer }, nil)

	h := handler.NewPromptHandlers(b, tools, prometheus.DefaultGatherer)
	srv := &http.Server{
		Addr:         ":" + cfg.Prompt.Port,
		Handler:      router.SetupPromptRouter(h, m),
		ReadTimeout:  cfg.Prompt.ReadTimeout,
		WriteTimeout: cfg.Prompt.WriteTimeout,
	}

	return serve(srv)
}

func loadConfig(envFile string) (*config.Config, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg config.LogConfig) error {
	if cfg.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logrus.SetLevel(level)
	return nil
}

// serve runs srv until SIGINT or SIGTERM, then shuts it down gracefully
func serve(srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Starting HTTP server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-quit:
	}

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
