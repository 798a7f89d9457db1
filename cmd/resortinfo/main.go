package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/resortinfo/internal/api"
	"github.com/MikeSquared-Agency/resortinfo/internal/config"
	"github.com/MikeSquared-Agency/resortinfo/internal/conversation"
	"github.com/MikeSquared-Agency/resortinfo/internal/dataset"
	"github.com/MikeSquared-Agency/resortinfo/internal/gsheet"
	"github.com/MikeSquared-Agency/resortinfo/internal/hermes"
	"github.com/MikeSquared-Agency/resortinfo/internal/query"
	"github.com/MikeSquared-Agency/resortinfo/internal/store"
	"github.com/MikeSquared-Agency/resortinfo/internal/tools"
	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("resortinfo starting", "port", cfg.Port, "data_dir", cfg.DataDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queries := query.New(dataset.NewSource(cfg.DataDir), cfg.TokenBudget, slog.Default())

	// Google Sheets (primary conversation sink)
	var sheet conversation.Appender
	if cfg.SpreadsheetID != "" {
		sheet = gsheet.NewClient(cfg.CredentialsPath, cfg.SpreadsheetID, cfg.SheetName, conversation.Header, slog.Default())
		slog.Info("sheets appender ready", "sheet", cfg.SheetName)
	} else {
		slog.Warn("SPREADSHEET_ID not set, conversation logging disabled")
	}

	var mirrors []conversation.Mirror

	// Database (optional mirror + history)
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare database schema", "error", err)
			os.Exit(1)
		}
		mirrors = append(mirrors, db)
		slog.Info("database connected")
	}

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		var err error
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		mirrors = append(mirrors, hermesClient)
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	convos := conversation.NewLogger(sheet, slog.Default(), mirrors...)

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectConversationLog, convos.HandleLogRequest); err != nil {
			slog.Error("failed to subscribe to conversation log requests", "error", err)
			os.Exit(1)
		}
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, queries, convos, slog.Default())
	if db != nil {
		srv.SetHistory(db)
	}
	if cfg.MCPEnabled {
		srv.Mount("/mcp", tools.New(queries, convos, slog.Default()).HTTPHandler(version))
		slog.Info("MCP endpoint mounted", "path", "/mcp")
	}
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"version":   version,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("resortinfo ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("resortinfo stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
