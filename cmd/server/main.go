package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"grant-desk/api"
	"grant-desk/auth"
	"grant-desk/domain"
	"grant-desk/internal"
	"grant-desk/moderation"
	"grant-desk/observability"
	"grant-desk/relay"
	"grant-desk/repositories"
	"grant-desk/search"
	"grant-desk/services"
	"grant-desk/workers"
	"grant-desk/ws"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before exit.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := config.CharacterRune()
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB for records, Bluge for full-text search)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}

	stats := observability.NewRelayStats()

	if logger.Enabled(ctx, slog.LevelDebug) {
		debugPort := 8081
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s", debugPort, endpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		internal.StartDebugServer(db, debugPort, endpoint, internal.MessageMapper, func() map[string]any {
			snapshot := stats.GetLatest()
			return map[string]any{
				"live":    snapshot.LiveConnections,
				"relayed": snapshot.MessagesRelayed,
				"dropped": snapshot.CopiesDropped,
			}
		})
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Chat core: directory, durable message log, moderated relay
	messageRepository := repositories.NewMessageRepository(db, logger)

	messageLog := relay.NewMessageLog(messageRepository, logger)
	if err := messageLog.Load(); err != nil {
		return exitRuntime, fmt.Errorf("message log reload failed: %w", err)
	}

	moderator, err := moderation.NewDefaultModerator(charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator init failed: %w", err)
	}

	indexQueue := make(chan domain.ChatMessage, config.IndexQueueSize)
	chatRelay := relay.NewRelay(logger, relay.NewDirectory(), messageLog, stats).
		WithModerator(&moderator).
		WithIndexQueue(indexQueue)

	// 4. Background workers under supervision
	messageIndex := search.NewMessageIndex(blugeWriter, logger)
	sup := workers.NewSupervisor(logger)
	sup.Add(
		search.NewIndexer(logger, messageIndex, indexQueue),
		workers.NewHeartbeatWorker(logger, stats),
	)

	// 5. HTTP surface: REST API plus the websocket chat endpoint
	tokens := auth.NewTokenService(config.JWTSecret, config.AuthTokenDuration)
	chatHandler := ws.NewHandler(logger, chatRelay, tokens, stats, config.ConnectionBufferSize).
		WithSearcher(messageIndex)

	authService := services.NewAuthService(repositories.NewUserRepository(db), tokens)
	applicationService := services.NewApplicationService(repositories.NewApplicationRepository(db))
	server := api.NewServer(logger, authService, applicationService, tokens, chatHandler, stats)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:    address,
		Handler: server.Router(),
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting workers...")
		sup.Run(ctx)
	}()

	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Graceful Shutdown
	// Let in-flight requests finish and workers drain their queues.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
