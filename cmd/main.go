package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/infrastructure/http/server"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Live store & Search index (Bluge)
	store := repositories.NewMessageRepository(logger)

	blugeCfg := bluge.InMemoryOnlyConfig()
	if config.IndexPath != "" {
		blugeCfg = bluge.DefaultConfig(config.IndexPath)
	}
	blugeWriter, err := bluge.OpenWriter(blugeCfg)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()
	index := projection.NewSearchIndex(blugeWriter, logger)

	// 2.bis Optional archive (BadgerDB)
	sinks := []contract.EventSink{index}
	if config.ArchivePath != "" {
		db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
		if err != nil {
			return exitRuntime, fmt.Errorf("database opening failed: %w", err)
		}
		defer func() {
			// Defer ensures the database lock is released and buffers are flushed before the function returns.
			logger.Info("Closing BadgerDB...")
			_ = db.Close()
		}()

		archive := repositories.NewArchiveRepository(db, logger)
		sinks = append(sinks, sink.NewArchiveSink(archive, logger))

		if logger.Enabled(ctx, slog.LevelDebug) {
			endpoint := "/inspect"
			url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint)
			logger.Info("Debug archive inspector available", "url", url)
			internal.StartDebugServer(db, config.DebugPort, endpoint, ArchiveMapper, func() map[string]any {
				return map[string]any{
					"Status":   "Relay (live)",
					"Messages": store.Count(),
					"Time":     time.Now().Format(time.RFC822),
				}
			})
		}
	}

	// 3. Setup Moderation, Service & Supervision
	moderator, err := moderation.NewModerator(internal.CensoredWordsList(config.CensoredWords), charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderation init failed: %w", err)
	}

	eventChan := make(chan event.DomainEvent, config.BufferSize)
	chatService := services.NewChatService(store, moderator, index, eventChan, config.MaxContentLength, logger)

	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewEventFanout(logger, eventChan, config.SinkTimeout).Add(sinks...),
		workers.NewHeartbeatWorker(logger, store, config.HeartbeatInterval),
	)

	// 4. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the Engine (Workers and Fanout)
	go func() {
		logger.Info("Starting supervisor...")
		sup.Run(ctx)
	}()

	// 6. HTTP Server Setup
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	chatServer := server.NewChatServer(logger, chatService)
	srv := &http.Server{Addr: address, Handler: chatServer.Routes()}

	// Use an error channel to capture ListenAndServe() issues asynchronously.
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	// We allow in-flight requests to finish and workers to drain their channels.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.ArchivePath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}

// ArchiveMapper renders archived messages in the debug inspector.
func ArchiveMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	var archived struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
		Text     string `json:"text"`
		At       int64  `json:"at"`
	}
	if err := json.Unmarshal(val, &archived); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}

	row.ID = strconv.Itoa(archived.ID)
	row.Username = archived.Username
	row.When = time.Unix(0, archived.At).Format("15:04:05")
	row.Detail = archived.Text
	return row
}
