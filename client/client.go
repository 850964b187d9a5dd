package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/domain"
	"chat-relay/infrastructure/http/client"
	"chat-relay/runtime/workers"
	"chat-relay/session"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL       string        `env:"CHAT_SERVER_URL,default=http://localhost:8080"`
	PollInterval    time.Duration `env:"POLL_INTERVAL,default=2s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=5s"`
	LogLevel        string        `env:"LOG_LEVEL,default=WARN"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the chat client, the interactive console and the background
// poller, then blocks until the user quits or a signal arrives.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	// A positional argument beats the environment.
	if len(os.Args) > 1 {
		config.ServerURL = os.Args[1]
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Reach the server once before anything interactive starts.
	chat := client.NewChatClient(config.ServerURL, config.RequestTimeout, log)

	banner := strings.Repeat("=", 50)
	fmt.Println(color.New(color.FgLightBlue).Render(banner))
	fmt.Println(color.New(color.FgLightBlue).Render("💬 TERMINAL CHAT CLIENT"))
	fmt.Println(color.New(color.FgLightBlue).Render(banner))

	status, err := chat.GetStatus(ctx)
	if err != nil {
		fmt.Printf("❌ Cannot connect to server at %s\n", config.ServerURL)
		fmt.Println("   Make sure the server is running!")
		return exitRuntime, nil
	}
	fmt.Printf("✅ Connected to server: %s\n", config.ServerURL)
	fmt.Printf("📊 Current message count: %d\n", status.MessageCount)

	// 4. Username prompt and history preview, before the poller may print.
	sess := session.New(domain.AnonymousName)
	console := session.NewConsole(os.Stdin, os.Stdout, chat, sess)
	if err := console.Setup(ctx); err != nil {
		if errors.Is(err, io.EOF) {
			return exitOK, nil
		}
		return exitRuntime, err
	}

	// 5. Background poller under supervision.
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewPollerWorker(log, chat, sess, os.Stdout, config.PollInterval))
	go sup.Run(ctx)

	// 6. Foreground command loop.
	errChan := make(chan error, 1)
	go func() {
		errChan <- console.Loop(ctx)
	}()

	select {
	case <-ctx.Done():
		fmt.Print("\n\n👋 Goodbye!\n")
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			return exitRuntime, err
		}
	}

	sup.Stop()
	return exitOK, nil
}
