package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"AlgoChat/internal/chatbot"
	"AlgoChat/internal/config"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment.
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "Assistant backend (http|gemini|openai)")
	flag.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "Platform API base URL for the http backend")
	flag.StringVar(&cfg.ProblemPath, "problem", cfg.ProblemPath, "Problem JSON file to open")
	flag.StringVar(&cfg.SeedPath, "seed", cfg.SeedPath, "JSON file with initial conversation turns")
	flag.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "SQLite transcript journal (empty disables)")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Per-request timeout (0 waits indefinitely)")
	flag.BoolVar(&cfg.CacheResponses, "cache", cfg.CacheResponses, "Cache identical requests in memory")
	flag.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for logs, traces and metrics")
	flag.BoolVar(&cfg.TelemetryEnabled, "telemetry", cfg.TelemetryEnabled, "Export traces and metrics to files")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bot, err := chatbot.NewChatBot(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize chatbot: %v\n", err)
		os.Exit(1)
	}

	if err := bot.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
