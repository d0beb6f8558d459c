package logger_test

import (
	"log/slog"

	"github.com/soundprediction/legame/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message")
	log.Info("This is an info message")
	log.Info("Persisting snapshot to disk") // Will be green in terminal
	log.Warn("This is a warning message")   // Will be yellow in terminal
	log.Error("This is an error message")   // Will be red in terminal
}

func ExampleNewColorHandler() {
	// Create a logger with custom configuration
	log := logger.NewDefaultLogger(slog.LevelInfo)

	// Log with attributes
	log.Info("Linking entities", "count", 12, "threshold", 0.8)
	log.Info("Upserting documents into index", "count", 42, "batch_size", 100) // Green
	log.Warn("Vector branch degraded", "error", "index unavailable")           // Yellow
	log.Error("Embedding request failed", "error", "timeout", "retries", 3)    // Red
}
