package main

import (
	"log/slog"

	"github.com/soundprediction/legame/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Legame Colored Logger Demo")
	log.Info("============================================")
	log.Info("")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Persisting snapshot to disk - green!")
	log.Info("Documents upserted into index - also green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("")
	log.Info("Storage writes are highlighted in green:")
	log.Info("Upserting documents", "count", 42, "batch_size", 100)
	log.Info("Snapshot saved", "duration", "2.5s")
	log.Info("Persisting entity clusters", "count", 156)
	log.Info("Graph snapshot loaded", "duration", "1.8s")

	log.Info("")
	log.Warn("Warnings appear in yellow for attention")
	log.Error("Errors appear in red for immediate visibility")

	log.Info("")
	log.Info("Demo complete!")
}
