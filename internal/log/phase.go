package log

import (
	"log/slog"
	"time"
)

// Phase logs the start of a named step and returns a func that logs its
// completion with the elapsed time and returns it.
func Phase(logger *slog.Logger, name string, attrs ...any) func(attrs ...any) time.Duration {
	logger.Info("Starting "+name, attrs...)
	start := time.Now()
	return func(done ...any) time.Duration {
		elapsed := time.Since(start)
		logger.Info("Finished "+name, append(done, "elapsed", elapsed.Round(time.Millisecond))...)
		return elapsed
	}
}
