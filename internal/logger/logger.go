// Package logger holds the process-wide zap sugared logger shared by
// the API, the migration CLI and the schedule worker.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger once for the given environment:
// JSON output in "production", console output everywhere else.
// Later calls are no-ops, so tests may call it freely.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, falling back to a development
// configuration when Init was never called.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries; deferred in every main.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
