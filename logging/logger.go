package logging

import (
	"os"

	"go.uber.org/zap"
)

// New creates the zap logger shared across the service. Production config by
// default; DEBUG switches to the human-readable development encoder.
func New() *zap.Logger {
	if os.Getenv("DEBUG") != "" {
		return zap.NewExample()
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
