package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger. Production JSON encoding; callers own
// the final Sync.
func New() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}
