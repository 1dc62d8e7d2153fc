package services

import (
	"context"

	"github.com/citypress/account-service/app/logger"
	"github.com/rs/zerolog"
)

// Notifier is the outbound mail contract the account services depend on.
// Callers log delivery failures and continue; a failed send never fails the
// surrounding operation.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, url string) error
	SendPasswordResetEmail(ctx context.Context, to, url string) error
}

// getLoggerFromContext retrieves logger from context or returns global logger
func getLoggerFromContext(ctx context.Context) zerolog.Logger {
	if log := zerolog.Ctx(ctx); log.GetLevel() != zerolog.Disabled {
		return *log
	}
	return logger.Logger
}
