package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes messages to the log. It is used when no push backend is
// configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendText(_ context.Context, to, body string) error {
	if to == "" {
		return ErrNoRecipient
	}
	s.logger.Info("notification", zap.String("to", to), zap.String("body", body))
	return nil
}
