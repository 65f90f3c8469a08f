// Package email defines the outbound mail collaborator. The service only
// depends on the Sender interface; LogSender stands in for a real transport.
package email

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes the message to the log instead of delivering it
// (for development - swap for an SMTP-backed Sender in production).
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"body":    body,
	}).Info("Email sent (logged for development)")
	return nil
}
