package notification

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

const messageTitle = "Booking update"

var topicUnsafe = regexp.MustCompile(`[^a-zA-Z0-9\-_.~%]`)

// FCMSender publishes messages to Firebase Cloud Messaging topics. Phone
// recipients map to a "customer-<digits>" topic the client app subscribes to;
// any other recipient is used as the topic name itself.
type FCMSender struct {
	client *messaging.Client
	logger *zap.Logger
}

func NewFCMSender(client *messaging.Client, logger *zap.Logger) *FCMSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMSender{client: client, logger: logger}
}

// Topic returns the FCM topic a recipient maps to.
func Topic(to string) string {
	to = strings.TrimSpace(to)
	if strings.HasPrefix(to, "+") || isDigits(to) {
		return "customer-" + topicUnsafe.ReplaceAllString(strings.TrimPrefix(to, "+"), "")
	}
	return topicUnsafe.ReplaceAllString(to, "_")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *FCMSender) SendText(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	topic := Topic(to)
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: messageTitle,
			Body:  body,
		},
		Data: map[string]string{"body": body},
	}
	id, err := s.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("fcm send to %s: %w", topic, err)
	}
	s.logger.Debug("fcm message sent", zap.String("topic", topic), zap.String("messageID", id))
	return nil
}
