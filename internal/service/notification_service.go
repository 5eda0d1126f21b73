package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/asta-dev/fintech-sandbox/internal/config"
	"github.com/asta-dev/fintech-sandbox/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTransferCompleted, n.handleTransferCompleted)
	n.dispatcher.Subscribe(events.EventAccountStatusChanged, n.handleAccountStatusChanged)
	n.dispatcher.Subscribe(events.EventSubscriptionActivated, n.handleSubscriptionActivated)
	n.dispatcher.Subscribe(events.EventSubscriptionCanceled, n.handleSubscriptionCanceled)
}

func (n *NotificationService) handleTransferCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TransferCompleted", zap.String("transaction_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAccountStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("AccountStatusChanged", zap.String("account_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSubscriptionActivated(ctx context.Context, event events.Event) error {
	n.logger.Info("SubscriptionActivated", zap.String("subscription_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSubscriptionCanceled(ctx context.Context, event events.Event) error {
	n.logger.Info("SubscriptionCanceled", zap.String("subscription_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
