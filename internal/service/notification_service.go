package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/eventhub/internal/domain"
	"github.com/spec-kit/eventhub/internal/events"
	"github.com/spec-kit/eventhub/internal/mail"
	"github.com/spec-kit/eventhub/internal/observability"
)

const (
	approvalSubject = "EventHub: Your Event Has Been Approved 🎉"
	approvalBody    = `Good news! Your event "%s" has been approved and is now live.`

	rejectionSubject = "EventHub: Your Event Was Rejected"
	rejectionBody    = `We're sorry to inform you that your event "%s" has been rejected. Please review our event guidelines and consider making changes for re-submission.`
)

// NotificationService sends templated owner emails on moderation outcomes.
// Delivery is at-most-once and best-effort: failures are logged and counted,
// never surfaced to the workflow that triggered them.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to domain events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCreated, n.handleEventCreated)
	n.dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleEventCreated(_ context.Context, event events.Event) error {
	n.logger.Info("EventCreated", zap.String("event_id", event.EventID), zap.Any("payload", event.Payload))
	return nil
}

// handleStatusChanged fires mail edge-triggered on the prior status: a newly
// approved event mails unless it was already approved, a newly rejected one
// unless it was already rejected. Re-approving an approved event is silent,
// while toggling between approved and rejected mails on every flip. That
// asymmetry matches the shipped product behavior and is kept deliberately;
// whether it is intended policy is an open product question.
func (n *NotificationService) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return nil
	}
	if strings.TrimSpace(payload.OwnerEmail) == "" {
		n.logger.Warn("status change without owner email; skipping mail",
			zap.String("event_id", event.EventID))
		return nil
	}

	newlyApproved := payload.NewStatus == domain.EventStatusApproved && payload.OldStatus != domain.EventStatusApproved
	newlyRejected := payload.NewStatus == domain.EventStatusRejected && payload.OldStatus != domain.EventStatusRejected

	if newlyApproved {
		n.NotifyApproved(payload.OwnerEmail, payload.Title)
	}
	if newlyRejected {
		n.NotifyRejected(payload.OwnerEmail, payload.Title)
	}
	return nil
}

// NotifyApproved sends the approval template to the owner.
func (n *NotificationService) NotifyApproved(ownerEmail, eventTitle string) {
	n.send(ownerEmail, approvalSubject, fmt.Sprintf(approvalBody, eventTitle))
}

// NotifyRejected sends the rejection template to the owner.
func (n *NotificationService) NotifyRejected(ownerEmail, eventTitle string) {
	n.send(ownerEmail, rejectionSubject, fmt.Sprintf(rejectionBody, eventTitle))
}

func (n *NotificationService) send(to, subject, body string) {
	if err := n.mailer.Send(to, subject, body); err != nil {
		n.metrics.RecordMail(false)
		n.logger.Error("failed to send status email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return
	}
	n.metrics.RecordMail(true)
}
