package service

import (
	"context"
	"strings"
	"time"

	"fast-order/internal/apperror"
	"fast-order/internal/models"
	"fast-order/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService records consumed notification events and publishes
// ad-hoc ones.
type NotificationService struct {
	notifications NotificationStore
	deduper       EventDeduper
	publisher     NotificationPublisher
	timeout       time.Duration
	logger        *zap.Logger
}

// NewNotificationService creates a new notification service. deduper may be nil.
func NewNotificationService(notifications NotificationStore, deduper EventDeduper, publisher NotificationPublisher, timeout time.Duration) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		deduper:       deduper,
		publisher:     publisher,
		timeout:       timeout,
		logger:        util.GetLogger(),
	}
}

// Record stores a consumed event once. Redeliveries are recognised first by
// the dedupe cache and then by the unique event id in the store, so a
// redelivered event never produces a second record. An error means the event
// was not stored and should be redelivered.
func (s *NotificationService) Record(ctx context.Context, event *models.NotificationEvent) (err error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.Record")
	defer func() { util.EndSpan(span, err) }()

	if event.EventID == "" {
		util.NotificationsConsumedTotal.WithLabelValues("invalid").Inc()
		s.logger.Warn("Dropping notification without event id", zap.String("order_id", event.OrderID.String()))
		return nil
	}

	if s.seen(ctx, event.EventID) {
		util.NotificationsConsumedTotal.WithLabelValues("duplicate").Inc()
		s.logger.Info("Duplicate notification ignored", zap.String("event_id", event.EventID))
		return nil
	}

	notification := &models.Notification{
		ID:      uuid.New(),
		EventID: event.EventID,
		Message: event.Message,
		OrderID: event.OrderID,
	}
	inserted, err := persist(ctx, s.timeout, "create_notification", func(ctx context.Context) (bool, error) {
		return s.notifications.CreateNotification(ctx, notification)
	})
	if err != nil {
		util.NotificationsConsumedTotal.WithLabelValues("failed").Inc()
		return storeErr(err, "Notification")
	}

	s.mark(ctx, event.EventID)

	if !inserted {
		util.NotificationsConsumedTotal.WithLabelValues("duplicate").Inc()
		s.logger.Info("Duplicate notification ignored", zap.String("event_id", event.EventID))
		return nil
	}

	util.NotificationsConsumedTotal.WithLabelValues("recorded").Inc()
	s.logger.Info("Notification saved",
		zap.String("notification_id", notification.ID.String()),
		zap.String("event_id", notification.EventID),
		zap.String("message", notification.Message),
		zap.String("order_id", notification.OrderID.String()),
		zap.Time("created_at", notification.CreatedAt))
	return nil
}

// ListByOrder returns the notifications recorded for one order
func (s *NotificationService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error) {
	notifications, err := persist(ctx, s.timeout, "list_notifications", func(ctx context.Context) ([]models.Notification, error) {
		return s.notifications.GetNotificationsByOrderID(ctx, orderID)
	})
	if err != nil {
		return nil, storeErr(err, "Notification")
	}
	return notifications, nil
}

// SendMessage publishes an ad-hoc notification not tied to any order.
func (s *NotificationService) SendMessage(ctx context.Context, message string) (*models.NotificationEvent, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.InvalidRequest("The message cannot be empty.")
	}

	event := models.NewNotificationEvent(message, uuid.Nil)
	if err := s.publisher.PublishNotification(ctx, event); err != nil {
		util.NotificationsPublishedTotal.WithLabelValues("failed").Inc()
		return nil, apperror.Internal(err)
	}

	util.NotificationsPublishedTotal.WithLabelValues("sent").Inc()
	s.logger.Info("Message sent", zap.String("event_id", event.EventID), zap.String("message", message))
	return event, nil
}

func (s *NotificationService) seen(ctx context.Context, eventID string) bool {
	if s.deduper == nil {
		return false
	}
	seen, err := s.deduper.IsEventProcessed(ctx, eventID)
	if err != nil {
		s.logger.Warn("Dedupe lookup failed, falling through to store", zap.Error(err))
		return false
	}
	return seen
}

func (s *NotificationService) mark(ctx context.Context, eventID string) {
	if s.deduper == nil {
		return
	}
	if _, err := s.deduper.MarkEventProcessed(ctx, eventID); err != nil {
		s.logger.Warn("Failed to mark event processed", zap.String("event_id", eventID), zap.Error(err))
	}
}
