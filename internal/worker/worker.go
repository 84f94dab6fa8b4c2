package worker

import (
	"context"

	"fast-order/internal/broker"
	"fast-order/internal/models"
	"fast-order/internal/util"

	"go.uber.org/zap"
)

// MessageSource is the consuming side of the broker.
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// Recorder persists consumed notification events.
type Recorder interface {
	Record(ctx context.Context, event *models.NotificationEvent) error
}

// NotificationWorker consumes notification events and records them
type NotificationWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer MessageSource, recorder Recorder) *NotificationWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnNotification(recorder.Record)

	return &NotificationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start blocks consuming until ctx is done
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}
