package notification

import (
	"context"
	"fmt"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/events"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BookingEventConsumer listens to booking lifecycle events and sends
// customer notices. Delivery failures are logged and swallowed: the
// lifecycle transition that produced the event has already committed.
type BookingEventConsumer struct {
	consumer *events.Consumer
	sender   Sender
	logger   *zap.Logger
}

// NewBookingEventConsumer creates a new BookingEventConsumer.
func NewBookingEventConsumer(
	brokers []string,
	groupID string,
	sender Sender,
	logger *zap.Logger,
) *BookingEventConsumer {
	consumer := events.NewConsumer(brokers, groupID, events.TopicBookingEvents, logger)
	return &BookingEventConsumer{
		consumer: consumer,
		sender:   sender,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (c *BookingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *BookingEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *BookingEventConsumer) handleMessage(_ context.Context, msg kafkago.Message) error {
	cloudEvent, err := events.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.BookingAssigned:
		c.handleAssigned(cloudEvent)
	case events.BookingCompleted:
		c.handleCompleted(cloudEvent)
	case events.BookingCanceled:
		c.handleCanceled(cloudEvent)
	default:
		c.logger.Debug("no notice for event type",
			zap.String("type", cloudEvent.Type),
		)
	}
	return nil
}

func (c *BookingEventConsumer) handleAssigned(ce events.CloudEvent) {
	var evt events.BookingAssignedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse BookingAssignedEvent data", zap.Error(err))
		return
	}
	body := fmt.Sprintf(
		"Your detailing appointment %s is confirmed. %s will arrive around %s.",
		evt.ConfirmationCode, evt.DetailerName, evt.ScheduledAt.Format("Mon Jan 2 3:04 PM"),
	)
	c.send(evt.CustomerPhone, body, ce.Type)
}

func (c *BookingEventConsumer) handleCompleted(ce events.CloudEvent) {
	var evt events.BookingCompletedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse BookingCompletedEvent data", zap.Error(err))
		return
	}
	body := fmt.Sprintf(
		"Your detailing appointment %s is complete. Total: $%d.%02d. Thank you!",
		evt.ConfirmationCode, evt.TotalPriceCents/100, evt.TotalPriceCents%100,
	)
	c.send(evt.CustomerPhone, body, ce.Type)
}

func (c *BookingEventConsumer) handleCanceled(ce events.CloudEvent) {
	var evt events.BookingCanceledEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse BookingCanceledEvent data", zap.Error(err))
		return
	}
	body := fmt.Sprintf("Your detailing appointment %s has been canceled.", evt.ConfirmationCode)
	c.send(evt.CustomerPhone, body, ce.Type)
}

func (c *BookingEventConsumer) send(to, body, eventType string) {
	if to == "" {
		c.logger.Warn("notice skipped: no customer phone", zap.String("type", eventType))
		return
	}
	if err := c.sender.Send(to, body); err != nil {
		c.logger.Error("failed to send notice",
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("notice sent", zap.String("type", eventType))
}
