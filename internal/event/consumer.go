package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/AlexandruMarc/Easy-Shops/pkg/kafka"
	"github.com/AlexandruMarc/Easy-Shops/pkg/logger"
)

// ConsumerGroup is the consumer group this service reads user events in.
const ConsumerGroup = "easyshops-images"

// ProfileImageService defines the interface required by the event consumer.
type ProfileImageService interface {
	HandleUserDeleted(ctx context.Context, userID int64) error
}

// Consumer processes incoming Kafka events for the catalog service.
type Consumer struct {
	service ProfileImageService
	logger  *slog.Logger
}

// NewConsumer creates a new event consumer.
func NewConsumer(service ProfileImageService, logger *slog.Logger) *Consumer {
	return &Consumer{service: service, logger: logger}
}

// HandleUserDeleted removes the profile image of a deleted user.
func (c *Consumer) HandleUserDeleted(ctx context.Context, event *pkgkafka.Event) error {
	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
	}

	var data UserDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal user.deleted data: %w", err)
	}
	if data.UserID <= 0 {
		id, err := strconv.ParseInt(event.AggregateID, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("user.deleted event %s carries no user id", event.EventID)
		}
		data.UserID = id
	}

	c.logger.InfoContext(ctx, "processing user.deleted event",
		slog.String("event_id", event.EventID),
		slog.Int64("user_id", data.UserID),
	)

	if err := c.service.HandleUserDeleted(ctx, data.UserID); err != nil {
		return fmt.Errorf("drop profile image of user %d: %w", data.UserID, err)
	}
	return nil
}
