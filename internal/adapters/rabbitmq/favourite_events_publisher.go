package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	favouriteEventName    = "FavouriteChangedEvent"
	favouriteEventVersion = "1.0.0"
	publishTimeout        = 5 * time.Second
)

// publisher is satisfied by *rabbitmq_producer.Publisher.
type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// eventValidator is satisfied by *contracts.Registry.
type eventValidator interface {
	ValidateEvent(eventType, eventVersion string, body []byte) error
}

// FavouriteEventsPublisher implements FavouriteEventsPort. The routing key is
// the event type, so consumers can bind to "favourite.*" or to one of them.
type FavouriteEventsPublisher struct {
	producer  publisher
	validator eventValidator
	now       func() time.Time
}

func NewFavouriteEventsPublisher(producer publisher, validator eventValidator) (*FavouriteEventsPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}
	return &FavouriteEventsPublisher{producer: producer, validator: validator, now: time.Now}, nil
}

func (a *FavouriteEventsPublisher) PublishFavouriteEvent(ctx context.Context, event domain.FavouriteEvent) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "FavouriteEventsPublisher",
		"event_type": event.Type,
		"record_id":  event.Record.RecordID,
	})

	dto := FavouriteChangedEventDTO{
		EventID:          uuid.NewString(),
		Type:             string(event.Type),
		OccurredAt:       a.now().UTC(),
		OwnerID:          event.Record.OwnerID,
		RecordID:         event.Record.RecordID,
		ItemID:           event.Record.ItemID,
		ItemKind:         string(event.Record.ItemKind),
		ItemName:         event.Record.ItemName,
		ThumbnailURL:     event.Record.ThumbnailURL,
		FavouriteItemIDs: event.Snapshot.SortedItemIDs(),
		IndexVersion:     event.Snapshot.Version,
	}

	body, err := json.Marshal(dto)
	if err != nil {
		adapterLogger.Error("Failed to marshal favourite event", err, nil)
		return fmt.Errorf("failed to marshal favourite event: %w", err)
	}
	if err := a.validator.ValidateEvent(favouriteEventName, favouriteEventVersion, body); err != nil {
		adapterLogger.Error("Favourite event does not match its contract", err, nil)
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    dto.EventID,
		Timestamp:    dto.OccurredAt,
		Headers: amqp.Table{
			"event-type":    favouriteEventName,
			"event-version": favouriteEventVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, dto.Type, msg); err != nil {
		adapterLogger.Error("Failed to publish favourite event", err, nil)
		return err
	}

	adapterLogger.Debug("Favourite event published.", nil)
	return nil
}
