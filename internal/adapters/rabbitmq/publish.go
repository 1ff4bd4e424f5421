package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joklek/rentbot-sub000/internal/constants"
	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/contracts"
)

const publishTimeout = 10 * time.Second

// Producer - то, что адаптерам нужно от rabbitmq_producer.Publisher
type Producer interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// publishEvent сериализует событие, проверяет по схеме и публикует.
// Сообщение, не прошедшее схему, не отправляется.
func publishEvent(ctx context.Context, producer Producer, registry *contracts.Registry, routingKey, eventType, version string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	if err := registry.Validate(eventType, version, body); err != nil {
		return fmt.Errorf("%s does not match its contract: %w", eventType, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			constants.HeaderEventType:    eventType,
			constants.HeaderEventVersion: version,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := producer.Publish(publishCtx, routingKey, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}
