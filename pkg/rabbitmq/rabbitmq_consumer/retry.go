package rabbitmq_consumer

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joklek/rentbot-sub000/pkg/rabbitmq/rabbitmq_common"
)

// dlxPublisher - то, что нужно от производителя для финальной DLQ
type dlxPublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

type failurePolicy struct {
	retryEnabled bool
	maxRetries   int
	queueName    string
	dlqKey       string
	dlx          dlxPublisher
	logger       rabbitmq_common.Logger
}

// getDeathCount - сколько раз сообщение было отвергнуто основной очередью (по заголовку x-death)
func getDeathCount(d amqp.Delivery, queueName string) int64 {
	if d.Headers == nil {
		return 0
	}
	deaths, ok := d.Headers["x-death"].([]any)
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, ok := tbl["queue"].(string); ok && queue == queueName {
			if count, ok := tbl["count"].(int64); ok {
				return count
			}
		}
	}
	return 0
}

// settle подтверждает или отвергает сообщение по результату обработчика
func (p failurePolicy) settle(d amqp.Delivery, processErr error) {
	if processErr == nil {
		_ = d.Ack(false)
		return
	}

	p.logger.Error(processErr, "Handler error for message", "delivery_tag", d.DeliveryTag)

	if !p.retryEnabled {
		_ = d.Nack(false, false)
		return
	}

	deathCount := getDeathCount(d, p.queueName)
	if deathCount < int64(p.maxRetries) {
		p.logger.Info("Retrying message", "delivery_tag", d.DeliveryTag, "death_count", deathCount)
		_ = d.Nack(false, false)
		return
	}

	p.logger.Warn("Max retries reached, publishing to final DLX", "delivery_tag", d.DeliveryTag, "death_count", deathCount)
	err := p.dlx.Publish(context.Background(), p.dlqKey, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      d.Headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		// еще один круг ретрая лучше потери сообщения
		p.logger.Error(err, "Failed to publish to final DLX", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
