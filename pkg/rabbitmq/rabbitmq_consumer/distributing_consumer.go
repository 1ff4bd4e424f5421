package rabbitmq_consumer

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joklek/rentbot-sub000/pkg/rabbitmq/rabbitmq_common"
)

// MessageHandler обрабатывает одно сообщение. Ack/Nack решает пакет:
// nil - подтверждение, ошибка - ретрай или финальная DLQ.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// DistributingConsumer обрабатывает каждое сообщение в своей горутине.
// Число одновременно обрабатываемых ограничено PrefetchCount.
type DistributingConsumer struct {
	baseConsumer *baseConsumer
	handler      MessageHandler
}

var _ Consumer = (*DistributingConsumer)(nil)

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing Consumer: message handler is required")
	}
	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing Consumer: %w", err)
	}
	return &DistributingConsumer{baseConsumer: bc, handler: handler}, nil
}

func (c *DistributingConsumer) policy() failurePolicy {
	bc := c.baseConsumer
	p := failurePolicy{
		retryEnabled: bc.config.EnableRetryMechanism,
		maxRetries:   bc.config.MaxRetries,
		queueName:    bc.actualQueueName,
		dlqKey:       bc.config.FinalDLQRoutingKey,
		logger:       bc.Logger,
	}
	if bc.finalDlxPublisher != nil {
		p.dlx = bc.finalDlxPublisher
	}
	return p
}

// StartConsuming блокируется до отмены контекста или закрытия соединения
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	bc := c.baseConsumer
	if bc.channel == nil || bc.connection == nil || bc.connection.IsClosed() {
		return fmt.Errorf("distributing Consumer: not connected")
	}

	msgs, err := bc.channel.Consume(bc.actualQueueName, bc.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing Consumer %s: failed to register a consumer on queue '%s': %w", bc.config.ConsumerTag, bc.actualQueueName, err)
	}
	bc.Logger.Info("[*] Waiting for messages on queue", "queue_name", bc.actualQueueName)

	policy := c.policy()
	notifyClose := bc.connection.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			bc.Logger.Info("Context cancelled, stopping consumer", "consumer_tag", bc.config.ConsumerTag)
			return nil

		case amqpErr := <-notifyClose:
			bc.Logger.Error(amqpErr, "Connection closed for consumer", "consumer_tag", bc.config.ConsumerTag)
			if amqpErr == nil {
				return fmt.Errorf("distributing Consumer: connection closed")
			}
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				bc.Logger.Info("Deliveries channel closed by RabbitMQ", "consumer_tag", bc.config.ConsumerTag)
				return nil
			}
			// новые обработчики не стартуют после команды на остановку
			if ctx.Err() != nil {
				_ = d.Nack(false, true)
				return nil
			}

			bc.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer bc.wg.Done()
				bc.Logger.Debug("[->] Started processing message", "delivery_tag", delivery.DeliveryTag)
				policy.settle(delivery, c.handler(ctx, delivery))
			}(d)
		}
	}
}

func (c *DistributingConsumer) Close() error {
	return c.baseConsumer.Close()
}
