package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joklek/rentbot-sub000/internal/constants"
	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/contracts"
	"github.com/joklek/rentbot-sub000/internal/core/port"
	usecases_port "github.com/joklek/rentbot-sub000/internal/core/port/usecases"
	"github.com/joklek/rentbot-sub000/pkg/rabbitmq/rabbitmq_common"
	"github.com/joklek/rentbot-sub000/pkg/rabbitmq/rabbitmq_consumer"
)

// CrawlTasksConsumerAdapter принимает задачи обхода от планировщика
type CrawlTasksConsumerAdapter struct {
	consumer      rabbitmq_consumer.Consumer
	orchestrateUC usecases_port.OrchestrateCrawlPort
	reporter      port.CrawlReportPort // может быть nil
	registry      *contracts.Registry
	logger        port.LoggerPort
}

var _ port.EventListenerPort = (*CrawlTasksConsumerAdapter)(nil)

func NewCrawlTasksConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	orchestrateUC usecases_port.OrchestrateCrawlPort,
	reporter port.CrawlReportPort,
	registry *contracts.Registry,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*CrawlTasksConsumerAdapter, error) {
	if orchestrateUC == nil || registry == nil {
		return nil, fmt.Errorf("crawl tasks consumer: use case and contract registry are required")
	}

	adapter := &CrawlTasksConsumerAdapter{
		orchestrateUC: orchestrateUC,
		reporter:      reporter,
		registry:      registry,
		logger:        logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for crawl tasks: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

// messageHandler: ошибка возвращается только для сбоев, которые имеет смысл повторить.
// Неразборчивое сообщение подтверждается и теряется, иначе оно вечно крутилось бы в ретраях.
func (a *CrawlTasksConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	traceID, ok := d.Headers[constants.HeaderTraceID].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	if err := a.registry.Validate(contracts.TaskCrawl, contracts.Version1, d.Body); err != nil {
		msgLogger.Error("Crawl task does not match its contract, dropping", err, nil)
		return nil
	}

	var taskDTO CrawlTaskDTO
	if err := json.Unmarshal(d.Body, &taskDTO); err != nil {
		msgLogger.Error("Error unmarshalling crawl task, dropping", err, nil)
		return nil
	}

	task, err := toCrawlTask(taskDTO)
	if err != nil {
		msgLogger.Error("Crawl task names an unknown source, dropping", err, port.Fields{"sources": taskDTO.Sources})
		return nil
	}

	taskLogger := msgLogger.WithFields(port.Fields{"task_id": task.TaskID.String()})
	ctx = contextkeys.ContextWithLogger(ctx, taskLogger)
	taskLogger.Info("Received crawl task", port.Fields{"sources": taskDTO.Sources, "full_scan": task.FullScan})

	stats, err := a.orchestrateUC.Execute(ctx, task)
	if err != nil {
		taskLogger.Error("Crawl orchestration failed", err, nil)
		return err
	}

	if a.reporter != nil {
		if err := a.reporter.ReportCrawl(ctx, task.TaskID, stats); err != nil {
			// обход уже выполнен, повторять его ради отчета не нужно
			taskLogger.Warn("Crawl report was not delivered", port.Fields{"error": err.Error()})
		}
	}
	return nil
}

func (a *CrawlTasksConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *CrawlTasksConsumerAdapter) Close() error {
	return a.consumer.Close()
}
