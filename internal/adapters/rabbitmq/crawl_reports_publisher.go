package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/contracts"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

type CrawlReporterAdapter struct {
	producer   Producer
	registry   *contracts.Registry
	routingKey string
	now        func() time.Time
}

var _ port.CrawlReportPort = (*CrawlReporterAdapter)(nil)

func NewCrawlReporterAdapter(producer Producer, registry *contracts.Registry, routingKey string) (*CrawlReporterAdapter, error) {
	if producer == nil || registry == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer and contract registry are required")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &CrawlReporterAdapter{producer: producer, registry: registry, routingKey: routingKey, now: time.Now}, nil
}

func (a *CrawlReporterAdapter) ReportCrawl(ctx context.Context, taskID uuid.UUID, stats []domain.CrawlStats) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "CrawlReporterAdapter",
		"routing_key": a.routingKey,
		"task_id":     taskID.String(),
	})

	event := CrawlCompletedEventDTO{TaskID: taskID, FinishedAt: a.now().UTC(), Sources: stats}
	if event.Sources == nil {
		event.Sources = []domain.CrawlStats{}
	}
	if err := publishEvent(ctx, a.producer, a.registry, a.routingKey, contracts.EventCrawlCompleted, contracts.Version1, event); err != nil {
		adapterLogger.Error("Failed to publish crawl report", err, nil)
		return fmt.Errorf("rabbitmq adapter: report for task %s: %w", taskID, err)
	}

	adapterLogger.Info("Crawl report published", port.Fields{"sources": len(stats)})
	return nil
}
