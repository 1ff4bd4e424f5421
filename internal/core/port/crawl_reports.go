package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// CrawlReportPort сообщает планировщику итоги задачи обхода
type CrawlReportPort interface {
	ReportCrawl(ctx context.Context, taskID uuid.UUID, stats []domain.CrawlStats) error
}
