package usecases_port

import (
	"context"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

type OrchestrateCrawlPort interface {
	Execute(ctx context.Context, task domain.CrawlTask) ([]domain.CrawlStats, error)
}
