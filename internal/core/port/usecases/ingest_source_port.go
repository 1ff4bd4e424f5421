package usecases_port

import (
	"context"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

type IngestSourcePort interface {
	Execute(ctx context.Context, source domain.Source, fullScan bool) (domain.CrawlStats, error)
}
