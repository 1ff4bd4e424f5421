package usecases_port

import (
	"context"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// CrawlSourcePort - обход одного источника с учетом уже известных объявлений
type CrawlSourcePort interface {
	Source() domain.Source
	FetchLatest(ctx context.Context, fullScan bool) domain.CrawlResult
}
