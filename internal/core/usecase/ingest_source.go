package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/converter"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// IngestSourceUseCase: обход -> конвертация -> сохранение -> событие
type IngestSourceUseCase struct {
	crawlers  *CrawlerRegistry
	repo      port.ListingRepositoryPort
	events    port.ListingEventsPort // может быть nil, если брокер отключен
	converter *converter.Converter
}

func NewIngestSourceUseCase(
	crawlers *CrawlerRegistry,
	repo port.ListingRepositoryPort,
	events port.ListingEventsPort,
	conv *converter.Converter,
) *IngestSourceUseCase {
	return &IngestSourceUseCase{
		crawlers:  crawlers,
		repo:      repo,
		events:    events,
		converter: conv,
	}
}

// Execute возвращает ошибку только для неизвестного источника.
// Ошибки отдельных записей учитываются в статистике.
func (uc *IngestSourceUseCase) Execute(ctx context.Context, source domain.Source, fullScan bool) (domain.CrawlStats, error) {
	crawler, ok := uc.crawlers.Get(source)
	if !ok {
		return domain.CrawlStats{Source: source}, fmt.Errorf("ingest: %w: %s", domain.ErrUnknownSource, source)
	}

	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "IngestSource",
		"source":   source.String(),
	})
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)

	result := crawler.FetchLatest(ctx, fullScan)
	stats := domain.CrawlStats{
		Source:       source,
		Status:       result.Status,
		Warning:      result.Warning,
		PagesFetched: result.PagesFetched,
		DraftsFound:  len(result.Drafts) + result.DetailFailures,
		Enriched:     result.Enriched,
		Failed:       result.DetailFailures,
	}

	for _, draft := range result.Drafts {
		if draft.IsPartial {
			stats.AlreadyKnown++
			continue
		}

		listing := uc.converter.Convert(draft, source)
		saved, err := uc.repo.Save(ctx, listing)
		if errors.Is(err, domain.ErrListingExists) {
			// параллельный обход успел раньше, существующую запись не трогаем
			stats.AlreadyKnown++
			continue
		}
		if err != nil {
			ucLogger.Error("Failed to save listing", err, port.Fields{"external_id": draft.ExternalID})
			stats.Failed++
			continue
		}
		stats.Persisted++

		if uc.events == nil {
			continue
		}
		if err := uc.events.PublishListingCreated(ctx, saved); err != nil {
			ucLogger.Warn("Listing saved but event was not published", port.Fields{
				"external_id": saved.ExternalID,
				"listing_id":  saved.ID.String(),
				"error":       err.Error(),
			})
		}
	}

	ucLogger.Info("Ingest finished", port.Fields{
		"status":        stats.Status,
		"persisted":     stats.Persisted,
		"already_known": stats.AlreadyKnown,
		"failed":        stats.Failed,
	})
	return stats, nil
}
