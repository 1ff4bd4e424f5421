package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

const defaultDetailConcurrency = 4

// CrawlSourceUseCase - инкрементальный обход одного источника.
// Листает страницы от новых к старым, пока не дойдет до уже сохраненной истории,
// затем догружает детали только для новых объявлений.
type CrawlSourceUseCase struct {
	source            port.ListingSourcePort
	known             port.KnownListingsPort
	detailConcurrency int
	pagingBudget      time.Duration // 0 - без ограничения
}

// NewCrawlSourceUseCase создает контроллер обхода для одного адаптера
func NewCrawlSourceUseCase(
	source port.ListingSourcePort,
	known port.KnownListingsPort,
	detailConcurrency int,
	pagingBudget time.Duration,
) *CrawlSourceUseCase {
	if detailConcurrency <= 0 {
		detailConcurrency = defaultDetailConcurrency
	}
	return &CrawlSourceUseCase{
		source:            source,
		known:             known,
		detailConcurrency: detailConcurrency,
		pagingBudget:      pagingBudget,
	}
}

func (uc *CrawlSourceUseCase) Source() domain.Source {
	return uc.source.Source()
}

// FetchLatest никогда не возвращает ошибку: все сбои отражаются в статусе результата.
func (uc *CrawlSourceUseCase) FetchLatest(ctx context.Context, fullScan bool) domain.CrawlResult {
	src := uc.source.Source()
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":  "CrawlSource",
		"source":    src.String(),
		"full_scan": fullScan,
	})
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)

	result := uc.collectPages(ctx, ucLogger, fullScan)
	if len(result.Drafts) == 0 {
		ucLogger.Info("Crawl finished without drafts", port.Fields{"status": result.Status, "warning": result.Warning})
		return result
	}

	if ctx.Err() != nil {
		// детали не загружаем: черновики уходят как частичные
		markEnrichmentSkipped(&result, ctx, ucLogger)
		return result
	}

	uc.enrich(ctx, ucLogger, &result)

	ucLogger.Info("Crawl finished", port.Fields{
		"status":          result.Status,
		"pages":           result.PagesFetched,
		"drafts":          len(result.Drafts),
		"enriched":        result.Enriched,
		"detail_failures": result.DetailFailures,
	})
	return result
}

// collectPages - шаги пагинации. Бюджет времени действует только здесь.
func (uc *CrawlSourceUseCase) collectPages(ctx context.Context, logger port.LoggerPort, fullScan bool) domain.CrawlResult {
	src := uc.source.Source()
	result := domain.CrawlResult{Source: src, Status: domain.CrawlStatusOK}

	oldestKnown, err := uc.known.FindOldestBySource(ctx, src)
	if err != nil {
		// без опорной точки глубокий обход невозможен, работаем как при первом запуске
		logger.Warn("Could not load oldest known listing, limiting crawl to the first page", port.Fields{"error": err.Error()})
		oldestKnown = domain.None[domain.CanonicalListing]()
	}

	pageCtx := ctx
	if uc.pagingBudget > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, uc.pagingBudget)
		defer cancel()
	}

	firstPage, err := uc.source.FetchIndexPage(pageCtx, 1)
	if err != nil {
		logger.Error("Index page could not be fetched", err, port.Fields{"page": 1})
		result.Status = domain.CrawlStatusUnavailable
		result.Warning = fmt.Sprintf("first index page unavailable: %v", err)
		return result
	}
	result.PagesFetched = 1

	if len(firstPage) == 0 {
		logger.Warn("First index page is empty, source may be empty or blocking us", nil)
		result.Status = domain.CrawlStatusEmpty
		return result
	}

	seen := make(map[string]struct{})
	result.Drafts = appendUnseen(result.Drafts, firstPage, seen)

	oldest, hasHistory := oldestKnown.Get()
	if !hasHistory {
		logger.Info("No persisted history for source, stopping after the first page", nil)
		return result
	}
	if !fullScan {
		return result
	}

	order := uc.source.IDOrder()
	boundary := oldest.ExternalID
	pageLogger := logger.WithFields(port.Fields{"oldest_known_id": boundary, "id_order": order.String()})

	if reachedBoundary(firstPage, boundary, order) {
		pageLogger.Debug("Known history reached on the first page", nil)
		return result
	}

	previousIDs := draftIDs(firstPage)
	for page := 2; ; page++ {
		if pageCtx.Err() != nil {
			markInterrupted(&result, ctx, pageLogger, page)
			return result
		}

		drafts, err := uc.source.FetchIndexPage(pageCtx, page)
		if err != nil {
			if pageCtx.Err() != nil {
				markInterrupted(&result, ctx, pageLogger, page)
				return result
			}
			pageLogger.Warn("Index page failed, keeping what was collected", port.Fields{"page": page, "error": err.Error()})
			result.Warning = fmt.Sprintf("paging stopped at page %d: %v", page, err)
			return result
		}
		result.PagesFetched++

		if len(drafts) == 0 {
			pageLogger.Warn("Index page is empty while older history is expected", port.Fields{"page": page})
			result.Status = domain.CrawlStatusAnomaly
			result.Warning = fmt.Sprintf("page %d returned no listings before reaching known history", page)
			return result
		}

		ids := draftIDs(drafts)
		if slices.Equal(ids, previousIDs) {
			pageLogger.Warn("Index page repeats the previous one, source ignores the page parameter", port.Fields{"page": page})
			result.Status = domain.CrawlStatusAnomaly
			result.Warning = fmt.Sprintf("page %d is identical to page %d", page, page-1)
			return result
		}

		result.Drafts = appendUnseen(result.Drafts, drafts, seen)

		if reachedBoundary(drafts, boundary, order) {
			pageLogger.Debug("Known history reached", port.Fields{"page": page})
			return result
		}
		previousIDs = ids
	}
}

func markInterrupted(result *domain.CrawlResult, parent context.Context, logger port.LoggerPort, page int) {
	result.Status = domain.CrawlStatusInterrupted
	if errors.Is(parent.Err(), context.Canceled) {
		result.Warning = fmt.Sprintf("crawl cancelled before page %d", page)
	} else {
		result.Warning = fmt.Sprintf("crawl time budget exhausted before page %d", page)
	}
	logger.Warn("Paging interrupted, keeping collected drafts", port.Fields{"page": page, "drafts": len(result.Drafts)})
}

func markEnrichmentSkipped(result *domain.CrawlResult, ctx context.Context, logger port.LoggerPort) {
	for i := range result.Drafts {
		result.Drafts[i].IsPartial = true
	}
	result.Status = domain.CrawlStatusInterrupted
	warning := "crawl deadline exceeded before detail enrichment"
	if errors.Is(ctx.Err(), context.Canceled) {
		warning = "crawl cancelled before detail enrichment"
	}
	if result.Warning != "" {
		warning = result.Warning + "; " + warning
	}
	result.Warning = warning
	logger.Warn("Context done after paging, skipping detail enrichment", port.Fields{
		"drafts": len(result.Drafts),
		"pages":  result.PagesFetched,
	})
}

// enrich загружает детали для новых объявлений. Известные проходят дальше как частичные.
// Ошибка загрузки деталей отбрасывает только это объявление.
func (uc *CrawlSourceUseCase) enrich(ctx context.Context, logger port.LoggerPort, result *domain.CrawlResult) {
	src := uc.source.Source()
	enriched := make([]*domain.ListingDraft, len(result.Drafts))
	fresh := make([]bool, len(result.Drafts))

	var g errgroup.Group
	g.SetLimit(uc.detailConcurrency)

	for i, draft := range result.Drafts {
		g.Go(func() error {
			draftLogger := logger.WithFields(port.Fields{"external_id": draft.ExternalID})
			if ctx.Err() != nil {
				draftLogger.Warn("Context done, skipping detail fetch", nil)
				return nil
			}

			exists, err := uc.known.ExistsByExternalIDAndSource(ctx, draft.ExternalID, src)
			if err != nil {
				draftLogger.Error("Existence check failed, skipping listing", err, nil)
				return nil
			}
			if exists {
				draft.IsPartial = true
				enriched[i] = &draft
				return nil
			}

			full, err := uc.source.FetchDetails(ctx, draft)
			if err != nil {
				draftLogger.Warn("Detail fetch failed, skipping listing", port.Fields{"error": err.Error()})
				return nil
			}
			full.ExternalID = draft.ExternalID
			full.IsPartial = false
			enriched[i] = &full
			fresh[i] = true
			return nil
		})
	}
	_ = g.Wait()

	drafts := make([]domain.ListingDraft, 0, len(result.Drafts))
	for i, d := range enriched {
		if d == nil {
			result.DetailFailures++
			continue
		}
		if fresh[i] {
			result.Enriched++
		}
		drafts = append(drafts, *d)
	}
	result.Drafts = drafts
}

// appendUnseen - при сдвиге страниц первое вхождение ID побеждает
func appendUnseen(dst, drafts []domain.ListingDraft, seen map[string]struct{}) []domain.ListingDraft {
	for _, d := range drafts {
		if _, ok := seen[d.ExternalID]; ok {
			continue
		}
		seen[d.ExternalID] = struct{}{}
		dst = append(dst, d)
	}
	return dst
}

func draftIDs(drafts []domain.ListingDraft) []string {
	ids := make([]string, len(drafts))
	for i, d := range drafts {
		ids[i] = d.ExternalID
	}
	return ids
}

// reachedBoundary - на странице есть ID не новее самого старого известного
func reachedBoundary(drafts []domain.ListingDraft, oldestKnownID string, order domain.IDOrder) bool {
	for _, d := range drafts {
		if order.Compare(d.ExternalID, oldestKnownID) <= 0 {
			return true
		}
	}
	return false
}
