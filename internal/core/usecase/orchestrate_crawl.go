package usecase

import (
	"context"
	"sync"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
	usecases_port "github.com/joklek/rentbot-sub000/internal/core/port/usecases"
)

// OrchestrateCrawlUseCase запускает ingest по нескольким источникам параллельно,
// но не допускает двух одновременных обходов одного источника.
type OrchestrateCrawlUseCase struct {
	ingest     usecases_port.IngestSourcePort
	allSources []domain.Source

	mu    sync.Mutex
	locks map[domain.Source]*sync.Mutex
}

func NewOrchestrateCrawlUseCase(ingest usecases_port.IngestSourcePort, allSources []domain.Source) *OrchestrateCrawlUseCase {
	return &OrchestrateCrawlUseCase{
		ingest:     ingest,
		allSources: allSources,
		locks:      make(map[domain.Source]*sync.Mutex),
	}
}

func (uc *OrchestrateCrawlUseCase) lockFor(source domain.Source) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.locks[source]
	if !ok {
		l = &sync.Mutex{}
		uc.locks[source] = l
	}
	return l
}

// Execute: пустой список источников в задаче означает "все".
// Сбой одного источника не влияет на остальные.
func (uc *OrchestrateCrawlUseCase) Execute(ctx context.Context, task domain.CrawlTask) ([]domain.CrawlStats, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "OrchestrateCrawl",
		"task_id":  task.TaskID.String(),
	})

	sources := uniqueSources(task.Sources)
	if len(sources) == 0 {
		sources = uc.allSources
	}
	ucLogger.Info("Starting crawl task", port.Fields{"sources": sources, "full_scan": task.FullScan})

	stats := make([]domain.CrawlStats, len(sources))
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sourceLogger := ucLogger.WithFields(port.Fields{"source": source.String()})
			lock := uc.lockFor(source)
			if !lock.TryLock() {
				sourceLogger.Warn("Crawl for source is already running, skipping", nil)
				stats[i] = domain.CrawlStats{Source: source, Status: domain.CrawlStatusBusy, Warning: domain.ErrSourceBusy.Error()}
				return
			}
			defer lock.Unlock()

			sourceCtx := contextkeys.ContextWithLogger(ctx, sourceLogger)
			st, err := uc.ingest.Execute(sourceCtx, source, task.FullScan)
			if err != nil {
				sourceLogger.Error("Source ingest failed", err, nil)
				st = domain.CrawlStats{Source: source, Status: domain.CrawlStatusUnavailable, Warning: err.Error()}
			}
			stats[i] = st
		}()
	}
	wg.Wait()

	persisted := 0
	for _, st := range stats {
		persisted += st.Persisted
	}
	ucLogger.Info("Crawl task completed", port.Fields{"total_persisted": persisted})

	return stats, nil
}

func uniqueSources(sources []domain.Source) []domain.Source {
	seen := make(map[domain.Source]struct{}, len(sources))
	out := make([]domain.Source, 0, len(sources))
	for _, s := range sources {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
