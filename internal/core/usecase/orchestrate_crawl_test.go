package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

type blockingIngest struct {
	mu      sync.Mutex
	calls   map[domain.Source]int
	started chan domain.Source
	release chan struct{}
	failFor domain.Source
}

func (b *blockingIngest) Execute(_ context.Context, source domain.Source, _ bool) (domain.CrawlStats, error) {
	b.mu.Lock()
	b.calls[source]++
	b.mu.Unlock()

	if source == b.failFor {
		return domain.CrawlStats{}, fmt.Errorf("boom")
	}
	if b.started != nil {
		b.started <- source
		<-b.release
	}
	return domain.CrawlStats{Source: source, Status: domain.CrawlStatusOK, Persisted: 1}, nil
}

func TestOrchestrate_RunsAllSourcesWhenTaskIsEmpty(t *testing.T) {
	ingest := &blockingIngest{calls: map[domain.Source]int{}}
	uc := NewOrchestrateCrawlUseCase(ingest, domain.AllSources)

	stats, err := uc.Execute(context.Background(), domain.CrawlTask{TaskID: uuid.New()})

	require.NoError(t, err)
	require.Len(t, stats, len(domain.AllSources))
	for i, source := range domain.AllSources {
		assert.Equal(t, source, stats[i].Source)
		assert.Equal(t, 1, ingest.calls[source])
	}
}

func TestOrchestrate_FailureIsIsolated(t *testing.T) {
	ingest := &blockingIngest{calls: map[domain.Source]int{}, failFor: domain.SourceSkelbiu}
	uc := NewOrchestrateCrawlUseCase(ingest, domain.AllSources)

	stats, err := uc.Execute(context.Background(), domain.CrawlTask{
		Sources: []domain.Source{domain.SourceSkelbiu, domain.SourceKampas, domain.SourceKampas},
	})

	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.CrawlStatusUnavailable, stats[0].Status)
	assert.Equal(t, "boom", stats[0].Warning)
	assert.Equal(t, domain.CrawlStatusOK, stats[1].Status)
	assert.Equal(t, 1, ingest.calls[domain.SourceKampas])
}

func TestOrchestrate_SameSourceIsNeverCrawledTwiceAtOnce(t *testing.T) {
	ingest := &blockingIngest{
		calls:   map[domain.Source]int{},
		started: make(chan domain.Source, 1),
		release: make(chan struct{}),
	}
	uc := NewOrchestrateCrawlUseCase(ingest, domain.AllSources)
	task := domain.CrawlTask{Sources: []domain.Source{domain.SourceAruodas}}

	firstDone := make(chan []domain.CrawlStats)
	go func() {
		stats, _ := uc.Execute(context.Background(), task)
		firstDone <- stats
	}()

	select {
	case <-ingest.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first crawl did not start")
	}

	second, err := uc.Execute(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, domain.CrawlStatusBusy, second[0].Status)

	close(ingest.release)
	first := <-firstDone
	require.Len(t, first, 1)
	assert.Equal(t, domain.CrawlStatusOK, first[0].Status)
	assert.Equal(t, 1, ingest.calls[domain.SourceAruodas])
}
