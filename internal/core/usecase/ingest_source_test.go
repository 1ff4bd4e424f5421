package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joklek/rentbot-sub000/internal/core/converter"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

func newIngest(t *testing.T, result domain.CrawlResult, repo *fakeRepo, events *fakeEvents) *IngestSourceUseCase {
	t.Helper()
	registry, err := NewCrawlerRegistry(fakeCrawler{source: domain.SourceSkelbiu, result: result})
	require.NoError(t, err)
	conv := converter.NewConverter(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) })
	return NewIngestSourceUseCase(registry, repo, events, conv)
}

func TestIngest_PersistsOnlyEnrichedDrafts(t *testing.T) {
	full := domain.ListingDraft{
		ExternalID: "10",
		Link:       "https://example.lt/10",
		Price:      domain.Some(decimal.RequireFromString("500.00")),
		Phone:      domain.Some("8 600 12345"),
	}
	known := domain.ListingDraft{ExternalID: "9", Link: "https://example.lt/9", IsPartial: true}
	repo := newFakeRepo()
	events := &fakeEvents{}

	stats, err := newIngest(t, domain.CrawlResult{
		Source:       domain.SourceSkelbiu,
		Drafts:       []domain.ListingDraft{full, known},
		PagesFetched: 1,
		Status:       domain.CrawlStatusOK,
		Enriched:     1,
	}, repo, events).Execute(context.Background(), domain.SourceSkelbiu, false)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Persisted)
	assert.Equal(t, 1, stats.AlreadyKnown)
	assert.Equal(t, 2, stats.DraftsFound)

	require.Len(t, repo.saved, 1)
	saved := repo.saved[0]
	assert.Equal(t, domain.SourceSkelbiu, saved.Source)
	assert.Equal(t, "500", saved.Price.OrElse(decimal.Zero).String())
	assert.Equal(t, "+37060012345", saved.Phone.OrElse(""))

	require.Len(t, events.published, 1)
	assert.Equal(t, saved.ID, events.published[0].ID)
}

func TestIngest_ConflictNeverOverwrites(t *testing.T) {
	repo := newFakeRepo()
	repo.listings[listingKey{"10", domain.SourceSkelbiu}] = domain.CanonicalListing{
		ExternalID:  "10",
		Source:      domain.SourceSkelbiu,
		Description: domain.Some("original"),
	}
	events := &fakeEvents{}

	stats, err := newIngest(t, domain.CrawlResult{
		Drafts: []domain.ListingDraft{{ExternalID: "10", Description: domain.Some("changed")}},
		Status: domain.CrawlStatusOK,
	}, repo, events).Execute(context.Background(), domain.SourceSkelbiu, true)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Persisted)
	assert.Equal(t, 1, stats.AlreadyKnown)
	assert.Empty(t, events.published)
	assert.Equal(t, "original", repo.listings[listingKey{"10", domain.SourceSkelbiu}].Description.OrElse(""))
}

func TestIngest_SaveAndPublishFailures(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr["1"] = errNetwork
	events := &fakeEvents{err: errNetwork}

	stats, err := newIngest(t, domain.CrawlResult{
		Drafts:         []domain.ListingDraft{{ExternalID: "1"}, {ExternalID: "2"}},
		Status:         domain.CrawlStatusAnomaly,
		Warning:        "page 2 is identical to page 1",
		DetailFailures: 1,
	}, repo, events).Execute(context.Background(), domain.SourceSkelbiu, true)

	require.NoError(t, err)
	assert.Equal(t, domain.CrawlStatusAnomaly, stats.Status)
	assert.Equal(t, "page 2 is identical to page 1", stats.Warning)
	// запись сохранилась, хотя событие не ушло
	assert.Equal(t, 1, stats.Persisted)
	assert.Len(t, repo.saved, 1)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 3, stats.DraftsFound)
}

func TestIngest_NilEventsPublisher(t *testing.T) {
	repo := newFakeRepo()
	registry, err := NewCrawlerRegistry(fakeCrawler{source: domain.SourceKampas, result: domain.CrawlResult{
		Drafts: []domain.ListingDraft{{ExternalID: "1"}},
	}})
	require.NoError(t, err)

	stats, err := NewIngestSourceUseCase(registry, repo, nil, converter.NewConverter(nil)).
		Execute(context.Background(), domain.SourceKampas, false)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Persisted)
}

func TestIngest_UnknownSource(t *testing.T) {
	_, err := newIngest(t, domain.CrawlResult{}, newFakeRepo(), nil).Execute(context.Background(), domain.SourceAruodas, false)
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestCrawlerRegistry(t *testing.T) {
	registry, err := NewCrawlerRegistry(
		fakeCrawler{source: domain.SourceKampas},
		fakeCrawler{source: domain.SourceAruodas},
	)
	require.NoError(t, err)
	assert.Equal(t, []domain.Source{domain.SourceKampas, domain.SourceAruodas}, registry.Sources())

	_, ok := registry.Get(domain.SourceSkelbiu)
	assert.False(t, ok)

	_, err = NewCrawlerRegistry(fakeCrawler{source: domain.SourceKampas}, fakeCrawler{source: domain.SourceKampas})
	assert.Error(t, err)
}
