package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

func ids(drafts []domain.ListingDraft) []string {
	return draftIDs(drafts)
}

func TestFetchLatest_StopsAtKnownBoundary(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("130", "125", "120")
	source.pages[2] = partials("115", "105", "100", "99")
	source.pages[3] = partials("98", "97")
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"
	repo.addKnown(source.source, "100", "99")

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, []int{1, 2}, source.pagesFetched())
	assert.Equal(t, domain.CrawlStatusOK, result.Status)
	assert.Equal(t, 2, result.PagesFetched)
	assert.Equal(t, []string{"130", "125", "120", "115", "105", "100", "99"}, ids(result.Drafts))
}

func TestFetchLatest_BoundaryOnFirstPage(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("102", "101", "100")
	source.pages[2] = partials("99")
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"

	NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, []int{1}, source.pagesFetched())
}

func TestFetchLatest_NumericOrderIsNotLexicographic(t *testing.T) {
	// "99" < "100" численно, но не как строка
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("1000", "999")
	source.pages[2] = partials("150", "99")
	source.pages[3] = partials("98")
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"

	NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, []int{1, 2}, source.pagesFetched())
}

func TestFetchLatest_LexicographicOrder(t *testing.T) {
	source := newFakeSource(domain.IDOrderLexicographic)
	source.pages[1] = partials("1-3000", "1-2900")
	source.pages[2] = partials("1-2800", "1-2000")
	source.pages[3] = partials("1-1000")
	repo := newFakeRepo()
	repo.oldest[source.source] = "1-2500"

	NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, []int{1, 2}, source.pagesFetched())
}

func TestFetchLatest_FirstScanFetchesOnlyFirstPage(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("30", "29")
	source.pages[2] = partials("28", "27")

	result := NewCrawlSourceUseCase(source, newFakeRepo(), 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, []int{1}, source.pagesFetched())
	assert.Equal(t, domain.CrawlStatusOK, result.Status)
	assert.Len(t, result.Drafts, 2)
}

func TestFetchLatest_ShallowScanFetchesOnlyFirstPage(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("30", "29")
	source.pages[2] = partials("28", "27")
	repo := newFakeRepo()
	repo.oldest[source.source] = "1"

	NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), false)

	assert.Equal(t, []int{1}, source.pagesFetched())
}

func TestFetchLatest_OldestLookupFailureActsAsFirstScan(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("30")
	source.pages[2] = partials("29")
	repo := newFakeRepo()
	repo.oldestErr = errNetwork

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, []int{1}, source.pagesFetched())
	assert.Equal(t, domain.CrawlStatusOK, result.Status)
}

func TestFetchLatest_IdenticalPagesAreAnomaly(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300", "299")
	source.pages[2] = partials("300", "299")
	source.pages[3] = partials("298")
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, []int{1, 2}, source.pagesFetched())
	assert.Equal(t, domain.CrawlStatusAnomaly, result.Status)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, []string{"300", "299"}, ids(result.Drafts))
}

func TestFetchLatest_EmptyLaterPageIsAnomaly(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300", "299")
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, domain.CrawlStatusAnomaly, result.Status)
	assert.Equal(t, 2, result.PagesFetched)
	assert.Len(t, result.Drafts, 2)
}

func TestFetchLatest_EmptyFirstPage(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, domain.CrawlStatusEmpty, result.Status)
	assert.Empty(t, result.Drafts)
	assert.Equal(t, []int{1}, source.pagesFetched())
}

func TestFetchLatest_FirstPageUnavailable(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pageErr[1] = errNetwork

	result := NewCrawlSourceUseCase(source, newFakeRepo(), 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, domain.CrawlStatusUnavailable, result.Status)
	assert.Empty(t, result.Drafts)
	assert.Zero(t, result.PagesFetched)
}

func TestFetchLatest_LaterPageFailureKeepsCollected(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300", "299")
	source.pageErr[2] = errNetwork
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, domain.CrawlStatusOK, result.Status)
	assert.Contains(t, result.Warning, "page 2")
	assert.Len(t, result.Drafts, 2)
}

func TestFetchLatest_ShiftedPagesKeepFirstOccurrence(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300", "299", "298")
	// новое объявление сдвинуло выдачу, 298 повторяется
	source.pages[2] = partials("298", "297", "100")
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"
	repo.addKnown(source.source, "100")

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), true)

	assert.Equal(t, []string{"300", "299", "298", "297", "100"}, ids(result.Drafts))
}

func TestFetchLatest_EnrichesOnlyUnknownDrafts(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300", "299", "298")
	repo := newFakeRepo()
	repo.addKnown(source.source, "299")

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), false)

	assert.ElementsMatch(t, []string{"300", "298"}, source.detailsFetched())
	require.Len(t, result.Drafts, 3)
	assert.Equal(t, 2, result.Enriched)

	byID := map[string]domain.ListingDraft{}
	for _, d := range result.Drafts {
		byID[d.ExternalID] = d
	}
	assert.True(t, byID["299"].IsPartial)
	assert.False(t, byID["299"].Description.IsPresent())
	assert.False(t, byID["300"].IsPartial)
	assert.Equal(t, "details of 300", byID["300"].Description.OrElse(""))
}

func TestFetchLatest_SameIDFromAnotherSourceIsNotKnown(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300")
	repo := newFakeRepo()
	repo.addKnown(domain.SourceKampas, "300")

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(context.Background(), false)

	assert.Equal(t, []string{"300"}, source.detailsFetched())
	require.Len(t, result.Drafts, 1)
	assert.False(t, result.Drafts[0].IsPartial)
}

func TestFetchLatest_DetailFailureSkipsOnlyThatListing(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300", "299", "298")
	source.detailErr["299"] = errNetwork

	result := NewCrawlSourceUseCase(source, newFakeRepo(), 3, 0).FetchLatest(context.Background(), false)

	assert.Equal(t, []string{"300", "298"}, ids(result.Drafts))
	assert.Equal(t, 1, result.DetailFailures)
	assert.Equal(t, domain.CrawlStatusOK, result.Status)
}

func TestFetchLatest_BudgetInterruptsPagingButKeepsDrafts(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300", "299")
	source.blockFrom = 2
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"

	result := NewCrawlSourceUseCase(source, repo, 2, 50*time.Millisecond).FetchLatest(context.Background(), true)

	assert.Equal(t, domain.CrawlStatusInterrupted, result.Status)
	assert.Contains(t, result.Warning, "budget")
	// детали загружаются уже вне бюджета пагинации
	assert.Equal(t, []string{"300", "299"}, ids(result.Drafts))
	assert.Equal(t, 2, result.Enriched)
}

func TestFetchLatest_CancelledDuringPagingSkipsEnrichment(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("300", "299")
	source.blockFrom = 2
	repo := newFakeRepo()
	repo.oldest[source.source] = "100"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(20*time.Millisecond, cancel)

	result := NewCrawlSourceUseCase(source, repo, 2, 0).FetchLatest(ctx, true)

	assert.Equal(t, domain.CrawlStatusInterrupted, result.Status)
	assert.Contains(t, result.Warning, "enrichment")
	assert.Empty(t, source.detailsFetched())
	assert.Equal(t, []string{"300", "299"}, ids(result.Drafts))
	assert.Zero(t, result.Enriched)
	for _, d := range result.Drafts {
		assert.True(t, d.IsPartial, d.ExternalID)
	}
}

func TestFetchLatest_AlreadyCancelledContextFetchesNoDetails(t *testing.T) {
	source := newFakeSource(domain.IDOrderNumeric)
	source.pages[1] = partials("12", "11")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewCrawlSourceUseCase(source, newFakeRepo(), 2, 0).FetchLatest(ctx, true)

	assert.Equal(t, domain.CrawlStatusInterrupted, result.Status)
	assert.Equal(t, "crawl cancelled before detail enrichment", result.Warning)
	assert.Empty(t, source.detailsFetched())
	assert.Len(t, result.Drafts, 2)
}
