package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

type fakeSource struct {
	source  domain.Source
	order   domain.IDOrder
	pages   map[int][]domain.ListingDraft
	pageErr map[int]error
	// blockFrom - начиная с этой страницы запрос висит до отмены контекста
	blockFrom int

	detailErr map[string]error

	mu           sync.Mutex
	fetchedPages []int
	detailCalls  []string
}

func newFakeSource(order domain.IDOrder) *fakeSource {
	return &fakeSource{
		source:    domain.SourceDomoplius,
		order:     order,
		pages:     map[int][]domain.ListingDraft{},
		pageErr:   map[int]error{},
		detailErr: map[string]error{},
	}
}

func (f *fakeSource) Source() domain.Source   { return f.source }
func (f *fakeSource) IDOrder() domain.IDOrder { return f.order }

func (f *fakeSource) FetchIndexPage(ctx context.Context, page int) ([]domain.ListingDraft, error) {
	f.mu.Lock()
	f.fetchedPages = append(f.fetchedPages, page)
	f.mu.Unlock()

	if f.blockFrom > 0 && page >= f.blockFrom {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.pageErr[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func (f *fakeSource) FetchDetails(_ context.Context, draft domain.ListingDraft) (domain.ListingDraft, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, draft.ExternalID)
	f.mu.Unlock()

	if err := f.detailErr[draft.ExternalID]; err != nil {
		return domain.ListingDraft{}, err
	}
	draft.Description = domain.Some("details of " + draft.ExternalID)
	return draft, nil
}

func (f *fakeSource) pagesFetched() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.fetchedPages...)
}

func (f *fakeSource) detailsFetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.detailCalls...)
}

func partials(ids ...string) []domain.ListingDraft {
	out := make([]domain.ListingDraft, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.ListingDraft{ExternalID: id, Link: "https://example.lt/" + id, IsPartial: true})
	}
	return out
}

type listingKey struct {
	id     string
	source domain.Source
}

type fakeRepo struct {
	mu        sync.Mutex
	listings  map[listingKey]domain.CanonicalListing
	oldest    map[domain.Source]string
	oldestErr error
	saveErr   map[string]error
	forUser   []domain.CanonicalListing
	userErr   error
	saved     []domain.CanonicalListing
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		listings: map[listingKey]domain.CanonicalListing{},
		oldest:   map[domain.Source]string{},
		saveErr:  map[string]error{},
	}
}

func (r *fakeRepo) addKnown(source domain.Source, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.listings[listingKey{id, source}] = domain.CanonicalListing{ExternalID: id, Source: source}
	}
}

func (r *fakeRepo) ExistsByExternalIDAndSource(_ context.Context, externalID string, source domain.Source) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.listings[listingKey{externalID, source}]
	return ok, nil
}

func (r *fakeRepo) FindOldestBySource(_ context.Context, source domain.Source) (domain.Opt[domain.CanonicalListing], error) {
	if r.oldestErr != nil {
		return domain.None[domain.CanonicalListing](), r.oldestErr
	}
	id, ok := r.oldest[source]
	if !ok {
		return domain.None[domain.CanonicalListing](), nil
	}
	return domain.Some(domain.CanonicalListing{ExternalID: id, Source: source}), nil
}

func (r *fakeRepo) Save(_ context.Context, listing domain.CanonicalListing) (domain.CanonicalListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.saveErr[listing.ExternalID]; err != nil {
		return domain.CanonicalListing{}, err
	}
	key := listingKey{listing.ExternalID, listing.Source}
	if _, ok := r.listings[key]; ok {
		return domain.CanonicalListing{}, domain.ErrListingExists
	}
	listing.ID = uuid.New()
	r.listings[key] = listing
	r.saved = append(r.saved, listing)
	return listing, nil
}

func (r *fakeRepo) FindListingsForUserSince(_ context.Context, _ int64, _ time.Time) ([]domain.CanonicalListing, error) {
	return r.forUser, r.userErr
}

type fakeEvents struct {
	mu        sync.Mutex
	published []domain.CanonicalListing
	err       error
}

func (e *fakeEvents) PublishListingCreated(_ context.Context, listing domain.CanonicalListing) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.published = append(e.published, listing)
	return nil
}

type fakeCrawler struct {
	source domain.Source
	result domain.CrawlResult
}

func (c fakeCrawler) Source() domain.Source { return c.source }
func (c fakeCrawler) FetchLatest(context.Context, bool) domain.CrawlResult {
	return c.result
}

var errNetwork = errors.New("network down")
