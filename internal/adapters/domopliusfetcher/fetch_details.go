package domopliusfetcher

import (
	"context"
	"fmt"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// FetchDetails загружает страницу объявления и дополняет черновик
func (a *DomopliusFetcherAdapter) FetchDetails(ctx context.Context, draft domain.ListingDraft) (domain.ListingDraft, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "DomopliusFetcherAdapter(FetchDetails)",
		"external_id": draft.ExternalID,
	})

	body, ok := a.fetcher.Fetch(ctx, draft.Link, nil).Get()
	if !ok {
		return domain.ListingDraft{}, fmt.Errorf("domoplius adapter: listing %s: %w", draft.ExternalID, sourceutil.ErrDocumentUnavailable)
	}

	doc, err := sourceutil.ParseHTML(body)
	if err != nil {
		return domain.ListingDraft{}, fmt.Errorf("domoplius adapter: listing %s: %w", draft.ExternalID, err)
	}

	full, err := mapDetails(doc, draft)
	if err != nil {
		logger.Warn("Listing page has unexpected layout", port.Fields{"url": draft.Link})
		return domain.ListingDraft{}, fmt.Errorf("domoplius adapter: listing %s: %w", draft.ExternalID, err)
	}
	return full, nil
}
