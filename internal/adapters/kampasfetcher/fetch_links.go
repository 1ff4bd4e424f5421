package kampasfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/fieldparser"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

func (a *KampasFetcherAdapter) FetchIndexPage(ctx context.Context, page int) ([]domain.ListingDraft, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "KampasFetcherAdapter(FetchIndexPage)",
		"page":      page,
	})

	body, ok := a.fetcher.Fetch(ctx, sourceutil.PageURL(a.endpoint.SearchURL, page), jsonHeaders).Get()
	if !ok {
		return nil, fmt.Errorf("kampas adapter: index page %d: %w", page, sourceutil.ErrDocumentUnavailable)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kampas adapter: decode index page %d: %w", page, err)
	}

	drafts := make([]domain.ListingDraft, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		id := strings.TrimSpace(hit.ID.String())
		if id == "" {
			logger.Debug("Search hit without id skipped", port.Fields{"title": getText(hit.Title)})
			continue
		}
		district, street := fieldparser.SplitAddress(getText(hit.Title), 1, 2)
		drafts = append(drafts, domain.ListingDraft{
			ExternalID: id,
			Link:       a.listingLink(id),
			District:   district,
			Street:     street,
			Price:      getDecimal(hit.ObjectPrice),
			IsPartial:  true,
		})
	}
	return drafts, nil
}
