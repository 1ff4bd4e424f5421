package skelbiufetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/fieldparser"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

func (a *SkelbiuFetcherAdapter) FetchIndexPage(ctx context.Context, page int) ([]domain.ListingDraft, error) {
	pageURL := sourceutil.PageURL(a.endpoint.SearchURL, page)
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SkelbiuFetcherAdapter(FetchIndexPage)",
		"page":      page,
	})

	body, ok := a.fetcher.Fetch(ctx, pageURL, nil).Get()
	if !ok {
		return nil, fmt.Errorf("skelbiu adapter: index page %d: %w", page, sourceutil.ErrDocumentUnavailable)
	}
	doc, err := sourceutil.ParseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("skelbiu adapter: index page %d: %w", page, err)
	}

	var drafts []domain.ListingDraft
	doc.Find("a.standard-list-item[data-item-id]").Each(func(_ int, item *goquery.Selection) {
		id := strings.TrimSpace(item.AttrOr("data-item-id", ""))
		href := strings.TrimSpace(item.AttrOr("href", ""))
		if id == "" || href == "" {
			return
		}
		drafts = append(drafts, domain.ListingDraft{
			ExternalID: id,
			Link:       sourceutil.ResolveURL(a.endpoint.BaseURL, href),
			Price:      fieldparser.ParseDecimal(fieldparser.StripNonNumeric(item.Find(".price").First().Text())),
			IsPartial:  true,
		})
	})

	logger.Debug("Index page parsed", port.Fields{"drafts": len(drafts)})
	return drafts, nil
}
