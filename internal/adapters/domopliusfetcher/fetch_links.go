package domopliusfetcher

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

const itemIDPrefix = "ann_"

// FetchIndexPage возвращает частичные черновики со страницы поиска
func (a *DomopliusFetcherAdapter) FetchIndexPage(ctx context.Context, page int) ([]domain.ListingDraft, error) {
	pageURL := sourceutil.PageURL(a.endpoint.SearchURL, page)
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "DomopliusFetcherAdapter(FetchIndexPage)",
		"page":      page,
	})

	body, ok := a.fetcher.Fetch(ctx, pageURL, nil).Get()
	if !ok {
		return nil, fmt.Errorf("domoplius adapter: index page %d: %w", page, sourceutil.ErrDocumentUnavailable)
	}

	doc, err := sourceutil.ParseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("domoplius adapter: index page %d: %w", page, err)
	}

	drafts := make([]domain.ListingDraft, 0, 30)
	doc.Find("div.item[id^='" + itemIDPrefix + "']").Each(func(_ int, item *goquery.Selection) {
		draft, ok := a.mapIndexItem(item)
		if !ok {
			logger.Debug("Skipping index item without id or link", nil)
			return
		}
		drafts = append(drafts, draft)
	})

	logger.Debug("Index page parsed", port.Fields{"drafts": len(drafts)})
	return drafts, nil
}

func (a *DomopliusFetcherAdapter) mapIndexItem(item *goquery.Selection) (domain.ListingDraft, bool) {
	id, _ := item.Attr("id")
	id = strings.TrimPrefix(strings.TrimSpace(id), itemIDPrefix)

	titleLink := item.Find(".title-list a").First()
	href, hasHref := titleLink.Attr("href")
	if id == "" || !hasHref {
		return domain.ListingDraft{}, false
	}

	title := strings.TrimSpace(titleLink.Text())
	district, street := fieldparser.SplitAddress(title, 1, 2)

	return domain.ListingDraft{
		ExternalID: id,
		Link:       sourceutil.ResolveURL(a.endpoint.BaseURL, href),
		District:   district,
		Street:     street,
		Price:      fieldparser.ParseDecimal(fieldparser.StripNonNumeric(item.Find(".price").First().Text())),
		IsPartial:  true,
	}, true
}
