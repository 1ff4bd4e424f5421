package aruodasfetcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/fieldparser"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// ссылка вида "/1-3456789/" или полный адрес с тем же хвостом
var idPattern = regexp.MustCompile(`/(\d+-\d+)/?$`)

func (a *AruodasFetcherAdapter) FetchIndexPage(ctx context.Context, page int) ([]domain.ListingDraft, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "AruodasFetcherAdapter(FetchIndexPage)",
		"page":      page,
	})

	html, ok := a.renderer.Render(ctx, sourceutil.PageURL(a.endpoint.SearchURL, page), indexReadySelector).Get()
	if !ok {
		return nil, fmt.Errorf("aruodas adapter: index page %d: %w", page, sourceutil.ErrDocumentUnavailable)
	}
	doc, err := sourceutil.ParseHTML([]byte(html))
	if err != nil {
		return nil, fmt.Errorf("aruodas adapter: index page %d: %w", page, err)
	}

	var drafts []domain.ListingDraft
	doc.Find("tr.list-row").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("h3 a").First()
		href := strings.TrimSpace(link.AttrOr("href", ""))
		m := idPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		district, street := fieldparser.SplitAddress(strings.Join(strings.Fields(link.Text()), " "), 1, 2)
		drafts = append(drafts, domain.ListingDraft{
			ExternalID: m[1],
			Link:       sourceutil.ResolveURL(a.endpoint.BaseURL, href),
			District:   district,
			Street:     street,
			Price:      fieldparser.ParseDecimal(fieldparser.StripNonNumeric(row.Find(".list-item-price").First().Text())),
			IsPartial:  true,
		})
	})

	logger.Debug("Index page parsed", port.Fields{"drafts": len(drafts)})
	return drafts, nil
}
