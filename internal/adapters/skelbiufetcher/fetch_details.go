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

func (a *SkelbiuFetcherAdapter) FetchDetails(ctx context.Context, draft domain.ListingDraft) (domain.ListingDraft, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "SkelbiuFetcherAdapter(FetchDetails)",
		"external_id": draft.ExternalID,
	})

	body, ok := a.fetcher.Fetch(ctx, draft.Link, nil).Get()
	if !ok {
		return domain.ListingDraft{}, fmt.Errorf("skelbiu adapter: listing %s: %w", draft.ExternalID, sourceutil.ErrDocumentUnavailable)
	}
	doc, err := sourceutil.ParseHTML(body)
	if err != nil {
		return domain.ListingDraft{}, fmt.Errorf("skelbiu adapter: listing %s: %w", draft.ExternalID, err)
	}

	params := sourceutil.LabeledValues(doc.Selection, ".details-row", ".detail-label", ".detail-value")
	if len(params) == 0 {
		logger.Warn("Listing page has no parameters block", port.Fields{"url": draft.Link})
		return domain.ListingDraft{}, fmt.Errorf("skelbiu adapter: listing %s: %w", draft.ExternalID, domain.ErrDetailsMissing)
	}

	full := draft
	full.Street = fieldparser.ParseText(sourceutil.FirstValue(params, "Gatvė")).Or(draft.Street)
	full.District = fieldparser.ParseText(sourceutil.FirstValue(params, "Mikrorajonas", "Rajonas")).Or(draft.District)
	full.HouseNumber = fieldparser.ParseText(sourceutil.FirstValue(params, "Namo numeris"))
	full.Area = fieldparser.ParseDecimal(fieldparser.StripNonNumeric(sourceutil.FirstValue(params, "Plotas, m²", "Plotas")))
	full.Rooms = fieldparser.ParseInt(sourceutil.FirstValue(params, "Kamb. sk.", "Kambarių skaičius"))
	full.Floor = fieldparser.ParseInt(sourceutil.FirstValue(params, "Aukštas"))
	full.TotalFloors = fieldparser.ParseInt(sourceutil.FirstValue(params, "Aukštų sk.", "Aukštų skaičius"))
	full.ConstructionYear = fieldparser.ParseInt(sourceutil.FirstValue(params, "Statybos metai", "Metai"))
	full.Heating = fieldparser.ParseText(sourceutil.FirstValue(params, "Šildymas"))
	full.BuildingMaterial = fieldparser.ParseText(sourceutil.FirstValue(params, "Namo tipas"))
	full.BuildingState = fieldparser.ParseText(sourceutil.FirstValue(params, "Būklė", "Įrengimas"))
	full.Price = fieldparser.ParseDecimal(fieldparser.StripNonNumeric(doc.Find("[itemprop='price']").First().Text())).Or(draft.Price)
	full.Description = fieldparser.ParseText(sourceutil.MultilineText(doc.Find("[itemprop='description']").First()))
	full.Phone = phoneFromLink(doc.Find("a.phone-link").First())
	full.IsPartial = false

	return full, nil
}

// phoneFromLink - номер из href="tel:...", иначе текст ссылки
func phoneFromLink(link *goquery.Selection) domain.Opt[string] {
	if href, ok := link.Attr("href"); ok && strings.HasPrefix(href, "tel:") {
		return fieldparser.ParseText(strings.TrimPrefix(href, "tel:"))
	}
	return fieldparser.ParseText(link.Text())
}
