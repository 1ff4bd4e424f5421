package aruodasfetcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/fieldparser"
)

// "1975 m. renovacija 2015" - берем первый год
var yearPattern = regexp.MustCompile(`\d{4}`)

func (a *AruodasFetcherAdapter) FetchDetails(ctx context.Context, draft domain.ListingDraft) (domain.ListingDraft, error) {
	html, ok := a.renderer.Render(ctx, draft.Link, detailReadySelector).Get()
	if !ok {
		return domain.ListingDraft{}, fmt.Errorf("aruodas adapter: listing %s: %w", draft.ExternalID, sourceutil.ErrDocumentUnavailable)
	}
	doc, err := sourceutil.ParseHTML([]byte(html))
	if err != nil {
		return domain.ListingDraft{}, fmt.Errorf("aruodas adapter: listing %s: %w", draft.ExternalID, err)
	}

	full, err := mapDetails(doc, draft)
	if err != nil {
		return domain.ListingDraft{}, fmt.Errorf("aruodas adapter: listing %s: %w", draft.ExternalID, err)
	}
	return full, nil
}

func mapDetails(doc *goquery.Document, draft domain.ListingDraft) (domain.ListingDraft, error) {
	params := sourceutil.DefinitionValues(doc.Find("dl.obj-details").First())
	if len(params) == 0 {
		return domain.ListingDraft{}, domain.ErrDetailsMissing
	}

	title := strings.Join(strings.Fields(doc.Find("h1.obj-header-text").First().Text()), " ")
	district, street := fieldparser.SplitAddress(title, 1, 2)

	full := draft
	full.District = district.Or(draft.District)
	full.Street = street.Or(draft.Street)
	full.HouseNumber = fieldparser.ParseText(sourceutil.FirstValue(params, "Namo numeris"))
	full.Area = fieldparser.ParseDecimal(fieldparser.StripNonNumeric(sourceutil.FirstValue(params, "Plotas")))
	full.Rooms = fieldparser.ParseInt(sourceutil.FirstValue(params, "Kambarių sk.", "Kambarių skaičius"))
	full.Floor = fieldparser.ParseInt(sourceutil.FirstValue(params, "Aukštas"))
	full.TotalFloors = fieldparser.ParseInt(sourceutil.FirstValue(params, "Aukštų sk.", "Aukštų skaičius"))
	full.ConstructionYear = fieldparser.ParseInt(yearPattern.FindString(sourceutil.FirstValue(params, "Metai", "Statybos metai")))
	full.BuildingMaterial = fieldparser.ParseText(sourceutil.FirstValue(params, "Pastato tipas"))
	full.Heating = fieldparser.ParseText(sourceutil.FirstValue(params, "Šildymas"))
	full.BuildingState = fieldparser.ParseText(sourceutil.FirstValue(params, "Įrengimas"))
	full.Price = fieldparser.ParseDecimal(fieldparser.StripNonNumeric(doc.Find(".price-eur").First().Text())).Or(draft.Price)
	full.Phone = fieldparser.ParseText(doc.Find("span.phone").First().Text())

	description := doc.Find("#collapsedText").First()
	if description.Length() == 0 {
		description = doc.Find(".obj-comment").First()
	}
	full.Description = fieldparser.ParseText(sourceutil.MultilineText(description))
	full.IsPartial = false

	return full, nil
}
