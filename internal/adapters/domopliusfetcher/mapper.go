package domopliusfetcher

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/fieldparser"
)

// "3 aukštas iš 5" / "3/5" / "3"
var floorPattern = regexp.MustCompile(`^\s*(\d+)(?:\D+(\d+))?`)

func mapDetails(doc *goquery.Document, draft domain.ListingDraft) (domain.ListingDraft, error) {
	title := strings.TrimSpace(doc.Find("h1.title").First().Text())
	params := sourceutil.LabeledValues(doc.Selection, "table.view-group tr", "th", "td")
	if title == "" && len(params) == 0 {
		return domain.ListingDraft{}, domain.ErrDetailsMissing
	}

	district, street := fieldparser.SplitAddress(title, 1, 2)
	floor, totalFloors := parseFloor(sourceutil.FirstValue(params, "Aukštas"))

	full := draft
	full.District = district.Or(draft.District)
	full.Street = street.Or(draft.Street)
	full.HouseNumber = fieldparser.ParseText(sourceutil.FirstValue(params, "Namo numeris"))
	full.Area = fieldparser.ParseDecimal(fieldparser.StripNonNumeric(sourceutil.FirstValue(params, "Buto plotas (kv. m)", "Plotas")))
	full.Rooms = fieldparser.ParseInt(sourceutil.FirstValue(params, "Kambarių skaičius"))
	full.Floor = floor
	full.TotalFloors = fieldparser.ParseInt(sourceutil.FirstValue(params, "Aukštų skaičius")).Or(totalFloors)
	full.ConstructionYear = fieldparser.ParseInt(sourceutil.FirstValue(params, "Statybos metai"))
	full.BuildingMaterial = fieldparser.ParseText(sourceutil.FirstValue(params, "Namo tipas"))
	full.Heating = fieldparser.ParseText(sourceutil.FirstValue(params, "Šildymas"))
	full.BuildingState = fieldparser.ParseText(sourceutil.FirstValue(params, "Įrengimas"))
	full.Price = fieldparser.ParseDecimal(fieldparser.StripNonNumeric(doc.Find(".price-column .field-price").First().Text())).Or(draft.Price)
	full.Phone = fieldparser.ParseText(doc.Find(".phone-button .phone-number").First().Text())
	full.Description = fieldparser.ParseText(sourceutil.MultilineText(doc.Find("[itemprop='description']").First()))
	full.IsPartial = false

	return full, nil
}

func parseFloor(text string) (floor, total domain.Opt[int]) {
	m := floorPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.None[int](), domain.None[int]()
	}
	return fieldparser.ParseInt(m[1]), fieldparser.ParseInt(m[2])
}
