// Package converter переводит черновики адаптеров в канонические объявления.
package converter

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/fieldparser"
)

// Converter - чистое и тотальное преобразование ListingDraft -> CanonicalListing.
// Время вставки берется из переданных часов, чтобы его можно было подменить в тестах.
type Converter struct {
	now func() time.Time
}

func NewConverter(now func() time.Time) *Converter {
	if now == nil {
		now = time.Now
	}
	return &Converter{now: now}
}

// Convert никогда не подставляет значения по умолчанию: отсутствующее поле остается отсутствующим.
// ID не назначается, его выдает хранилище.
func (c *Converter) Convert(draft domain.ListingDraft, source domain.Source) domain.CanonicalListing {
	listing := domain.CanonicalListing{
		ExternalID:       draft.ExternalID,
		Source:           source,
		Link:             draft.Link,
		CreatedAt:        c.now().UTC(),
		Description:      draft.Description,
		DescriptionHash:  HashDescription(draft.Description),
		Street:           draft.Street,
		District:         draft.District,
		HouseNumber:      draft.HouseNumber,
		Heating:          draft.Heating,
		Floor:            draft.Floor,
		TotalFloors:      draft.TotalFloors,
		Area:             draft.Area,
		Rooms:            draft.Rooms,
		ConstructionYear: draft.ConstructionYear,
		BuildingMaterial: draft.BuildingMaterial,
		BuildingState:    draft.BuildingState,
	}

	if price, ok := draft.Price.Get(); ok {
		listing.Price = domain.Some(fieldparser.NormalizePrice(price))
	}
	if phone, ok := draft.Phone.Get(); ok {
		listing.Phone = NormalizePhone(phone)
	}

	return listing
}

var (
	phoneNoise = strings.NewReplacer(" ", "", "\u00a0", "", "\t", "", "-", "", "(", "", ")", "")

	eightPlusEightDigits = regexp.MustCompile(`^8\d{8}$`)

	lineBreakTags = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// NormalizePhone приводит литовские номера к международному виду (+370...).
// Номер, уже записанный в международном формате, не меняется. Пустой номер - отсутствие.
func NormalizePhone(raw string) domain.Opt[string] {
	phone := phoneNoise.Replace(strings.TrimSpace(raw))
	if phone == "" {
		return domain.None[string]()
	}

	switch {
	case strings.HasPrefix(phone, "00"):
		phone = "+" + strings.TrimLeft(phone, "0")
	case strings.HasPrefix(phone, "+"):
	case strings.HasPrefix(phone, "86"):
		phone = "+3706" + phone[2:]
	case strings.HasPrefix(phone, "85"):
		phone = "+3705" + phone[2:]
	case eightPlusEightDigits.MatchString(phone):
		phone = "+370" + phone[1:]
	case strings.HasPrefix(phone, "370"):
		phone = "+" + phone
	}

	return domain.Some(phone)
}

// HashDescription - sha256 в hex от нормализованного описания.
// Переносы строк (<br>, CRLF) сводятся к \n, текст приводится к NFC.
func HashDescription(description domain.Opt[string]) domain.Opt[string] {
	text, ok := description.Get()
	if !ok || strings.TrimSpace(text) == "" {
		return domain.None[string]()
	}

	normalized := strings.TrimSpace(text)
	normalized = lineBreakTags.ReplaceAllString(normalized, "\n")
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = norm.NFC.String(normalized)

	sum := sha256.Sum256([]byte(normalized))
	return domain.Some(fmt.Sprintf("%x", sum))
}
