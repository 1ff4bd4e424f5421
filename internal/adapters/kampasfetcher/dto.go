package kampasfetcher

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/fieldparser"
)

// Поля API приходят то числом, то строкой, поэтому значения читаются сырыми
// и разбираются по одному: кривое поле становится отсутствующим, а не ломает весь документ.

type searchResponse struct {
	Hits []searchHit `json:"hits"`
}

type searchHit struct {
	ID          json.Number     `json:"id"`
	Title       json.RawMessage `json:"title"`
	ObjectPrice json.RawMessage `json:"objectprice"`
}

type detailResponse struct {
	ID                json.Number     `json:"id"`
	Title             json.RawMessage `json:"title"`
	ObjectPrice       json.RawMessage `json:"objectprice"`
	ObjectArea        json.RawMessage `json:"objectarea"`
	ObjectFloor       json.RawMessage `json:"objectfloor"`
	TotalFloors       json.RawMessage `json:"totalfloors"`
	TotalRooms        json.RawMessage `json:"totalrooms"`
	YearBuilt         json.RawMessage `json:"yearbuilt"`
	Description       json.RawMessage `json:"description"`
	Heating           json.RawMessage `json:"heating"`
	BuildingStructure json.RawMessage `json:"buildingstructure"`
	Condition         json.RawMessage `json:"condition"`
	HouseNum          json.RawMessage `json:"housenum"`
	Contact           json.RawMessage `json:"contact"`
}

type contactDTO struct {
	Phone json.RawMessage `json:"phone"`
}

// getText - строка как есть, число или bool - их литерал, объект/массив/null - пусто
func getText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(raw)
	}
}

func getInt(raw json.RawMessage) domain.Opt[int] {
	return fieldparser.ParseInt(getText(raw))
}

func getDecimal(raw json.RawMessage) domain.Opt[decimal.Decimal] {
	return fieldparser.ParseDecimal(getText(raw))
}

func getPhone(raw json.RawMessage) domain.Opt[string] {
	var contact contactDTO
	if err := json.Unmarshal(raw, &contact); err != nil {
		return domain.None[string]()
	}
	return fieldparser.ParseText(getText(contact.Phone))
}
