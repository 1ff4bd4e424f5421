package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingDraft - промежуточный результат адаптера, "сырое" извлечение с одного источника.
// ExternalID уникален только в паре с источником.
type ListingDraft struct {
	ExternalID string
	Link       string

	Description      Opt[string]
	Street           Opt[string]
	District         Opt[string]
	HouseNumber      Opt[string]
	Heating          Opt[string]
	Floor            Opt[int]
	TotalFloors      Opt[int]
	Area             Opt[decimal.Decimal] // м²
	Price            Opt[decimal.Decimal]
	Rooms            Opt[int]
	ConstructionYear Opt[int]
	BuildingMaterial Opt[string]
	BuildingState    Opt[string]
	Phone            Opt[string] // как на сайте, без нормализации

	// IsPartial - заполнены только поля со страницы списка, детали еще не загружены
	IsPartial bool
}

// CanonicalListing - сохраненное, не зависящее от источника объявление.
// Пара (ExternalID, Source) неизменяема и уникальна.
type CanonicalListing struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Source     Source    `json:"source"`
	Link       string    `json:"link"`
	CreatedAt  time.Time `json:"created_at"`

	Description      Opt[string]          `json:"description"`
	DescriptionHash  Opt[string]          `json:"description_hash"`
	Street           Opt[string]          `json:"street"`
	District         Opt[string]          `json:"district"`
	HouseNumber      Opt[string]          `json:"house_number"`
	Heating          Opt[string]          `json:"heating"`
	Floor            Opt[int]             `json:"floor"`
	TotalFloors      Opt[int]             `json:"total_floors"`
	Area             Opt[decimal.Decimal] `json:"area"`
	Price            Opt[decimal.Decimal] `json:"price"`
	Rooms            Opt[int]             `json:"rooms"`
	ConstructionYear Opt[int]             `json:"construction_year"`
	BuildingMaterial Opt[string]          `json:"building_material"`
	BuildingState    Opt[string]          `json:"building_state"`
	Phone            Opt[string]          `json:"phone"`
}

// DeduplicationGroup - объявления, описывающие, по нашему мнению, одну квартиру.
// Первый элемент - представитель группы. Не сохраняется, пересчитывается на каждый запрос.
type DeduplicationGroup struct {
	Listings []CanonicalListing
}

// Representative возвращает первый элемент группы
func (g DeduplicationGroup) Representative() CanonicalListing {
	return g.Listings[0]
}

// DecimalEqual - оба значения есть и численно равны (150000 == 150000.00)
func DecimalEqual(a, b Opt[decimal.Decimal]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	return aok && bok && av.Equal(bv)
}
