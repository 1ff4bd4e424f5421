package rest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// ListingResponse - десятичные значения строкой, как в событиях
type ListingResponse struct {
	ID               string    `json:"id"`
	ExternalID       string    `json:"externalId"`
	Source           string    `json:"source"`
	Link             string    `json:"link"`
	CreatedAt        time.Time `json:"createdAt"`
	Description      *string   `json:"description,omitempty"`
	Street           *string   `json:"street,omitempty"`
	District         *string   `json:"district,omitempty"`
	HouseNumber      *string   `json:"houseNumber,omitempty"`
	Heating          *string   `json:"heating,omitempty"`
	Floor            *int      `json:"floor,omitempty"`
	TotalFloors      *int      `json:"totalFloors,omitempty"`
	Area             *string   `json:"area,omitempty"`
	Price            *string   `json:"price,omitempty"`
	Rooms            *int      `json:"rooms,omitempty"`
	ConstructionYear *int      `json:"constructionYear,omitempty"`
	BuildingMaterial *string   `json:"buildingMaterial,omitempty"`
	BuildingState    *string   `json:"buildingState,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
}

// ListingGroupResponse - одна квартира: представитель и найденные дубликаты с других площадок
type ListingGroupResponse struct {
	Representative ListingResponse   `json:"representative"`
	Duplicates     []ListingResponse `json:"duplicates"`
}

type UserListingsResponse struct {
	UserID int64                  `json:"userId"`
	Since  time.Time              `json:"since"`
	Groups []ListingGroupResponse `json:"groups"`
}

type StartCrawlRequest struct {
	Sources  []string `json:"sources"`
	FullScan bool     `json:"full_scan"`
}

type StartCrawlResponse struct {
	TaskID  string              `json:"taskId"`
	Results []domain.CrawlStats `json:"results"`
}

type SourcesResponse struct {
	Sources []string `json:"sources"`
}

func decimalString(v domain.Opt[decimal.Decimal]) *string {
	d, ok := v.Get()
	if !ok {
		return nil
	}
	s := d.String()
	return &s
}

func toListingResponse(l domain.CanonicalListing) ListingResponse {
	return ListingResponse{
		ID:               l.ID.String(),
		ExternalID:       l.ExternalID,
		Source:           l.Source.String(),
		Link:             l.Link,
		CreatedAt:        l.CreatedAt,
		Description:      l.Description.Ptr(),
		Street:           l.Street.Ptr(),
		District:         l.District.Ptr(),
		HouseNumber:      l.HouseNumber.Ptr(),
		Heating:          l.Heating.Ptr(),
		Floor:            l.Floor.Ptr(),
		TotalFloors:      l.TotalFloors.Ptr(),
		Area:             decimalString(l.Area),
		Price:            decimalString(l.Price),
		Rooms:            l.Rooms.Ptr(),
		ConstructionYear: l.ConstructionYear.Ptr(),
		BuildingMaterial: l.BuildingMaterial.Ptr(),
		BuildingState:    l.BuildingState.Ptr(),
		Phone:            l.Phone.Ptr(),
	}
}

func toGroupResponses(groups []domain.DeduplicationGroup) []ListingGroupResponse {
	out := make([]ListingGroupResponse, 0, len(groups))
	for _, g := range groups {
		if len(g.Listings) == 0 {
			continue
		}
		group := ListingGroupResponse{
			Representative: toListingResponse(g.Representative()),
			Duplicates:     make([]ListingResponse, 0, len(g.Listings)-1),
		}
		for _, l := range g.Listings[1:] {
			group.Duplicates = append(group.Duplicates, toListingResponse(l))
		}
		out = append(out, group)
	}
	return out
}
