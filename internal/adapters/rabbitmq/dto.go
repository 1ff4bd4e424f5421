package rabbitmq

import (
	"time"

	"github.com/google/uuid"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// CrawlTaskDTO - входящая задача обхода, схема tasks/crawl-task/v1
type CrawlTaskDTO struct {
	TaskID   uuid.UUID `json:"task_id"`
	Sources  []string  `json:"sources"`
	FullScan bool      `json:"full_scan"`
}

// ListingCreatedEventDTO - схема events/listing-created/v1
type ListingCreatedEventDTO struct {
	EventID    uuid.UUID  `json:"event_id"`
	OccurredAt time.Time  `json:"occurred_at"`
	Listing    ListingDTO `json:"listing"`
}

// ListingDTO - десятичные значения передаются строкой, чтобы не терять точность
type ListingDTO struct {
	ID               uuid.UUID `json:"id"`
	ExternalID       string    `json:"external_id"`
	Source           string    `json:"source"`
	Link             string    `json:"link"`
	CreatedAt        time.Time `json:"created_at"`
	Description      *string   `json:"description"`
	DescriptionHash  *string   `json:"description_hash"`
	Street           *string   `json:"street"`
	District         *string   `json:"district"`
	HouseNumber      *string   `json:"house_number"`
	Heating          *string   `json:"heating"`
	Floor            *int      `json:"floor"`
	TotalFloors      *int      `json:"total_floors"`
	Area             *string   `json:"area"`
	Price            *string   `json:"price"`
	Rooms            *int      `json:"rooms"`
	ConstructionYear *int      `json:"construction_year"`
	BuildingMaterial *string   `json:"building_material"`
	BuildingState    *string   `json:"building_state"`
	Phone            *string   `json:"phone"`
}

// CrawlCompletedEventDTO - схема events/crawl-completed/v1
type CrawlCompletedEventDTO struct {
	TaskID     uuid.UUID           `json:"task_id"`
	FinishedAt time.Time           `json:"finished_at"`
	Sources    []domain.CrawlStats `json:"sources"`
}

func toListingDTO(l domain.CanonicalListing) ListingDTO {
	dto := ListingDTO{
		ID:               l.ID,
		ExternalID:       l.ExternalID,
		Source:           l.Source.String(),
		Link:             l.Link,
		CreatedAt:        l.CreatedAt,
		Description:      l.Description.Ptr(),
		DescriptionHash:  l.DescriptionHash.Ptr(),
		Street:           l.Street.Ptr(),
		District:         l.District.Ptr(),
		HouseNumber:      l.HouseNumber.Ptr(),
		Heating:          l.Heating.Ptr(),
		Floor:            l.Floor.Ptr(),
		TotalFloors:      l.TotalFloors.Ptr(),
		Rooms:            l.Rooms.Ptr(),
		ConstructionYear: l.ConstructionYear.Ptr(),
		BuildingMaterial: l.BuildingMaterial.Ptr(),
		BuildingState:    l.BuildingState.Ptr(),
		Phone:            l.Phone.Ptr(),
	}
	if v, ok := l.Area.Get(); ok {
		s := v.String()
		dto.Area = &s
	}
	if v, ok := l.Price.Get(); ok {
		s := v.String()
		dto.Price = &s
	}
	return dto
}

func toCrawlTask(dto CrawlTaskDTO) (domain.CrawlTask, error) {
	task := domain.CrawlTask{TaskID: dto.TaskID, FullScan: dto.FullScan}
	for _, raw := range dto.Sources {
		src, err := domain.ParseSource(raw)
		if err != nil {
			return domain.CrawlTask{}, err
		}
		task.Sources = append(task.Sources, src)
	}
	return task, nil
}
