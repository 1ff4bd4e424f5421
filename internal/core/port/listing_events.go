package port

import (
	"context"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// ListingEventsPort публикует события о новых объявлениях для слоя уведомлений
type ListingEventsPort interface {
	PublishListingCreated(ctx context.Context, listing domain.CanonicalListing) error
}
