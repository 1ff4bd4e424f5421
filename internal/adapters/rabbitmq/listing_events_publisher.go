package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/contracts"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// ListingEventsAdapter публикует listing.created для слоя уведомлений
type ListingEventsAdapter struct {
	producer   Producer
	registry   *contracts.Registry
	routingKey string
	now        func() time.Time
}

var _ port.ListingEventsPort = (*ListingEventsAdapter)(nil)

func NewListingEventsAdapter(producer Producer, registry *contracts.Registry, routingKey string) (*ListingEventsAdapter, error) {
	if producer == nil || registry == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer and contract registry are required")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &ListingEventsAdapter{producer: producer, registry: registry, routingKey: routingKey, now: time.Now}, nil
}

func (a *ListingEventsAdapter) PublishListingCreated(ctx context.Context, listing domain.CanonicalListing) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ListingEventsAdapter",
		"routing_key": a.routingKey,
		"listing_id":  listing.ID.String(),
	})

	event := ListingCreatedEventDTO{
		EventID:    uuid.New(),
		OccurredAt: a.now().UTC(),
		Listing:    toListingDTO(listing),
	}
	if err := publishEvent(ctx, a.producer, a.registry, a.routingKey, contracts.EventListingCreated, contracts.Version1, event); err != nil {
		adapterLogger.Error("Failed to publish listing event", err, nil)
		return fmt.Errorf("rabbitmq adapter: %w", err)
	}

	adapterLogger.Debug("Listing event published", nil)
	return nil
}
