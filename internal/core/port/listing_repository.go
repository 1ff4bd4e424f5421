package port

import (
	"context"
	"time"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// KnownListingsPort - то, что контроллеру обхода нужно знать об уже сохраненных объявлениях.
// Только чтение, безопасно для конкурентных вызовов.
type KnownListingsPort interface {
	ExistsByExternalIDAndSource(ctx context.Context, externalID string, source domain.Source) (bool, error)

	// FindOldestBySource возвращает самое раннее сохраненное объявление источника, если оно есть
	FindOldestBySource(ctx context.Context, source domain.Source) (domain.Opt[domain.CanonicalListing], error)
}

// ListingRepositoryPort - полный контракт хранилища объявлений
type ListingRepositoryPort interface {
	KnownListingsPort

	// Save атомарно вставляет запись. Если пара (ExternalID, Source) уже есть,
	// существующая запись не меняется и возвращается domain.ErrListingExists.
	Save(ctx context.Context, listing domain.CanonicalListing) (domain.CanonicalListing, error)

	// FindListingsForUserSince применяет фильтры пользователя на своей стороне.
	// Порядок - по времени создания, от старых к новым.
	FindListingsForUserSince(ctx context.Context, userID int64, since time.Time) ([]domain.CanonicalListing, error)
}
