package port

import (
	"context"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// ListingSourcePort - один сайт с объявлениями
type ListingSourcePort interface {
	Source() domain.Source

	// IDOrder - как сравнивать нативные идентификаторы этого источника
	IDOrder() domain.IDOrder

	// FetchIndexPage возвращает частичные черновики со страницы списка (нумерация с 1).
	// Ошибка означает, что страница не загрузилась вовсе.
	FetchIndexPage(ctx context.Context, page int) ([]domain.ListingDraft, error)

	// FetchDetails дополняет черновик данными со страницы объявления
	FetchDetails(ctx context.Context, draft domain.ListingDraft) (domain.ListingDraft, error)
}
