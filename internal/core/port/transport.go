package port

import (
	"context"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// DocumentFetcherPort загружает документ (HTML или JSON) по адресу.
// При сетевой ошибке или не-2xx ответе возвращает пустое значение, а не ошибку.
type DocumentFetcherPort interface {
	Fetch(ctx context.Context, url string, headers map[string]string) domain.Opt[[]byte]
}

// BrowserRendererPort открывает адрес в браузере и возвращает итоговый DOM.
// waitSelector - элемент, появления которого нужно дождаться перед снятием DOM.
type BrowserRendererPort interface {
	Render(ctx context.Context, url string, waitSelector string) domain.Opt[string]
}
