// Package sourcetest - подставные транспорты для тестов адаптеров площадок
package sourcetest

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

// Pages - адрес -> содержимое документа
type Pages map[string]string

// LoadFile читает фикстуру из testdata, падая в тесте при ошибке
func LoadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

// Fetcher отдает документы из карты; неизвестный адрес - пустой результат, как при сетевой ошибке
type Fetcher struct {
	Pages Pages

	mu       sync.Mutex
	Requests []string
	Headers  []map[string]string
}

func (f *Fetcher) Fetch(_ context.Context, url string, headers map[string]string) domain.Opt[[]byte] {
	f.mu.Lock()
	f.Requests = append(f.Requests, url)
	f.Headers = append(f.Headers, headers)
	f.mu.Unlock()

	body, ok := f.Pages[url]
	if !ok {
		return domain.None[[]byte]()
	}
	return domain.Some([]byte(body))
}

// Renderer - то же для браузерного транспорта, запоминает ожидаемые селекторы
type Renderer struct {
	Pages Pages

	mu            sync.Mutex
	Requests      []string
	WaitSelectors []string
}

func (r *Renderer) Render(_ context.Context, url string, waitSelector string) domain.Opt[string] {
	r.mu.Lock()
	r.Requests = append(r.Requests, url)
	r.WaitSelectors = append(r.WaitSelectors, waitSelector)
	r.mu.Unlock()

	body, ok := r.Pages[url]
	if !ok {
		return domain.None[string]()
	}
	return domain.Some(body)
}
