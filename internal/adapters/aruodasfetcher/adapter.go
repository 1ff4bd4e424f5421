package aruodasfetcher

import (
	"fmt"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

const (
	indexReadySelector  = "table.list-search"
	detailReadySelector = "dl.obj-details"
)

// AruodasFetcherAdapter - aruodas.lt отдает содержимое только после выполнения скриптов,
// поэтому документы получаем через браузер.
// ID вида "1-3456789" сравниваются по сегментам, числовой хвост как число.
type AruodasFetcherAdapter struct {
	renderer port.BrowserRendererPort
	endpoint sourceutil.Endpoint
}

var _ port.ListingSourcePort = (*AruodasFetcherAdapter)(nil)

func NewAruodasFetcherAdapter(renderer port.BrowserRendererPort, endpoint sourceutil.Endpoint) (*AruodasFetcherAdapter, error) {
	if renderer == nil {
		return nil, fmt.Errorf("aruodas adapter: renderer is required")
	}
	if endpoint.SearchURL == "" {
		return nil, fmt.Errorf("aruodas adapter: search url is required")
	}
	return &AruodasFetcherAdapter{renderer: renderer, endpoint: endpoint}, nil
}

func (a *AruodasFetcherAdapter) Source() domain.Source {
	return domain.SourceAruodas
}

func (a *AruodasFetcherAdapter) IDOrder() domain.IDOrder {
	return domain.IDOrderSegmented
}
