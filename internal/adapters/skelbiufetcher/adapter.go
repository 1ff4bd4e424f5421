package skelbiufetcher

import (
	"fmt"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// SkelbiuFetcherAdapter - статический HTML skelbiu.lt.
// Район и улица на странице объявления даны отдельными подписанными полями.
type SkelbiuFetcherAdapter struct {
	fetcher  port.DocumentFetcherPort
	endpoint sourceutil.Endpoint
}

var _ port.ListingSourcePort = (*SkelbiuFetcherAdapter)(nil)

func NewSkelbiuFetcherAdapter(fetcher port.DocumentFetcherPort, endpoint sourceutil.Endpoint) (*SkelbiuFetcherAdapter, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("skelbiu adapter: fetcher is required")
	}
	if endpoint.SearchURL == "" {
		return nil, fmt.Errorf("skelbiu adapter: search url is required")
	}
	return &SkelbiuFetcherAdapter{fetcher: fetcher, endpoint: endpoint}, nil
}

func (a *SkelbiuFetcherAdapter) Source() domain.Source {
	return domain.SourceSkelbiu
}

func (a *SkelbiuFetcherAdapter) IDOrder() domain.IDOrder {
	return domain.IDOrderNumeric
}
