package domopliusfetcher

import (
	"fmt"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// DomopliusFetcherAdapter - статический HTML domoplius.lt
type DomopliusFetcherAdapter struct {
	fetcher  port.DocumentFetcherPort
	endpoint sourceutil.Endpoint
}

var _ port.ListingSourcePort = (*DomopliusFetcherAdapter)(nil)

func NewDomopliusFetcherAdapter(fetcher port.DocumentFetcherPort, endpoint sourceutil.Endpoint) (*DomopliusFetcherAdapter, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("domoplius adapter: fetcher is required")
	}
	if endpoint.SearchURL == "" {
		return nil, fmt.Errorf("domoplius adapter: search url is required")
	}
	return &DomopliusFetcherAdapter{fetcher: fetcher, endpoint: endpoint}, nil
}

func (a *DomopliusFetcherAdapter) Source() domain.Source {
	return domain.SourceDomoplius
}

func (a *DomopliusFetcherAdapter) IDOrder() domain.IDOrder {
	return domain.IDOrderNumeric
}
