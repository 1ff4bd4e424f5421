package kampasfetcher

import (
	"fmt"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

var jsonHeaders = map[string]string{"Accept": "application/json"}

// KampasFetcherAdapter - JSON API kampas.lt. Разметки нет, поля приходят готовыми.
type KampasFetcherAdapter struct {
	fetcher  port.DocumentFetcherPort
	endpoint sourceutil.Endpoint
}

var _ port.ListingSourcePort = (*KampasFetcherAdapter)(nil)

func NewKampasFetcherAdapter(fetcher port.DocumentFetcherPort, endpoint sourceutil.Endpoint) (*KampasFetcherAdapter, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("kampas adapter: fetcher is required")
	}
	if endpoint.SearchURL == "" || endpoint.DetailURL == "" {
		return nil, fmt.Errorf("kampas adapter: search and detail urls are required")
	}
	return &KampasFetcherAdapter{fetcher: fetcher, endpoint: endpoint}, nil
}

func (a *KampasFetcherAdapter) Source() domain.Source {
	return domain.SourceKampas
}

func (a *KampasFetcherAdapter) IDOrder() domain.IDOrder {
	return domain.IDOrderNumeric
}

// listingLink - публичная страница объявления, ее и видит пользователь
func (a *KampasFetcherAdapter) listingLink(id string) string {
	return sourceutil.ResolveURL(a.endpoint.BaseURL, "/skelbimai/"+id)
}
