package domopliusfetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil/sourcetest"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

const (
	searchURL = "https://domoplius.lt/skelbimai/butai?action_type=3&page_nr={page}"
	detailURL = "https://domoplius.lt/skelbimai/2-kambariu-butas-nuomai-vilniuje-antakalnis-antakalnio-g-7151234.html"
)

func newAdapter(t *testing.T, pages sourcetest.Pages) *DomopliusFetcherAdapter {
	t.Helper()
	adapter, err := NewDomopliusFetcherAdapter(&sourcetest.Fetcher{Pages: pages}, sourceutil.Endpoint{
		SearchURL: searchURL,
		BaseURL:   "https://domoplius.lt",
	})
	require.NoError(t, err)
	return adapter
}

func TestFetchIndexPage(t *testing.T) {
	adapter := newAdapter(t, sourcetest.Pages{
		"https://domoplius.lt/skelbimai/butai?action_type=3&page_nr=1": sourcetest.LoadFile(t, "testdata/index.html"),
	})

	drafts, err := adapter.FetchIndexPage(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, drafts, 2)

	first := drafts[0]
	assert.Equal(t, "7151234", first.ExternalID)
	assert.Equal(t, detailURL, first.Link)
	assert.Equal(t, "Antakalnis", first.District.OrElse(""))
	assert.Equal(t, "Antakalnio g.", first.Street.OrElse(""))
	assert.Equal(t, "450", first.Price.Ptr().String())
	assert.True(t, first.IsPartial)

	second := drafts[1]
	assert.Equal(t, "7151200", second.ExternalID)
	assert.False(t, second.Price.IsPresent())
	assert.False(t, second.District.IsPresent())
	assert.False(t, second.Street.IsPresent())
}

func TestFetchIndexPage_Unavailable(t *testing.T) {
	_, err := newAdapter(t, nil).FetchIndexPage(context.Background(), 2)
	assert.ErrorIs(t, err, sourceutil.ErrDocumentUnavailable)
}

func TestFetchDetails(t *testing.T) {
	adapter := newAdapter(t, sourcetest.Pages{detailURL: sourcetest.LoadFile(t, "testdata/details.html")})
	draft := domain.ListingDraft{ExternalID: "7151234", Link: detailURL, IsPartial: true}

	full, err := adapter.FetchDetails(context.Background(), draft)

	require.NoError(t, err)
	assert.False(t, full.IsPartial)
	assert.Equal(t, "7151234", full.ExternalID)
	assert.Equal(t, "Antakalnis", full.District.OrElse(""))
	assert.Equal(t, "Antakalnio g.", full.Street.OrElse(""))
	assert.Equal(t, "15", full.HouseNumber.OrElse(""))
	assert.Equal(t, "54.5", full.Area.Ptr().String())
	assert.Equal(t, "460", full.Price.Ptr().String())
	assert.Equal(t, 2, full.Rooms.OrElse(0))
	assert.Equal(t, 3, full.Floor.OrElse(0))
	assert.Equal(t, 5, full.TotalFloors.OrElse(0))
	assert.Equal(t, 1995, full.ConstructionYear.OrElse(0))
	assert.Equal(t, "Mūrinis", full.BuildingMaterial.OrElse(""))
	assert.Equal(t, "Centrinis, dujinis", full.Heating.OrElse(""))
	assert.Equal(t, "Įrengtas", full.BuildingState.OrElse(""))
	assert.Equal(t, "8 612 34567", full.Phone.OrElse(""))
	assert.Equal(t, "Jaukus butas.\nNetoli centro.", full.Description.OrElse(""))
}

func TestFetchDetails_UnexpectedLayout(t *testing.T) {
	adapter := newAdapter(t, sourcetest.Pages{detailURL: "<html><body><p>Skelbimas nebegalioja</p></body></html>"})

	_, err := adapter.FetchDetails(context.Background(), domain.ListingDraft{ExternalID: "1", Link: detailURL})
	assert.True(t, errors.Is(err, domain.ErrDetailsMissing))
}

func TestFetchDetails_Unavailable(t *testing.T) {
	_, err := newAdapter(t, nil).FetchDetails(context.Background(), domain.ListingDraft{ExternalID: "1", Link: detailURL})
	assert.ErrorIs(t, err, sourceutil.ErrDocumentUnavailable)
}

func TestParseFloor(t *testing.T) {
	floor, total := parseFloor("3/5")
	assert.Equal(t, 3, floor.OrElse(0))
	assert.Equal(t, 5, total.OrElse(0))

	floor, total = parseFloor("7")
	assert.Equal(t, 7, floor.OrElse(0))
	assert.False(t, total.IsPresent())

	floor, total = parseFloor("rūsys")
	assert.False(t, floor.IsPresent())
	assert.False(t, total.IsPresent())
}
