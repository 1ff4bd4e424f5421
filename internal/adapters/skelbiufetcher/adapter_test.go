package skelbiufetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil/sourcetest"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

const detailURL = "https://www.skelbiu.lt/skelbimai/2-kambariu-butas-nuomai-zirmunuose-60123456.html"

func newAdapter(t *testing.T, pages sourcetest.Pages) *SkelbiuFetcherAdapter {
	t.Helper()
	adapter, err := NewSkelbiuFetcherAdapter(&sourcetest.Fetcher{Pages: pages}, sourceutil.Endpoint{
		SearchURL: "https://www.skelbiu.lt/skelbimai/{page}?category_id=322&cities=465",
		BaseURL:   "https://www.skelbiu.lt",
	})
	require.NoError(t, err)
	return adapter
}

func TestFetchIndexPage(t *testing.T) {
	adapter := newAdapter(t, sourcetest.Pages{
		"https://www.skelbiu.lt/skelbimai/1?category_id=322&cities=465": sourcetest.LoadFile(t, "testdata/index.html"),
	})

	drafts, err := adapter.FetchIndexPage(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "60123456", drafts[0].ExternalID)
	assert.Equal(t, detailURL, drafts[0].Link)
	assert.Equal(t, "520", drafts[0].Price.Ptr().String())
	assert.Equal(t, "1100", drafts[1].Price.Ptr().String())
	assert.True(t, drafts[1].IsPartial)
}

func TestFetchIndexPage_EmptyPage(t *testing.T) {
	adapter := newAdapter(t, sourcetest.Pages{
		"https://www.skelbiu.lt/skelbimai/7?category_id=322&cities=465": "<html><body><p>Nieko nerasta</p></body></html>",
	})

	drafts, err := adapter.FetchIndexPage(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestFetchDetails(t *testing.T) {
	adapter := newAdapter(t, sourcetest.Pages{detailURL: sourcetest.LoadFile(t, "testdata/details.html")})

	full, err := adapter.FetchDetails(context.Background(), domain.ListingDraft{ExternalID: "60123456", Link: detailURL, IsPartial: true})

	require.NoError(t, err)
	assert.False(t, full.IsPartial)
	assert.Equal(t, "Kalvarijų g.", full.Street.OrElse(""))
	assert.Equal(t, "Žirmūnai", full.District.OrElse(""))
	assert.Equal(t, "120", full.HouseNumber.OrElse(""))
	assert.Equal(t, "48", full.Area.Ptr().String())
	assert.Equal(t, 2, full.Rooms.OrElse(0))
	assert.Equal(t, 4, full.Floor.OrElse(0))
	assert.Equal(t, 9, full.TotalFloors.OrElse(0))
	assert.Equal(t, 1978, full.ConstructionYear.OrElse(0))
	assert.Equal(t, "Centrinis", full.Heating.OrElse(""))
	assert.Equal(t, "Blokinis", full.BuildingMaterial.OrElse(""))
	assert.Equal(t, "Dalinė apdaila", full.BuildingState.OrElse(""))
	assert.Equal(t, "520", full.Price.Ptr().String())
	assert.Equal(t, "+37061234567", full.Phone.OrElse(""))
	assert.Equal(t, "Nuomojamas šviesus butas.\nGyvūnai negalimi.", full.Description.OrElse(""))
}

func TestFetchDetails_MissingBlock(t *testing.T) {
	adapter := newAdapter(t, sourcetest.Pages{detailURL: "<html><body></body></html>"})

	_, err := adapter.FetchDetails(context.Background(), domain.ListingDraft{ExternalID: "1", Link: detailURL})
	assert.ErrorIs(t, err, domain.ErrDetailsMissing)
}

func TestFetchDetails_KeepsIndexAddressWhenDetailsLackIt(t *testing.T) {
	page := `<html><body>
		<div class="details-row"><span class="detail-label">Kamb. sk.:</span><span class="detail-value">2</span></div>
	</body></html>`
	adapter := newAdapter(t, sourcetest.Pages{detailURL: page})

	full, err := adapter.FetchDetails(context.Background(), domain.ListingDraft{
		ExternalID: "60123456",
		Link:       detailURL,
		Street:     domain.Some("Žirmūnų g."),
		District:   domain.Some("Žirmūnai"),
		IsPartial:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Žirmūnų g.", full.Street.OrElse(""))
	assert.Equal(t, "Žirmūnai", full.District.OrElse(""))
	assert.Equal(t, 2, full.Rooms.OrElse(0))
}
