package kampasfetcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joklek/rentbot-sub000/internal/adapters/sourceutil"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/fieldparser"
)

func (a *KampasFetcherAdapter) FetchDetails(ctx context.Context, draft domain.ListingDraft) (domain.ListingDraft, error) {
	body, ok := a.fetcher.Fetch(ctx, sourceutil.ItemURL(a.endpoint.DetailURL, draft.ExternalID), jsonHeaders).Get()
	if !ok {
		return domain.ListingDraft{}, fmt.Errorf("kampas adapter: listing %s: %w", draft.ExternalID, sourceutil.ErrDocumentUnavailable)
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ListingDraft{}, fmt.Errorf("kampas adapter: decode listing %s: %w", draft.ExternalID, err)
	}
	if resp.ID.String() == "" {
		return domain.ListingDraft{}, fmt.Errorf("kampas adapter: listing %s: %w", draft.ExternalID, domain.ErrDetailsMissing)
	}

	district, street := fieldparser.SplitAddress(getText(resp.Title), 1, 2)

	full := draft
	full.District = district.Or(draft.District)
	full.Street = street.Or(draft.Street)
	full.HouseNumber = fieldparser.ParseText(getText(resp.HouseNum))
	full.Price = getDecimal(resp.ObjectPrice).Or(draft.Price)
	full.Area = getDecimal(resp.ObjectArea)
	full.Floor = getInt(resp.ObjectFloor)
	full.TotalFloors = getInt(resp.TotalFloors)
	full.Rooms = getInt(resp.TotalRooms)
	full.ConstructionYear = getInt(resp.YearBuilt)
	full.Description = fieldparser.ParseText(getText(resp.Description))
	full.Heating = fieldparser.ParseText(getText(resp.Heating))
	full.BuildingMaterial = fieldparser.ParseText(getText(resp.BuildingStructure))
	full.BuildingState = fieldparser.ParseText(getText(resp.Condition))
	full.Phone = getPhone(resp.Contact)
	full.IsPartial = false

	return full, nil
}
