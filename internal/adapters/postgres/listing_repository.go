package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// numeric читаем как текст, чтобы не терять точность
const listingColumns = `l.id, l.external_id, l.source, l.link, l.created_at,
	l.description, l.description_hash, l.street, l.district, l.house_number, l.heating,
	l.floor, l.total_floors, l.area::text, l.price::text, l.rooms, l.construction_year,
	l.building_material, l.building_state, l.phone`

// PostgresListingRepository реализует ListingRepositoryPort для PostgreSQL
type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

var _ port.ListingRepositoryPort = (*PostgresListingRepository)(nil)

func NewPostgresListingRepository(pool *pgxpool.Pool) (*PostgresListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres listing repository: pool cannot be nil")
	}
	return &PostgresListingRepository{pool: pool}, nil
}

func (r *PostgresListingRepository) ExistsByExternalIDAndSource(ctx context.Context, externalID string, source domain.Source) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM listings WHERE external_id = $1 AND source = $2)`
	if err := r.pool.QueryRow(ctx, query, externalID, source.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("PostgresListingRepository: exists check for %s/%s: %w", source, externalID, err)
	}
	return exists, nil
}

// FindOldestBySource - объявление с наименьшим created_at, его ID служит границей пагинации
func (r *PostgresListingRepository) FindOldestBySource(ctx context.Context, source domain.Source) (domain.Opt[domain.CanonicalListing], error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.source = $1 ORDER BY l.created_at ASC, l.id ASC LIMIT 1`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, source.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.None[domain.CanonicalListing](), nil
		}
		return domain.None[domain.CanonicalListing](), fmt.Errorf("PostgresListingRepository: oldest listing for %s: %w", source, err)
	}
	return domain.Some(listing), nil
}

// Save вставляет объявление. Существующая пара (external_id, source) не перезаписывается,
// в этом случае возвращается domain.ErrListingExists.
func (r *PostgresListingRepository) Save(ctx context.Context, listing domain.CanonicalListing) (domain.CanonicalListing, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresListingRepository",
		"method":      "Save",
		"source":      listing.Source.String(),
		"external_id": listing.ExternalID,
	})

	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}

	query := `
		INSERT INTO listings (id, external_id, source, link, created_at,
			description, description_hash, street, district, house_number, heating,
			floor, total_floors, area, price, rooms, construction_year,
			building_material, building_state, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (external_id, source) DO NOTHING
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		listing.ID, listing.ExternalID, listing.Source.String(), listing.Link, listing.CreatedAt,
		listing.Description.Ptr(), listing.DescriptionHash.Ptr(), listing.Street.Ptr(), listing.District.Ptr(),
		listing.HouseNumber.Ptr(), listing.Heating.Ptr(),
		listing.Floor.Ptr(), listing.TotalFloors.Ptr(), decimalArg(listing.Area), decimalArg(listing.Price),
		listing.Rooms.Ptr(), listing.ConstructionYear.Ptr(),
		listing.BuildingMaterial.Ptr(), listing.BuildingState.Ptr(), listing.Phone.Ptr(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Listing already stored, insert skipped", nil)
			return domain.CanonicalListing{}, domain.ErrListingExists
		}
		repoLogger.Error("Failed to insert listing", err, nil)
		return domain.CanonicalListing{}, fmt.Errorf("PostgresListingRepository: insert %s/%s: %w", listing.Source, listing.ExternalID, err)
	}

	listing.ID = id
	return listing, nil
}

// FindListingsForUserSince - объявления не старше since, прошедшие фильтр пользователя, от старых к новым
func (r *PostgresListingRepository) FindListingsForUserSince(ctx context.Context, userID int64, since time.Time) ([]domain.CanonicalListing, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingRepository",
		"method":    "FindListingsForUserSince",
		"user_id":   userID,
	})

	filter, err := r.findUserFilter(ctx, userID)
	if err != nil {
		return nil, err
	}

	whereClause, args := applyUserFilter(filter, since)
	query := fmt.Sprintf(`SELECT %s FROM listings l %s ORDER BY l.created_at ASC, l.id ASC`, listingColumns, whereClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query listings", err, port.Fields{"query": query})
		return nil, fmt.Errorf("PostgresListingRepository: query listings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var listings []domain.CanonicalListing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("PostgresListingRepository: scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PostgresListingRepository: error during listings iteration: %w", err)
	}

	repoLogger.Debug("Listings loaded", port.Fields{"count": len(listings), "filter_present": filter.IsPresent()})
	return listings, nil
}

func (r *PostgresListingRepository) findUserFilter(ctx context.Context, userID int64) (domain.Opt[domain.UserFilter], error) {
	query := `SELECT user_id, price_min::text, price_max::text, rooms_min, rooms_max, floor_min, year_min,
		districts, show_no_floor, filter_active FROM user_filters WHERE user_id = $1`

	var (
		f                  domain.UserFilter
		priceMin, priceMax *string
		roomsMin, roomsMax *int
		floorMin, yearMin  *int
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&f.UserID, &priceMin, &priceMax, &roomsMin, &roomsMax, &floorMin, &yearMin,
		&f.Districts, &f.ShowNoFloor, &f.FilterActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.None[domain.UserFilter](), nil
		}
		return domain.None[domain.UserFilter](), fmt.Errorf("PostgresListingRepository: user filter %d: %w", userID, err)
	}

	if f.PriceMin, err = parseDecimal(priceMin); err != nil {
		return domain.None[domain.UserFilter](), err
	}
	if f.PriceMax, err = parseDecimal(priceMax); err != nil {
		return domain.None[domain.UserFilter](), err
	}
	f.RoomsMin = domain.FromPtr(roomsMin)
	f.RoomsMax = domain.FromPtr(roomsMax)
	f.FloorMin = domain.FromPtr(floorMin)
	f.YearMin = domain.FromPtr(yearMin)
	return domain.Some(f), nil
}

func scanListing(row pgx.Row) (domain.CanonicalListing, error) {
	var (
		l                                            domain.CanonicalListing
		source                                       string
		description, descriptionHash, street         *string
		district, houseNumber, heating               *string
		floor, totalFloors, rooms, constructionYear  *int
		area, price                                  *string
		buildingMaterial, buildingState, phoneNumber *string
	)
	err := row.Scan(
		&l.ID, &l.ExternalID, &source, &l.Link, &l.CreatedAt,
		&description, &descriptionHash, &street, &district, &houseNumber, &heating,
		&floor, &totalFloors, &area, &price, &rooms, &constructionYear,
		&buildingMaterial, &buildingState, &phoneNumber,
	)
	if err != nil {
		return domain.CanonicalListing{}, err
	}

	l.Source = domain.Source(source)
	l.Description = domain.FromPtr(description)
	l.DescriptionHash = domain.FromPtr(descriptionHash)
	l.Street = domain.FromPtr(street)
	l.District = domain.FromPtr(district)
	l.HouseNumber = domain.FromPtr(houseNumber)
	l.Heating = domain.FromPtr(heating)
	l.Floor = domain.FromPtr(floor)
	l.TotalFloors = domain.FromPtr(totalFloors)
	l.Rooms = domain.FromPtr(rooms)
	l.ConstructionYear = domain.FromPtr(constructionYear)
	l.BuildingMaterial = domain.FromPtr(buildingMaterial)
	l.BuildingState = domain.FromPtr(buildingState)
	l.Phone = domain.FromPtr(phoneNumber)
	l.CreatedAt = l.CreatedAt.UTC()

	if l.Area, err = parseDecimal(area); err != nil {
		return domain.CanonicalListing{}, err
	}
	if l.Price, err = parseDecimal(price); err != nil {
		return domain.CanonicalListing{}, err
	}
	return l, nil
}

// decimalArg - NULL для отсутствующего значения, иначе текстовое представление для numeric
func decimalArg(value domain.Opt[decimal.Decimal]) *string {
	v, ok := value.Get()
	if !ok {
		return nil
	}
	s := v.String()
	return &s
}

// parseDecimal - обратное к decimalArg; незначащие нули ("450.00") отбрасываются
func parseDecimal(text *string) (domain.Opt[decimal.Decimal], error) {
	if text == nil {
		return domain.None[decimal.Decimal](), nil
	}
	v, err := decimal.NewFromString(*text)
	if err != nil {
		return domain.None[decimal.Decimal](), fmt.Errorf("PostgresListingRepository: bad numeric %q: %w", *text, err)
	}
	return domain.Some(decimal.RequireFromString(v.String())), nil
}
