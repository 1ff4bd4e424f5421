// Package dedup группирует объявления с разных площадок, описывающие одну квартиру.
package dedup

import "github.com/joklek/rentbot-sub000/internal/core/domain"

// Group разбивает последовательность на группы за один проход.
// Каждый кандидат сравнивается только с представителем группы (первым элементом),
// поэтому сопоставление не транзитивно. Уже распределенные объявления не пересматриваются.
// Группы идут в порядке появления представителей, каждое объявление попадает ровно в одну группу.
func Group(listings []domain.CanonicalListing) []domain.DeduplicationGroup {
	assigned := make([]bool, len(listings))
	groups := make([]domain.DeduplicationGroup, 0, len(listings))

	for i, representative := range listings {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		group := domain.DeduplicationGroup{Listings: []domain.CanonicalListing{representative}}

		for j := i + 1; j < len(listings); j++ {
			if assigned[j] {
				continue
			}
			if IsDuplicate(representative, listings[j]) {
				assigned[j] = true
				group.Listings = append(group.Listings, listings[j])
			}
		}
		groups = append(groups, group)
	}

	return groups
}

// IsDuplicate - объявления с разных источников совпадают по структуре или по описанию
func IsDuplicate(a, b domain.CanonicalListing) bool {
	if a.Source == b.Source {
		return false
	}
	return structuralMatch(a, b) || contentMatch(a, b)
}

// structuralMatch - цена, комнаты, год, этаж, этажность и улица есть у обоих и равны
func structuralMatch(a, b domain.CanonicalListing) bool {
	return domain.DecimalEqual(a.Price, b.Price) &&
		domain.PresentAndEqual(a.Rooms, b.Rooms) &&
		domain.PresentAndEqual(a.ConstructionYear, b.ConstructionYear) &&
		domain.PresentAndEqual(a.Floor, b.Floor) &&
		domain.PresentAndEqual(a.TotalFloors, b.TotalFloors) &&
		domain.PresentAndEqual(a.Street, b.Street)
}

// contentMatch - равная цена и одинаковый хэш описания
func contentMatch(a, b domain.CanonicalListing) bool {
	return domain.DecimalEqual(a.Price, b.Price) &&
		domain.PresentAndEqual(a.DescriptionHash, b.DescriptionHash)
}
