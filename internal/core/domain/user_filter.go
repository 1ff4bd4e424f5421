package domain

import "github.com/shopspring/decimal"

// UserFilter - настройки пользователя. Хранятся и редактируются внешним сервисом (бот),
// здесь только читаются при выборке объявлений.
type UserFilter struct {
	UserID       int64
	PriceMin     Opt[decimal.Decimal]
	PriceMax     Opt[decimal.Decimal]
	RoomsMin     Opt[int]
	RoomsMax     Opt[int]
	FloorMin     Opt[int]
	YearMin      Opt[int]
	Districts    []string
	ShowNoFloor  bool
	FilterActive bool
}
