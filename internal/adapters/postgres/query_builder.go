package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

type queryBuilder struct {
	conditions []string
	args       []any
	argID      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{argID: 1}
}

// addCondition - condition содержит два глагола: имя поля и номер параметра
func (qb *queryBuilder) addCondition(condition string, fieldName string, arg any) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argID))
	qb.args = append(qb.args, arg)
	qb.argID++
}

func (qb *queryBuilder) addRaw(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

func addRange[T any](qb *queryBuilder, fieldName string, min, max domain.Opt[T]) {
	if v, ok := min.Get(); ok {
		qb.addCondition("%s >= $%d", fieldName, v)
	}
	if v, ok := max.Get(); ok {
		qb.addCondition("%s <= $%d", fieldName, v)
	}
}

func (qb *queryBuilder) build() (string, []any) {
	if len(qb.conditions) == 0 {
		return "", qb.args
	}
	return "WHERE " + strings.Join(qb.conditions, " AND "), qb.args
}

// applyUserFilter строит условия выборки объявлений для пользователя.
// Неактивный или отсутствующий фильтр ограничивает только временем.
func applyUserFilter(filter domain.Opt[domain.UserFilter], since time.Time) (string, []any) {
	qb := newQueryBuilder()
	qb.addCondition("%s >= $%d", "l.created_at", since)

	f, ok := filter.Get()
	if !ok || !f.FilterActive {
		return qb.build()
	}

	addRange(qb, "l.price", f.PriceMin, f.PriceMax)
	addRange(qb, "l.rooms", f.RoomsMin, f.RoomsMax)
	addRange(qb, "l.construction_year", f.YearMin, domain.None[int]())

	if floorMin, ok := f.FloorMin.Get(); ok {
		if f.ShowNoFloor {
			qb.conditions = append(qb.conditions, fmt.Sprintf("(l.floor IS NULL OR l.floor >= $%d)", qb.argID))
			qb.args = append(qb.args, floorMin)
			qb.argID++
		} else {
			qb.addCondition("%s >= $%d", "l.floor", floorMin)
		}
	} else if !f.ShowNoFloor {
		qb.addRaw("l.floor IS NOT NULL")
	}

	if len(f.Districts) > 0 {
		qb.addCondition("%s = ANY($%d)", "l.district", f.Districts)
	}

	return qb.build()
}
