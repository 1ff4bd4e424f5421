package domain

import (
	"strconv"
	"strings"
)

// Source - закрытый набор площадок, с которых собираются объявления
type Source string

const (
	SourceAruodas   Source = "aruodas"
	SourceDomoplius Source = "domoplius"
	SourceSkelbiu   Source = "skelbiu"
	SourceKampas    Source = "kampas"
)

// AllSources - порядок важен: в нем источники запускаются и отображаются
var AllSources = []Source{SourceAruodas, SourceDomoplius, SourceSkelbiu, SourceKampas}

func (s Source) String() string {
	return string(s)
}

// ParseSource проверяет, что строка - известный источник
func ParseSource(raw string) (Source, error) {
	candidate := Source(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range AllSources {
		if s == candidate {
			return s, nil
		}
	}
	return "", ErrUnknownSource
}

// IDOrder - как сравнивать нативные идентификаторы источника
type IDOrder int

const (
	IDOrderNumeric IDOrder = iota
	IDOrderLexicographic
	// IDOrderSegmented - ID из сегментов через дефис ("1-3456789"),
	// числовые сегменты сравниваются как числа
	IDOrderSegmented
)

// Compare возвращает -1, 0, 1. Для числового порядка нечисловые ID
// сравниваются как строки, чтобы сравнение оставалось тотальным.
func (o IDOrder) Compare(a, b string) int {
	switch o {
	case IDOrderNumeric:
		if c, ok := compareNumbers(a, b); ok {
			return c
		}
	case IDOrderSegmented:
		return compareSegments(a, b)
	}
	return strings.Compare(a, b)
}

func compareNumbers(a, b string) (int, bool) {
	ai, aErr := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	bi, bErr := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
	if aErr != nil || bErr != nil {
		return 0, false
	}
	switch {
	case ai < bi:
		return -1, true
	case ai > bi:
		return 1, true
	default:
		return 0, true
	}
}

// compareSegments идёт по сегментам слева направо; более короткий
// ID с тем же префиксом меньше
func compareSegments(a, b string) int {
	as := strings.Split(strings.TrimSpace(a), "-")
	bs := strings.Split(strings.TrimSpace(b), "-")
	for i := 0; i < len(as) && i < len(bs); i++ {
		c, ok := compareNumbers(as[i], bs[i])
		if !ok {
			c = strings.Compare(as[i], bs[i])
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

func (o IDOrder) String() string {
	switch o {
	case IDOrderLexicographic:
		return "lexicographic"
	case IDOrderSegmented:
		return "segmented"
	default:
		return "numeric"
	}
}
