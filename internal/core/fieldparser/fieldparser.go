// Package fieldparser разбирает текстовые фрагменты со страниц объявлений.
// Функции никогда не возвращают ошибку: неразобранное значение - это отсутствующее значение.
package fieldparser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

var (
	// пробелы, которые сайты ставят разделителем тысяч
	thousandsSeparators = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\u2009", "", "\t", "")

	plainDecimal = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
)

// ParseInt разбирает целое, допускает пробелы между разрядами ("1 200")
func ParseInt(text string) domain.Opt[int] {
	cleaned := thousandsSeparators.Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return domain.None[int]()
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return domain.None[int]()
	}
	return domain.Some(value)
}

// ParseDecimal разбирает десятичное число с точкой или запятой.
// Если встречаются оба знака, первый из них считается разделителем тысяч ("1.250,50", "1,250.50").
func ParseDecimal(text string) domain.Opt[decimal.Decimal] {
	cleaned := thousandsSeparators.Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return domain.None[decimal.Decimal]()
	}

	dot, comma := strings.LastIndex(cleaned, "."), strings.LastIndex(cleaned, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case comma >= 0:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	if !plainDecimal.MatchString(cleaned) {
		return domain.None[decimal.Decimal]()
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return domain.None[decimal.Decimal]()
	}
	return domain.Some(NormalizePrice(value))
}

// StripNonNumeric оставляет цифры и разделители, отбрасывая валюту и единицы измерения:
// "1 200 €/mėn." -> "1200", "54,5 m²" -> "54,5"
func StripNonNumeric(text string) string {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".,")
}

// ParseText - обрезанный непустой текст или отсутствие
func ParseText(text string) domain.Opt[string] {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.None[string]()
	}
	return domain.Some(trimmed)
}

// SplitAddress разбивает адрес по запятым и берет сегменты с заданными индексами.
// Отсутствующий или пустой сегмент дает отсутствующее поле.
func SplitAddress(text string, districtIndex, streetIndex int) (district, street domain.Opt[string]) {
	if strings.TrimSpace(text) == "" {
		return domain.None[string](), domain.None[string]()
	}
	segments := strings.Split(text, ",")
	segment := func(i int) domain.Opt[string] {
		if i < 0 || i >= len(segments) {
			return domain.None[string]()
		}
		return ParseText(segments[i])
	}
	return segment(districtIndex), segment(streetIndex)
}

// NormalizePrice убирает незначащие нули дробной части: 150000.00 -> 150000.
// Идемпотентна.
func NormalizePrice(price decimal.Decimal) decimal.Decimal {
	return decimal.RequireFromString(price.String())
}
