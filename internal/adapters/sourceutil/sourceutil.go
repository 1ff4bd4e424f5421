// Package sourceutil - общие помощники адаптеров площадок: разбор HTML, подписи полей, адреса страниц.
package sourceutil

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrDocumentUnavailable - транспорт вернул пустой результат
var ErrDocumentUnavailable = errors.New("document unavailable")

const (
	pagePlaceholder = "{page}"
	idPlaceholder   = "{id}"
)

var lowerLT = cases.Lower(language.Lithuanian)

// ParseHTML строит дерево документа
func ParseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// PageURL подставляет номер страницы в шаблон вида "...?page={page}"
func PageURL(template string, page int) string {
	return strings.ReplaceAll(template, pagePlaceholder, strconv.Itoa(page))
}

// ItemURL подставляет внешний ID в шаблон вида ".../api/{id}"
func ItemURL(template, id string) string {
	return strings.ReplaceAll(template, idPlaceholder, url.PathEscape(id))
}

// ResolveURL делает ссылку абсолютной относительно base
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil || ref.IsAbs() {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// NormalizeLabel приводит подпись поля к ключу: нижний регистр, без двоеточия и лишних пробелов
func NormalizeLabel(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	label = strings.TrimRight(label, ": ")
	return lowerLT.String(label)
}

// LabeledValues собирает пары "подпись -> значение" из строк таблицы характеристик.
// При повторе подписи сохраняется первое значение.
func LabeledValues(doc *goquery.Selection, rowSelector, labelSelector, valueSelector string) map[string]string {
	values := make(map[string]string)
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		label := NormalizeLabel(row.Find(labelSelector).First().Text())
		if label == "" {
			return
		}
		if _, exists := values[label]; exists {
			return
		}
		values[label] = strings.TrimSpace(row.Find(valueSelector).First().Text())
	})
	return values
}

// DefinitionValues - то же для списков <dl><dt>подпись</dt><dd>значение</dd></dl>
func DefinitionValues(dl *goquery.Selection) map[string]string {
	values := make(map[string]string)
	dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		label := NormalizeLabel(dt.Text())
		if label == "" {
			return
		}
		if _, exists := values[label]; exists {
			return
		}
		values[label] = strings.TrimSpace(dt.NextFiltered("dd").Text())
	})
	return values
}

// FirstValue возвращает значение первой найденной подписи из списка синонимов
func FirstValue(values map[string]string, labels ...string) string {
	for _, label := range labels {
		if v, ok := values[NormalizeLabel(label)]; ok && v != "" {
			return v
		}
	}
	return ""
}

// MultilineText - текст элемента, где <br> превращен в перевод строки
func MultilineText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "br":
				b.WriteString("\n")
			case "#text":
				b.WriteString(node.Text())
			default:
				walk(node)
			}
		})
	}
	walk(sel)

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Endpoint - адреса площадки из файла источников
type Endpoint struct {
	// SearchURL - шаблон страницы списка с плейсхолдером {page}
	SearchURL string
	// BaseURL - для относительных ссылок
	BaseURL string
	// DetailURL - шаблон документа объявления с плейсхолдером {id}, нужен только JSON-источникам
	DetailURL string
}
