package usecase

import (
	"fmt"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
	usecases_port "github.com/joklek/rentbot-sub000/internal/core/port/usecases"
)

// CrawlerRegistry - контроллеры обхода по имени источника.
// Заполняется при старте и дальше только читается.
type CrawlerRegistry struct {
	crawlers map[domain.Source]usecases_port.CrawlSourcePort
	order    []domain.Source
}

func NewCrawlerRegistry(crawlers ...usecases_port.CrawlSourcePort) (*CrawlerRegistry, error) {
	r := &CrawlerRegistry{crawlers: make(map[domain.Source]usecases_port.CrawlSourcePort, len(crawlers))}
	for _, c := range crawlers {
		if _, dup := r.crawlers[c.Source()]; dup {
			return nil, fmt.Errorf("crawler registry: source %q registered twice", c.Source())
		}
		r.crawlers[c.Source()] = c
		r.order = append(r.order, c.Source())
	}
	return r, nil
}

func (r *CrawlerRegistry) Get(source domain.Source) (usecases_port.CrawlSourcePort, bool) {
	c, ok := r.crawlers[source]
	return c, ok
}

// Sources возвращает зарегистрированные источники в порядке регистрации
func (r *CrawlerRegistry) Sources() []domain.Source {
	out := make([]domain.Source, len(r.order))
	copy(out, r.order)
	return out
}
