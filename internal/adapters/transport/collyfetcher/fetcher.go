package collyfetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

// Config - лимиты родительского коллектора, они общие для всех клонов
type Config struct {
	// AllowedDomains - пусто означает "любой домен"
	AllowedDomains []string
	Parallelism    int
	RandomDelay    time.Duration
	RequestTimeout time.Duration
}

// Fetcher загружает статические HTML и JSON документы.
// Каждый запрос выполняется клоном родительского коллектора.
type Fetcher struct {
	collector *colly.Collector
}

var _ port.DocumentFetcherPort = (*Fetcher)(nil)

func NewFetcher(cfg Config) (*Fetcher, error) {
	options := []colly.CollectorOption{colly.AllowURLRevisit()}
	if len(cfg.AllowedDomains) > 0 {
		options = append(options, colly.AllowedDomains(cfg.AllowedDomains...))
	}
	c := colly.NewCollector(options...)

	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
		RandomDelay: cfg.RandomDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("colly fetcher: failed to set limit rule: %w", err)
	}

	if cfg.RequestTimeout > 0 {
		c.SetRequestTimeout(cfg.RequestTimeout)
	}

	return &Fetcher{collector: c}, nil
}

// Fetch возвращает тело ответа. Сетевая ошибка или не-2xx статус дают пустой результат.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string) domain.Opt[[]byte] {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "CollyFetcher",
		"url":       url,
	})

	collector := f.collector.Clone()
	collector.Context = ctx
	// обработчики не наследуются клоном, поэтому расширения вешаем на каждый запрос
	extensions.RandomUserAgent(collector)
	extensions.Referer(collector)

	var body []byte
	var fetchErr error

	collector.OnRequest(func(r *colly.Request) {
		logger.Debug("Fetching document", nil)
	})

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("colly fetcher: request to %s failed with status %d: %w", url, r.StatusCode, err)
	})

	hdr := http.Header{}
	for k, v := range headers {
		hdr.Set(k, v)
	}

	if err := collector.Request(http.MethodGet, url, nil, nil, hdr); err != nil {
		logger.Warn("Request was not sent", port.Fields{"error": err.Error()})
		return domain.None[[]byte]()
	}
	collector.Wait()

	if fetchErr != nil {
		logger.Warn("Document fetch failed", port.Fields{"error": fetchErr.Error()})
		return domain.None[[]byte]()
	}
	if body == nil {
		return domain.None[[]byte]()
	}
	return domain.Some(body)
}
