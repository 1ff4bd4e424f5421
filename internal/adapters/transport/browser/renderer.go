package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type Config struct {
	// ExecPath - путь к chrome/chromium, пусто - поиск по умолчанию
	ExecPath      string
	Headless      bool
	RatePerMinute int
	PageTimeout   time.Duration
}

// Renderer открывает каждый адрес в отдельной вкладке общего браузера.
// Вкладка закрывается на любом пути выхода.
type Renderer struct {
	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	limiter     *rate.Limiter
	pageTimeout time.Duration
}

var _ port.BrowserRendererPort = (*Renderer)(nil)

func NewRenderer(cfg Config) *Renderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(defaultUserAgent),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 45 * time.Second
	}

	return &Renderer{
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		limiter:       newLimiter(cfg.RatePerMinute),
		pageTimeout:   cfg.PageTimeout,
	}
}

// newLimiter - не больше perMinute открытий вкладок в минуту, 0 - без ограничения
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Render возвращает outerHTML документа. Ошибка навигации или таймаут дают пустой результат.
func (r *Renderer) Render(ctx context.Context, url string, waitSelector string) domain.Opt[string] {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "BrowserRenderer",
		"url":       url,
	})

	if err := r.limiter.Wait(ctx); err != nil {
		logger.Warn("Render cancelled while waiting for rate limiter", port.Fields{"error": err.Error()})
		return domain.None[string]()
	}

	html, err := r.renderInTab(ctx, url, waitSelector)
	if err != nil {
		logger.Warn("Page render failed", port.Fields{"error": err.Error()})
		return domain.None[string]()
	}
	logger.Debug("Page rendered", port.Fields{"bytes": len(html)})
	return domain.Some(html)
}

func (r *Renderer) renderInTab(ctx context.Context, url, waitSelector string) (string, error) {
	tabCtx, closeTab := chromedp.NewContext(r.browserCtx)
	defer closeTab()

	// отмена вызывающего контекста закрывает вкладку
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.pageTimeout)
	defer cancelTimeout()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitReady(waitSelector, chromedp.ByQuery))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", fmt.Errorf("browser renderer: %s: %w", url, err)
	}
	return html, nil
}

// Close завершает браузер
func (r *Renderer) Close() {
	r.cancelBrowser()
	r.cancelAlloc()
}
