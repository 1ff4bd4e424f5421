package domain

import "github.com/google/uuid"

// CrawlStatus - чем закончился обход одного источника
type CrawlStatus string

const (
	CrawlStatusOK          CrawlStatus = "ok"
	CrawlStatusEmpty       CrawlStatus = "empty"              // первая страница пустая - источник пуст или заблокирован
	CrawlStatusUnavailable CrawlStatus = "unavailable"        // первая страница не загрузилась
	CrawlStatusAnomaly     CrawlStatus = "pagination_anomaly" // страница повторилась или внезапно опустела
	CrawlStatusInterrupted CrawlStatus = "interrupted"        // вышло время, оставшиеся страницы брошены
	CrawlStatusBusy        CrawlStatus = "busy"               // источник уже обходится другим запуском
)

// IsWarning - статус не фатален, но отличается от "чисто пусто"
func (s CrawlStatus) IsWarning() bool {
	return s == CrawlStatusAnomaly || s == CrawlStatusInterrupted || s == CrawlStatusUnavailable
}

// CrawlResult - результат контроллера обхода
type CrawlResult struct {
	Source       Source
	Drafts       []ListingDraft
	PagesFetched int
	Status       CrawlStatus
	Warning      string

	Enriched       int // сколько черновиков дополнено со страниц объявлений
	DetailFailures int // сколько отброшено из-за ошибки загрузки деталей
}

// CrawlTask - запрос на обход, приходит от планировщика
type CrawlTask struct {
	TaskID   uuid.UUID
	Sources  []Source
	FullScan bool
}

// CrawlStats - итог ingest-прохода по одному источнику
type CrawlStats struct {
	Source       Source      `json:"source"`
	Status       CrawlStatus `json:"status"`
	Warning      string      `json:"warning,omitempty"`
	PagesFetched int         `json:"pages_fetched"`
	DraftsFound  int         `json:"drafts_found"`
	Enriched     int         `json:"enriched"`
	Persisted    int         `json:"persisted"`
	AlreadyKnown int         `json:"already_known"`
	Failed       int         `json:"failed"`
}
