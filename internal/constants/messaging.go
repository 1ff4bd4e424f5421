package constants

// Обменники
const (
	ListingsExchange = "listings_exchange"
	CrawlExchange    = "crawl_exchange"
)

// Ключи маршрутизации
const (
	RoutingKeyListingCreated = "listing.created"
	RoutingKeyCrawlTasks     = "crawl.tasks"
	RoutingKeyCrawlCompleted = "crawl.completed"
)

// Очереди
const (
	QueueCrawlTasks = "crawl_tasks"
)

// Инфраструктура ретраев задач обхода
const (
	CrawlTasksRetryExchange = QueueCrawlTasks + "_retry_ex"
	CrawlTasksRetryQueue    = QueueCrawlTasks + "_retry_wait_30s"
	CrawlTasksRetryTTL      = 30000 // мс
	CrawlTasksMaxRetries    = 3

	FinalDLXExchange   = "rentbot_final_dlx"
	FinalDLQCrawlTasks = QueueCrawlTasks + "_failed"
	FinalDLQRoutingKey = QueueCrawlTasks + ".failed"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)
