package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/domain"
	"github.com/joklek/rentbot-sub000/internal/core/port"
	usecases_port "github.com/joklek/rentbot-sub000/internal/core/port/usecases"
)

type ListingsHandler struct {
	replayUC usecases_port.ReplayListingsPort
	now      func() time.Time
}

func NewListingsHandler(replayUC usecases_port.ReplayListingsPort) *ListingsHandler {
	return &ListingsHandler{replayUC: replayUC, now: time.Now}
}

// GetUserListings - объявления за период по фильтрам пользователя, сгруппированные по квартирам
func (h *ListingsHandler) GetUserListings(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "GetUserListings: invalid user id")
		return
	}

	since, err := GetSinceParam(r, h.now())
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("GetUserListings: %v", err))
		return
	}

	groups, err := h.replayUC.Execute(r.Context(), userID, since)
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Replay failed", err, port.Fields{"user_id": userID})
		WriteJSONError(w, http.StatusInternalServerError, "GetUserListings: failed to load listings")
		return
	}

	WriteJSON(w, r, http.StatusOK, UserListingsResponse{
		UserID: userID,
		Since:  since.UTC(),
		Groups: toGroupResponses(groups),
	})
}

type CrawlHandler struct {
	orchestrateUC usecases_port.OrchestrateCrawlPort
	sources       []domain.Source
}

// NewCrawlHandler: sources - включенные в конфигурации источники
func NewCrawlHandler(orchestrateUC usecases_port.OrchestrateCrawlPort, sources []domain.Source) *CrawlHandler {
	return &CrawlHandler{orchestrateUC: orchestrateUC, sources: sources}
}

func (h *CrawlHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	names := make([]string, len(h.sources))
	for i, s := range h.sources {
		names[i] = s.String()
	}
	WriteJSON(w, r, http.StatusOK, SourcesResponse{Sources: names})
}

// StartCrawl выполняет обход синхронно и возвращает итоги по источникам.
// Пустое тело означает инкрементальный обход всех включенных источников.
func (h *CrawlHandler) StartCrawl(w http.ResponseWriter, r *http.Request) {
	var req StartCrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteJSONError(w, http.StatusBadRequest, "StartCrawl: invalid request body")
		return
	}

	task := domain.CrawlTask{TaskID: uuid.New(), FullScan: req.FullScan}
	for _, raw := range req.Sources {
		src, err := domain.ParseSource(raw)
		if err != nil || !slices.Contains(h.sources, src) {
			WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("StartCrawl: source '%s' is not enabled", raw))
			return
		}
		task.Sources = append(task.Sources, src)
	}

	stats, err := h.orchestrateUC.Execute(r.Context(), task)
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Crawl failed", err, port.Fields{"task_id": task.TaskID.String()})
		WriteJSONError(w, http.StatusInternalServerError, "StartCrawl: crawl failed")
		return
	}

	WriteJSON(w, r, http.StatusOK, StartCrawlResponse{TaskID: task.TaskID.String(), Results: stats})
}
