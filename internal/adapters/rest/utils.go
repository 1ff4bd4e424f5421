package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/joklek/rentbot-sub000/internal/contextkeys"
	"github.com/joklek/rentbot-sub000/internal/core/port"
)

const (
	defaultDays = 1
	maxDays     = 90
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, nil, statusCode, map[string]string{"error": message})
}

// WriteJSON пишет ответ; ошибка записи только логируется, заголовки уже отправлены
func WriteJSON(w http.ResponseWriter, r *http.Request, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil && r != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Failed to send response", err, port.Fields{"status_code": statusCode})
	}
}

// GetSinceParam: since=RFC3339 или days=N, одновременно нельзя. Без параметров - сутки назад.
func GetSinceParam(r *http.Request, now time.Time) (time.Time, error) {
	sinceStr := r.URL.Query().Get("since")
	daysStr := r.URL.Query().Get("days")

	switch {
	case sinceStr != "" && daysStr != "":
		return time.Time{}, fmt.Errorf("use either since or days, not both")
	case sinceStr != "":
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid since value, RFC3339 expected")
		}
		return since, nil
	case daysStr != "":
		days, err := strconv.Atoi(daysStr)
		if err != nil || days <= 0 || days > maxDays {
			return time.Time{}, fmt.Errorf("days must be between 1 and %d", maxDays)
		}
		return now.AddDate(0, 0, -days), nil
	default:
		return now.AddDate(0, 0, -defaultDays), nil
	}
}
