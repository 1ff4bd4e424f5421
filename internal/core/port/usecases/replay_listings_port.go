package usecases_port

import (
	"context"
	"time"

	"github.com/joklek/rentbot-sub000/internal/core/domain"
)

type ReplayListingsPort interface {
	Execute(ctx context.Context, userID int64, since time.Time) ([]domain.DeduplicationGroup, error)
}
