package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mizuleaf/callscope/internal/domain"
)

// SignalService publishes recording status transitions on redis pub/sub so
// dashboards can refresh without polling. Delivery is fire-and-forget.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) PublishStatusChange(ctx context.Context, recordingID string, from, to domain.RecordingStatus) {
	if s.rdb == nil {
		return
	}

	event := domain.StatusEvent{
		RecordingID: recordingID,
		From:        from,
		To:          to,
		Timestamp:   time.Now(),
	}

	jsonstr, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal status event", "error", err)
		return
	}

	err = s.rdb.Publish(ctx, domain.RecordingStatusChannel, jsonstr).Err()
	if err != nil {
		slog.Warn("failed to publish status event", "recordingId", recordingID, "error", err)
	}
}
