package service

import (
	"InvestxApi/internal/accrual"
	"InvestxApi/internal/middleware"
	"InvestxApi/pkg/logger"
	"InvestxApi/pkg/redis"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const yieldEventTTL = 24 * time.Hour

// upgrader is used to upgrade HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TransactionFeedService pushes freshly credited yields to connected
// clients. It doubles as the accrual engine's event sink.
type TransactionFeedService struct {
	redisService *redis.RedisService
}

func NewTransactionFeedService(redisService *redis.RedisService) *TransactionFeedService {
	return &TransactionFeedService{
		redisService: redisService,
	}
}

// PublishYield stores a yield event in Redis for the live feed. Feed
// failures never affect the ledger, they are only logged.
func (f *TransactionFeedService) PublishYield(ctx context.Context, event accrual.YieldEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("%v", err)
		return
	}

	key := fmt.Sprintf("ledger:event:%d", event.Timestamp)
	if err := f.redisService.SetKey(ctx, key, data, yieldEventTTL); err != nil {
		logger.Error("%v", err)
	}
}

// LiveTransactionsWebsocketHandler streams the caller's new yield events.
func (f *TransactionFeedService) LiveTransactionsWebsocketHandler(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("%v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var lastEventTimestamp int64

	for range ticker.C { // Continuously fetch and send the latest events
		events, err := f.fetchRecentEvents(c.Request.Context(), userID, 10)
		if err != nil {
			logger.Error("%v", err)
			return
		}

		for _, event := range events {
			if event.Timestamp <= lastEventTimestamp {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				logger.Error("%v", err)
				return
			}
			lastEventTimestamp = event.Timestamp
		}
	}
}

// fetchRecentEvents retrieves the user's most recent yield events from Redis.
func (f *TransactionFeedService) fetchRecentEvents(ctx context.Context, userID int64, limit int) ([]accrual.YieldEvent, error) {
	keys, err := f.fetchSortedKeys(ctx)
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	var events []accrual.YieldEvent
	for _, key := range keys {
		data, err := f.redisService.GetKey(ctx, key)
		if err != nil {
			return nil, logger.WrapError(err, "")
		}

		var event accrual.YieldEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, logger.WrapError(err, "")
		}

		if event.UserID != userID {
			continue
		}

		events = append(events, event)
		if len(events) > limit {
			events = events[1:]
		}
	}

	return events, nil
}

// fetchSortedKeys retrieves and sorts all yield event keys from Redis.
func (f *TransactionFeedService) fetchSortedKeys(ctx context.Context) ([]string, error) {
	keys, err := f.redisService.Client().Keys(ctx, "ledger:event:*").Result()
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	sort.Strings(keys)
	return keys, nil
}
