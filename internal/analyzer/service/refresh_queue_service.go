package service

import (
	"context"
	"encoding/json"
	"time"

	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/internal/analyzer/repository"
	"golang-stock-selector/pkg/common"
	"golang-stock-selector/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RefreshQueueService publishes and consumes batch refresh tasks on the
// ticker refresh stream.
type RefreshQueueService interface {
	Enqueue(ctx context.Context, symbol string) error
	// EnqueueAll queues a refresh for every tracked ticker and returns how
	// many were queued.
	EnqueueAll(ctx context.Context) (int, error)
	ProcessTask(ctx context.Context)
}

type refreshQueueService struct {
	log         *logger.Logger
	redisClient *redis.Client
	tickersRepo repository.TickersRepository
	analyzer    AnalyzerService
}

func NewRefreshQueueService(
	log *logger.Logger,
	redisClient *redis.Client,
	tickersRepo repository.TickersRepository,
	analyzer AnalyzerService,
) RefreshQueueService {
	return &refreshQueueService{
		log:         log,
		redisClient: redisClient,
		tickersRepo: tickersRepo,
		analyzer:    analyzer,
	}
}

func (s *refreshQueueService) Enqueue(ctx context.Context, symbol string) error {
	payload, err := json.Marshal(dto.StreamDataTickerRefresh{Symbol: symbol})
	if err != nil {
		return err
	}
	return s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamTickerRefresh,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
}

func (s *refreshQueueService) EnqueueAll(ctx context.Context) (int, error) {
	tickers, err := s.tickersRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, ticker := range tickers {
		if err := s.Enqueue(ctx, ticker.Symbol); err != nil {
			s.log.Error("Failed to enqueue ticker refresh",
				logger.StringField("symbol", ticker.Symbol), logger.ErrorField(err))
			continue
		}
		queued++
	}
	s.log.Info("Queued ticker refreshes", logger.IntField("count", queued))
	return queued, nil
}

// ProcessTask reads one refresh task from the stream and runs the full
// pipeline for it, draining the progress channel.
func (s *refreshQueueService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamTickerRefresh, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	payload, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message",
			logger.StringField("message_id", message.ID))
		s.ack(ctx, message.ID)
		return
	}

	var task dto.StreamDataTickerRefresh
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		s.log.Error("Failed to unmarshal task data", logger.ErrorField(err),
			logger.StringField("message_id", message.ID))
		s.ack(ctx, message.ID)
		return
	}

	s.log.Info("Processing ticker refresh", logger.StringField("symbol", task.Symbol))
	for event := range s.analyzer.Analyze(ctx, task.Symbol) {
		s.log.Debug("Refresh progress",
			logger.StringField("symbol", event.Symbol),
			logger.StringField("step", event.Step),
		)
	}
	s.ack(ctx, message.ID)
}

func (s *refreshQueueService) ack(ctx context.Context, messageID string) {
	if err := s.redisClient.XAck(ctx, common.RedisStreamTickerRefresh, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.log.Error("Failed to ack stream message", logger.ErrorField(err),
			logger.StringField("message_id", messageID))
	}
}
