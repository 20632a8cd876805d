package consumer

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang-stock-selector/internal/analyzer/service"
	"golang-stock-selector/pkg/common"
	"golang-stock-selector/pkg/logger"
	"golang-stock-selector/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer manages the consumption of refresh tasks from the ticker
// refresh stream.
type RedisConsumer struct {
	redisClient  *redis.Client
	queueService service.RefreshQueueService
	logger       *logger.Logger
	taskTimeout  time.Duration
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	redisClient *redis.Client,
	queueService service.RefreshQueueService,
	log *logger.Logger,
	taskTimeout time.Duration,
) *RedisConsumer {
	return &RedisConsumer{
		redisClient:  redisClient,
		queueService: queueService,
		logger:       log,
		taskTimeout:  taskTimeout,
		stopChan:     make(chan struct{}),
	}
}

// Start creates the consumer group if needed and begins the processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	err := c.redisClient.XGroupCreateMkStream(ctx, common.RedisStreamTickerRefresh, common.RedisStreamGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		c.logger.Error("Failed to create consumer group", logger.ErrorField(err))
	}

	c.logger.Info("Redis consumer started", logger.StringField("stream", common.RedisStreamTickerRefresh))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, c.taskTimeout)
				c.queueService.ProcessTask(ctxTimeout)
				cancel()
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
