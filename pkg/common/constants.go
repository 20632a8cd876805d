package common

const (
	RedisStreamTickerRefresh = "ticker.refresh"

	RedisStreamGroup    = "analyzer-group"
	RedisStreamConsumer = "analyzer-consumer"
)
