package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis abre e valida o cliente Redis usado pelo índice de dedup.
// Falha aqui não é fatal: o classificador opera fail-open sem Redis.
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
