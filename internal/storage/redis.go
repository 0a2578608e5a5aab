package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rdb 进程级 Redis 连接：账本余额和匹配占位都落在这里
var Rdb *redis.Client

// Ctx 存储层后台操作的根上下文
var Ctx = context.Background()

func InitRedis(addr, password string, db int) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(Ctx, 5*time.Second)
	defer cancel()
	return Rdb.Ping(ctx).Err()
}
