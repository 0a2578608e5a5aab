package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// key 约定：bj:money:{id} -> int64
func moneyKey(id string) string {
	return fmt.Sprintf("bj:money:%s", id)
}

// Lua 脚本：两个 INCRBY 在一次调用里完成，杜绝两笔结算交错丢更新
// KEYS[1] = from, KEYS[2] = to, ARGV[1] = amount
const transferScript = `
    local fromBal = redis.call("INCRBY", KEYS[1], -ARGV[1])
    local toBal = redis.call("INCRBY", KEYS[2], ARGV[1])
    return {fromBal, toBal}
`

func (r *redisRepo) GetBalance(ctx context.Context, id string) (int64, bool, error) {
	val, err := r.rdb.Get(ctx, moneyKey(id)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt balance for %s: %w", id, err)
	}
	return n, true, nil
}

func (r *redisRepo) SetBalance(ctx context.Context, id string, amount int64) error {
	return r.rdb.Set(ctx, moneyKey(id), amount, 0).Err()
}

func (r *redisRepo) InsertIfAbsent(ctx context.Context, id string, amount int64) error {
	// SETNX：已有记录时不动
	return r.rdb.SetNX(ctx, moneyKey(id), amount, 0).Err()
}

func (r *redisRepo) Transfer(ctx context.Context, from, to string, amount int64) (int64, int64, error) {
	res, err := r.rdb.Eval(ctx, transferScript, []string{moneyKey(from), moneyKey(to)}, amount).Result()
	if err != nil {
		return 0, 0, err
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, 0, fmt.Errorf("unexpected transfer reply: %v", res)
	}
	fromBal, _ := vals[0].(int64)
	toBal, _ := vals[1].(int64)
	return fromBal, toBal, nil
}
