package match

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// key 约定：
//
//	kv: bj:match:{id}      -> json(Match)
//	kv: bj:userMatch:{uid} -> matchID (带 TTL，防止遗留占位)
func matchKey(id string) string {
	return fmt.Sprintf("bj:match:%s", id)
}
func userMatchKey(user string) string {
	return fmt.Sprintf("bj:userMatch:%s", user)
}

func (r *redisRepo) SaveMatch(ctx context.Context, m *Match, ttlSeconds int) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	p := r.rdb.Pipeline()
	p.Set(ctx, matchKey(m.ID), data, ttl)
	p.Set(ctx, userMatchKey(m.Challenger), m.ID, ttl)
	p.Set(ctx, userMatchKey(m.Opponent), m.ID, ttl)
	_, err = p.Exec(ctx)
	return err
}

func (r *redisRepo) GetMatch(ctx context.Context, id string) (*Match, error) {
	val, err := r.rdb.Get(ctx, matchKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Match
	if err := json.Unmarshal([]byte(val), &m); err != nil {
		return nil, fmt.Errorf("corrupt match %s: %w", id, err)
	}
	return &m, nil
}

func (r *redisRepo) GetUserMatch(ctx context.Context, user string) (string, error) {
	val, err := r.rdb.Get(ctx, userMatchKey(user)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *redisRepo) Release(ctx context.Context, matchID string, users []string) error {
	p := r.rdb.Pipeline()
	p.Del(ctx, matchKey(matchID))
	for _, u := range users {
		p.Del(ctx, userMatchKey(u))
	}
	_, err := p.Exec(ctx)
	return err
}
