package match

import "context"

// Repo 定义对局占位的抽象操作
type Repo interface {
	// SaveMatch 保存对局并建立双方 user -> match 的占位
	SaveMatch(ctx context.Context, m *Match, ttlSeconds int) error
	// GetMatch 按 id 取对局，不存在返回 nil
	GetMatch(ctx context.Context, id string) (*Match, error)
	// GetUserMatch 返回用户当前所在对局 id，空串表示空闲
	GetUserMatch(ctx context.Context, user string) (string, error)
	// Release 删除对局和双方占位
	Release(ctx context.Context, matchID string, users []string) error
}
