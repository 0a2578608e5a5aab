package match

import (
	"context"
	"strings"
	"sync"
	"testing"

	"BlackjackBot/internal/game/session"
	ws "BlackjackBot/internal/websocket"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// MockHub 记录每个用户收到的最后一条消息
type MockHub struct {
	mu   sync.Mutex
	msgs map[string]ws.OutgoingMessage
}

func NewMockHub() *MockHub {
	return &MockHub{msgs: make(map[string]ws.OutgoingMessage)}
}

func (m *MockHub) BroadcastToUsers(ids []string, msg ws.OutgoingMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.msgs[strings.ToLower(id)] = msg
	}
}

func (m *MockHub) GetMsg(id string) (ws.OutgoingMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.msgs[strings.ToLower(id)]
	return msg, ok
}

// ---------- 内存实现测试 ----------
func Test_MemoryRepo_ChallengeFlow(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	hub := NewMockHub()
	svc := NewService(repo, 60, 100, hub)

	ready := make(chan *Match, 1)
	svc.OnMatchReady = func(m *Match) { ready <- m }

	// 禁止自战
	_, err := svc.Challenge(ctx, ChallengeRequest{From: "10001", Opponent: "10001"})
	assert.ErrorIs(t, err, session.ErrSelfPlay)

	// 正常挑战，bet 为 0 时落到默认值
	m, err := svc.Challenge(ctx, ChallengeRequest{From: "10001", Opponent: "10002"})
	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, int64(100), m.Bet)
	assert.Equal(t, "10001", m.Challenger)

	// 双方都收到 match_start
	for _, u := range []string{"10001", "10002"} {
		msg, ok := hub.GetMsg(u)
		assert.True(t, ok, "user %s should have been notified", u)
		assert.Equal(t, "match_start", msg.Event)
	}
	assert.Equal(t, m.ID, (<-ready).ID)

	// 任一方在局中时再挑战会被拒
	_, err = svc.Challenge(ctx, ChallengeRequest{From: "10002", Opponent: "10003"})
	assert.ErrorIs(t, err, ErrUserBusy)
	_, err = svc.Challenge(ctx, ChallengeRequest{From: "10004", Opponent: "10001"})
	assert.ErrorIs(t, err, ErrUserBusy)

	// 释放后双方都能再开局
	assert.NoError(t, svc.Release(ctx, m.ID, []string{m.Challenger, m.Opponent}))
	m2, err := svc.Challenge(ctx, ChallengeRequest{From: "10002", Opponent: "10001", Bet: 250})
	assert.NoError(t, err)
	assert.Equal(t, int64(250), m2.Bet)
}

func Test_MemoryRepo_Cancel(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	hub := NewMockHub()
	svc := NewService(repo, 60, 100, hub)

	m, err := svc.Challenge(ctx, ChallengeRequest{From: "a", Opponent: "b"})
	assert.NoError(t, err)

	// 被挑战方取消，双方占位一起释放
	assert.NoError(t, svc.Cancel(ctx, "b"))
	id, err := repo.GetUserMatch(ctx, "a")
	assert.NoError(t, err)
	assert.Empty(t, id)

	got, err := repo.GetMatch(ctx, m.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	// 空闲用户取消是 no-op
	assert.NoError(t, svc.Cancel(ctx, "ghost"))
}

// ---------- Redis（miniredis）实现测试 ----------
func Test_RedisRepo_ChallengeFlow(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRedisRepo(rdb)
	hub := NewMockHub()
	svc := NewService(repo, 60, 100, hub)

	m, err := svc.Challenge(ctx, ChallengeRequest{From: "10001", Opponent: "10002", Bet: 300})
	assert.NoError(t, err)
	assert.Equal(t, int64(300), m.Bet)

	// redis 中应有 match key 和双方占位
	assert.True(t, mr.Exists("bj:match:"+m.ID))
	assert.True(t, mr.Exists("bj:userMatch:10001"))
	assert.True(t, mr.Exists("bj:userMatch:10002"))

	got, err := repo.GetMatch(ctx, m.ID)
	assert.NoError(t, err)
	assert.Equal(t, m.Challenger, got.Challenger)
	assert.Equal(t, m.Bet, got.Bet)

	id, err := repo.GetUserMatch(ctx, "10002")
	assert.NoError(t, err)
	assert.Equal(t, m.ID, id)

	// 释放后全部清掉
	assert.NoError(t, svc.Release(ctx, m.ID, []string{"10001", "10002"}))
	assert.False(t, mr.Exists("bj:match:"+m.ID))
	assert.False(t, mr.Exists("bj:userMatch:10001"))

	id, err = repo.GetUserMatch(ctx, "10001")
	assert.NoError(t, err)
	assert.Empty(t, id)
}
