package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BlackjackBot/internal/game/session"
	"BlackjackBot/internal/websocket"

	"github.com/google/uuid"
)

var ErrUserBusy = errors.New("玩家已有进行中的对局")

type HubBroadcaster interface {
	BroadcastToUsers(ids []string, msg websocket.OutgoingMessage)
}

// Service 点名挑战：发起方执玩家侧，被点名方执庄家侧
type Service struct {
	repo         Repo
	matchTTL     int // seconds，防止遗留占位
	defaultBet   int64
	hub          HubBroadcaster
	OnMatchReady func(*Match) // 对局建立后交给 GameManager 开局
}

func NewService(repo Repo, matchTTL int, defaultBet int64, hub HubBroadcaster) *Service {
	return &Service{repo: repo, matchTTL: matchTTL, defaultBet: defaultBet, hub: hub}
}

// Challenge 建立一场对局；任一方已在局中则拒绝
func (s *Service) Challenge(ctx context.Context, req ChallengeRequest) (*Match, error) {
	if req.From == req.Opponent {
		return nil, session.ErrSelfPlay
	}
	bet := req.Bet
	if bet <= 0 {
		bet = s.defaultBet
	}

	for _, u := range []string{req.From, req.Opponent} {
		id, err := s.repo.GetUserMatch(ctx, u)
		if err != nil {
			return nil, err
		}
		if id != "" {
			return nil, fmt.Errorf("%w: %s", ErrUserBusy, u)
		}
	}

	m := &Match{
		ID:         uuid.NewString(),
		Challenger: req.From,
		Opponent:   req.Opponent,
		Bet:        bet,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.SaveMatch(ctx, m, s.matchTTL); err != nil {
		return nil, err
	}

	// 通知双方对局开始
	s.hub.BroadcastToUsers([]string{m.Challenger, m.Opponent}, websocket.OutgoingMessage{
		Event: "match_start",
		Data: map[string]any{
			"matchId":  m.ID,
			"player":   m.Challenger,
			"opponent": m.Opponent,
			"bet":      m.Bet,
		},
	})

	// 交给游戏层开局
	if s.OnMatchReady != nil {
		go s.OnMatchReady(m)
	}

	return m, nil
}

// Cancel 取消自己所在的对局占位（未结算前放弃对局总是安全的）
func (s *Service) Cancel(ctx context.Context, user string) error {
	id, err := s.repo.GetUserMatch(ctx, user)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	m, err := s.repo.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return s.repo.Release(ctx, id, []string{user})
	}
	return s.repo.Release(ctx, id, []string{m.Challenger, m.Opponent})
}

// Release 对局正常结束后由 GameManager 调用
func (s *Service) Release(ctx context.Context, matchID string, users []string) error {
	return s.repo.Release(ctx, matchID, users)
}
