package manager

import (
	"context"
	"fmt"
	"sync"

	"BlackjackBot/internal/game/session"
	"BlackjackBot/internal/ledger"
	"BlackjackBot/internal/match"
	"BlackjackBot/internal/utils"
	"BlackjackBot/internal/websocket"
)

// Releaser 对局结束后释放匹配占位
type Releaser interface {
	Release(ctx context.Context, matchID string, users []string) error
}

type game struct {
	matchID string
	sess    *session.Session
}

// GameManager 管理所有进行中的对局，玩家消息统一从这里进引擎
type GameManager struct {
	mu         sync.RWMutex
	games      map[string]*game  // 发起方 user id -> game
	userToGame map[string]string // 双方 user id -> 发起方 user id
	hub        websocket.HubInterface
	ledger     *ledger.Ledger
	releaser   Releaser
}

func NewGameManager(hub websocket.HubInterface, lgr *ledger.Ledger, releaser Releaser) *GameManager {
	return &GameManager{
		games:      make(map[string]*game),
		userToGame: make(map[string]string),
		hub:        hub,
		ledger:     lgr,
		releaser:   releaser,
	}
}

// StartMatch 接手一场已建立的挑战并开局。
// Session 只能被一个协程驱动：发牌期间 userToGame 还没写入，
// Hub 查不到这场对局，提前到达的玩家输入会被丢弃而不是打进
// 正在发牌的引擎
func (m *GameManager) StartMatch(ctx context.Context, mt *match.Match) error {
	sess, err := session.New(ctx, mt.Bet, mt.Challenger, mt.Opponent, m.ledger)
	if err != nil {
		return err
	}

	// games 先占位，挡住同一发起方的并发二次开局
	g := &game{matchID: mt.ID, sess: sess}
	m.mu.Lock()
	if _, ok := m.games[mt.Challenger]; ok {
		m.mu.Unlock()
		return fmt.Errorf("game for %s exists", mt.Challenger)
	}
	m.games[mt.Challenger] = g
	m.mu.Unlock()

	res, err := sess.Start(ctx)
	if err != nil {
		m.abort(ctx, g, err)
		return err
	}
	m.deliver(ctx, g, res)

	if res.Action == session.Finish {
		// 开局即天牌，deliver 已经收场，不接线
		return nil
	}

	m.mu.Lock()
	m.userToGame[mt.Challenger] = mt.Challenger
	m.userToGame[mt.Opponent] = mt.Challenger
	m.mu.Unlock()
	return nil
}

// HandlePlayerMessage 统一入口（来自 Hub.OnIncoming）
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	m.mu.RLock()
	owner := m.userToGame[msg.From]
	g := m.games[owner]
	m.mu.RUnlock()

	if g == nil {
		return
	}
	ctx := context.Background()

	switch msg.Event {

	case "game_action":
		// 只有发起方（玩家侧）能出牌
		if msg.From != g.sess.PlayerID() {
			return
		}
		input, _ := msg.Data.(string)
		res, err := g.sess.ApplyInput(ctx, input)
		if err != nil {
			m.abort(ctx, g, err)
			return
		}
		m.deliver(ctx, g, res)

	case "chat":
		// 对局内聊天，转发给双方
		m.hub.BroadcastToUsers(
			[]string{g.sess.PlayerID(), g.sess.DealerID()},
			websocket.OutgoingMessage{
				Event: "chat",
				Data:  map[string]any{"from": msg.From, "text": msg.Data},
			},
		)
	}
}

// deliver 把引擎的回复按递送标记翻译成聊天事件
func (m *GameManager) deliver(ctx context.Context, g *game, res session.Response) {
	users := []string{g.sess.PlayerID(), g.sess.DealerID()}

	var event string
	switch res.Action {
	case session.Send:
		event = websocket.EventGameUpdate
	case session.Reject:
		event = websocket.EventGamePrompt
	case session.Finish:
		event = websocket.EventGameOver
	case session.Pause:
		event = websocket.EventGamePause
	}

	m.hub.BroadcastToUsers(users, websocket.OutgoingMessage{
		Event: event,
		Data:  map[string]any{"text": res.Text, "player": g.sess.PlayerID()},
	})

	if res.Action == session.Finish {
		m.teardown(ctx, g)
	}
}

// abort 引擎内部错误（牌堆抽空 / 账本写失败），对局作废
func (m *GameManager) abort(ctx context.Context, g *game, err error) {
	utils.Print.Error("session aborted", "match", g.matchID, "err", err)
	m.hub.BroadcastToUsers(
		[]string{g.sess.PlayerID(), g.sess.DealerID()},
		websocket.OutgoingMessage{
			Event: websocket.EventGameError,
			Data:  map[string]any{"text": "内部错误，本局作废"},
		},
	)
	m.teardown(ctx, g)
}

func (m *GameManager) teardown(ctx context.Context, g *game) {
	users := []string{g.sess.PlayerID(), g.sess.DealerID()}

	m.mu.Lock()
	delete(m.games, g.sess.PlayerID())
	for _, u := range users {
		delete(m.userToGame, u)
	}
	m.mu.Unlock()

	if err := m.releaser.Release(ctx, g.matchID, users); err != nil {
		utils.Print.Error("release match", "match", g.matchID, "err", err)
	}
}
