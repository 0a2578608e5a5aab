package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"BlackjackBot/internal/game/deck"
	"BlackjackBot/internal/ledger"
)

// ErrSelfPlay 不允许和自己对局，文本会原样回给玩家
var ErrSelfPlay = errors.New("禁止左右互搏")

// ErrResolved 对局已结束后又收到输入，属于调用方缺陷
var ErrResolved = errors.New("session already resolved")

// Phase 对局阶段
type Phase int

const (
	PhaseInsurance Phase = iota + 1
	PhasePlayerAction
	PhaseResolved
)

const (
	actYes    = "是"
	actNo     = "否"
	actHit    = "要牌"
	actDouble = "双倍"
	actStand  = "停牌"
)

// 英文别名，去空格后归一到中文行动词
var actionAliases = map[string]string{
	"yes":    actYes,
	"no":     actNo,
	"hit":    actHit,
	"double": actDouble,
	"stand":  actStand,
}

// Session 一场 21 点对局：独占自己的牌堆和双方手牌，
// 只有结算会碰到进程级共享的账本
type Session struct {
	bet      int64
	playerID string
	dealerID string

	phase      Phase
	playerHand *deck.Hand
	dealerHand *deck.Hand
	shoe       *deck.Shoe
	rnd        *rand.Rand

	ledger *ledger.Ledger
}

// New 建一场新对局并给双方建档（首次引用发 500）
func New(ctx context.Context, bet int64, playerID, dealerID string, lgr *ledger.Ledger) (*Session, error) {
	if playerID == dealerID {
		return nil, ErrSelfPlay
	}
	if err := lgr.EnsureAccount(ctx, playerID); err != nil {
		return nil, fmt.Errorf("ensure player account: %w", err)
	}
	if err := lgr.EnsureAccount(ctx, dealerID); err != nil {
		return nil, fmt.Errorf("ensure dealer account: %w", err)
	}
	seed := time.Now().UnixNano()
	return &Session{
		bet:        bet,
		playerID:   playerID,
		dealerID:   dealerID,
		playerHand: &deck.Hand{},
		dealerHand: &deck.Hand{},
		shoe:       deck.NewShoe(seed),
		rnd:        rand.New(rand.NewSource(seed)),
		ledger:     lgr,
	}, nil
}

func (s *Session) PlayerID() string { return s.playerID }
func (s *Session) DealerID() string { return s.dealerID }
func (s *Session) Phase() Phase     { return s.phase }

// Start 只调用一次：发牌并给出第一条回复（这里绝不能用 Reject）
func (s *Session) Start(ctx context.Context) (Response, error) {
	for i := 0; i < 2; i++ {
		c, err := s.shoe.Draw()
		if err != nil {
			return Response{}, err
		}
		s.dealerHand.Add(c)
	}
	for i := 0; i < 2; i++ {
		c, err := s.shoe.Draw()
		if err != nil {
			return Response{}, err
		}
		s.playerHand.Add(c)
	}
	return s.opening(ctx)
}

// opening 开局判定：天牌、保险、普通流程
func (s *Session) opening(ctx context.Context) (Response, error) {
	if s.playerHand.Value() == 21 {
		desc := fmt.Sprintf("你的手牌：%s\n对方手牌：%s\n", s.playerHand, s.dealerHand)
		if s.dealerHand.Value() == 21 {
			// 双方黑杰克，平局不结算
			s.phase = PhaseResolved
			return Response{Action: Finish, Text: desc + "双方黑杰克，平局"}, nil
		}
		// 黑杰克赔双倍
		s.bet *= 2
		pBal, dBal, err := s.settlePlayerWin(ctx)
		if err != nil {
			return Response{}, err
		}
		s.phase = PhaseResolved
		text := desc + fmt.Sprintf("黑杰克！你赢得了双倍赌注%d\n你的余额：%d，对手余额：%d", s.bet, pBal, dBal)
		return Response{Action: Finish, Text: text}, nil
	}

	if s.dealerHand.First().Rank == 14 {
		// 庄家明牌是 A，进入保险阶段
		s.phase = PhaseInsurance
		text := fmt.Sprintf("你的手牌：%s\n对手的明牌是A，你可以选择花费%d买保险\n可选行动：%s",
			s.playerHand, s.bet/2, s.actionMenu())
		return Response{Action: Send, Text: text}, nil
	}

	s.phase = PhasePlayerAction
	text := fmt.Sprintf("你的手牌：%s\n共计%d点\n对手的明牌是%s\n可选行动：%s",
		s.playerHand, s.playerHand.Value(), s.dealerHand.First(), s.actionMenu())
	return Response{Action: Send, Text: text}, nil
}

// actions 当前阶段的合法行动。手牌已到 21 点时不再允许要牌/双倍
func (s *Session) actions() []string {
	switch s.phase {
	case PhaseInsurance:
		return []string{actYes, actNo}
	case PhasePlayerAction:
		if s.playerHand.Value() >= 21 {
			return []string{actStand}
		}
		return []string{actHit, actDouble, actStand}
	default:
		return nil
	}
}

func (s *Session) actionMenu() string {
	return strings.Join(s.actions(), "，")
}

func (s *Session) isLegal(input string) bool {
	for _, a := range s.actions() {
		if a == input {
			return true
		}
	}
	return false
}

// ApplyInput 主循环入口，对局未结束前反复调用
func (s *Session) ApplyInput(ctx context.Context, raw string) (Response, error) {
	if s.phase == PhaseResolved {
		return Response{}, ErrResolved
	}

	input := strings.TrimSpace(raw)
	if alias, ok := actionAliases[strings.ToLower(input)]; ok {
		input = alias
	}
	if !s.isLegal(input) {
		return Response{Action: Reject, Text: "请从可选行动中选择一项"}, nil
	}

	switch s.phase {
	case PhasePlayerAction:
		return s.playerAction(ctx, input)
	case PhaseInsurance:
		return s.insurance(ctx, input)
	default:
		return Response{}, fmt.Errorf("unknown game phase %d", s.phase)
	}
}

func (s *Session) playerAction(ctx context.Context, input string) (Response, error) {
	switch input {
	case actHit:
		c, err := s.shoe.Draw()
		if err != nil {
			return Response{}, err
		}
		s.playerHand.Add(c)
		sum := s.playerHand.Value()
		if sum <= 21 {
			// 回合继续
			text := fmt.Sprintf("你的手牌：%s\n共计%d点\n对手的明牌是%s\n可选行动：%s",
				s.playerHand, sum, s.dealerHand.First(), s.actionMenu())
			return Response{Action: Reject, Text: text}, nil
		}
		return s.playerBust(ctx, sum)

	case actDouble:
		// 赌注翻倍，只再摸一张
		s.bet *= 2
		c, err := s.shoe.Draw()
		if err != nil {
			return Response{}, err
		}
		s.playerHand.Add(c)
		sum := s.playerHand.Value()
		if sum > 21 {
			return s.playerBust(ctx, sum)
		}
		return s.resolveDealer(ctx, sum)

	case actStand:
		return s.resolveDealer(ctx, s.playerHand.Value())
	}
	return Response{}, fmt.Errorf("action %q passed validation but has no handler", input)
}

func (s *Session) insurance(ctx context.Context, input string) (Response, error) {
	if input == actYes {
		if s.dealerHand.Value() == 21 {
			// 庄家真有黑杰克，玩家直接赢下注额（不翻倍）
			pBal, dBal, err := s.settlePlayerWin(ctx)
			if err != nil {
				return Response{}, err
			}
			s.phase = PhaseResolved
			text := fmt.Sprintf("对手有黑杰克！\n对手手牌：%s\n赢了%d，你的余额：%d，对手余额：%d",
				s.dealerHand, s.bet, pBal, dBal)
			return Response{Action: Finish, Text: text}, nil
		}
		// 没有黑杰克，保险费白给，立即结算这半注
		insurance := s.bet / 2
		_, _, err := s.ledger.Settle(ctx, s.dealerID, s.playerID, insurance)
		if err != nil {
			return Response{}, err
		}
		s.phase = PhasePlayerAction
		text := fmt.Sprintf("对手没有黑杰克，%d白给了\n你的手牌：%s\n共计%d点\n对手的明牌是%s\n可选行动：%s",
			insurance, s.playerHand, s.playerHand.Value(), s.dealerHand.First(), s.actionMenu())
		return Response{Action: Reject, Text: text}, nil
	}

	// 否：直接进入正常行动阶段
	s.phase = PhasePlayerAction
	text := fmt.Sprintf("你的手牌：%s\n共计%d点\n对手的明牌是%s\n可选行动：%s",
		s.playerHand, s.playerHand.Value(), s.dealerHand.First(), s.actionMenu())
	return Response{Action: Reject, Text: text}, nil
}

func (s *Session) playerBust(ctx context.Context, sum int) (Response, error) {
	pBal, dBal, err := s.settleDealerWin(ctx)
	if err != nil {
		return Response{}, err
	}
	s.phase = PhaseResolved
	text := fmt.Sprintf("你的手牌：%s\n共计%d点，爆了\n对手的手牌：%s\n共计%d点\n输了%d，你的余额：%d，对手余额：%d",
		s.playerHand, sum, s.dealerHand, s.dealerHand.Value(), s.bet, pBal, dBal)
	return Response{Action: Finish, Text: text}, nil
}

// resolveDealer 玩家行动结束，轮到庄家摸牌并结算胜负
func (s *Session) resolveDealer(ctx context.Context, playerSum int) (Response, error) {
	// 五小龙优先判定：玩家 5 张不爆直接获胜，除非庄家有黑杰克
	if s.playerHand.Size() >= 5 {
		dealerSum := s.dealerHand.Value()
		if dealerSum != 21 {
			s.bet *= 2
			pBal, dBal, err := s.settlePlayerWin(ctx)
			if err != nil {
				return Response{}, err
			}
			s.phase = PhaseResolved
			text := fmt.Sprintf("你的手牌：%s\n对手的手牌：%s\n共计%d点\n五小龙直接获胜，赢了双倍%d，你的余额：%d，对手余额：%d",
				s.playerHand, s.dealerHand, dealerSum, s.bet, pBal, dBal)
			return Response{Action: Finish, Text: text}, nil
		}
		pBal, dBal, err := s.settleDealerWin(ctx)
		if err != nil {
			return Response{}, err
		}
		s.phase = PhaseResolved
		text := fmt.Sprintf("对手有黑杰克，大于你的五小龙\n你的手牌：%s\n共计%d点\n对手的手牌：%s\n共计%d点\n输了%d，你的余额：%d，对手余额：%d",
			s.playerHand, playerSum, s.dealerHand, 21, s.bet, pBal, dBal)
		return Response{Action: Finish, Text: text}, nil
	}

	dealerSum, drawn, err := s.dealerHit(playerSum)
	if err != nil {
		return Response{}, err
	}
	drawnText := ""
	if len(drawn) > 0 {
		parts := make([]string, 0, len(drawn))
		for _, c := range drawn {
			parts = append(parts, c.String())
		}
		drawnText = fmt.Sprintf("对手摸牌：%s\n", strings.Join(parts, "，"))
	}

	switch {
	case dealerSum > 21:
		pBal, dBal, err := s.settlePlayerWin(ctx)
		if err != nil {
			return Response{}, err
		}
		s.phase = PhaseResolved
		text := drawnText + fmt.Sprintf("你的手牌：%s\n共计%d点\n对手的手牌：%s\n共计%d点，爆了\n赢了%d，你的余额：%d，对手余额：%d",
			s.playerHand, playerSum, s.dealerHand, dealerSum, s.bet, pBal, dBal)
		return Response{Action: Finish, Text: text}, nil

	case dealerSum == playerSum:
		// 平局不结算，余额只为展示，但读失败同样不能装作结束
		pBal, _, err := s.ledger.Balance(ctx, s.playerID)
		if err != nil {
			return Response{}, err
		}
		dBal, _, err := s.ledger.Balance(ctx, s.dealerID)
		if err != nil {
			return Response{}, err
		}
		s.phase = PhaseResolved
		text := drawnText + fmt.Sprintf("你的手牌：%s\n共计%d点\n对手的手牌：%s\n共计%d点\n平局，你的余额：%d，对手余额：%d",
			s.playerHand, playerSum, s.dealerHand, dealerSum, pBal, dBal)
		return Response{Action: Finish, Text: text}, nil

	default:
		// dealerHit 的不变式保证此处庄家点数更大
		pBal, dBal, err := s.settleDealerWin(ctx)
		if err != nil {
			return Response{}, err
		}
		s.phase = PhaseResolved
		text := drawnText + fmt.Sprintf("你的手牌：%s\n共计%d点\n对手的手牌：%s\n共计%d点\n输了%d，你的余额：%d，对手余额：%d",
			s.playerHand, playerSum, s.dealerHand, dealerSum, s.bet, pBal, dBal)
		return Response{Action: Finish, Text: text}, nil
	}
}

// hitProbability 庄家与玩家同点（非 21）时继续摸牌的概率，按点数分档
func hitProbability(total int) float64 {
	switch {
	case total < 16:
		return 0.8
	case total <= 18:
		return 0.5
	default:
		return 0.2
	}
}

// dealerHit 庄家摸牌直到压过玩家、打平收手或爆掉，返回最终点数和摸到的牌
func (s *Session) dealerHit(playerSum int) (int, []deck.Card, error) {
	dealerSum := s.dealerHand.Value()
	var drawn []deck.Card

	if dealerSum > playerSum || dealerSum == 21 {
		return dealerSum, nil, nil
	}
	for dealerSum <= playerSum {
		if dealerSum == playerSum {
			// 双方都到 21 点，直接平局
			if dealerSum == 21 {
				return dealerSum, drawn, nil
			}
			if s.rnd.Float64() >= hitProbability(dealerSum) {
				// 接受平局
				return dealerSum, drawn, nil
			}
		}
		c, err := s.shoe.Draw()
		if err != nil {
			return dealerSum, drawn, err
		}
		drawn = append(drawn, c)
		s.dealerHand.Add(c)
		dealerSum = s.dealerHand.Value()
	}
	return dealerSum, drawn, nil
}

// 结算助手：账本在存储层原子加减，这里不缓存、不预读余额
func (s *Session) settlePlayerWin(ctx context.Context) (playerBalance, dealerBalance int64, err error) {
	return s.ledger.Settle(ctx, s.playerID, s.dealerID, s.bet)
}

func (s *Session) settleDealerWin(ctx context.Context) (playerBalance, dealerBalance int64, err error) {
	dBal, pBal, err := s.ledger.Settle(ctx, s.dealerID, s.playerID, s.bet)
	return pBal, dBal, err
}
