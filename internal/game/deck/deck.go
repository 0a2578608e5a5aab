package deck

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrShoeExhausted 牌堆抽空（一局最多 ~15 张，正常不会发生）
var ErrShoeExhausted = errors.New("shoe exhausted")

// Card 定义 (suit 0-3, rank 2-14)
type Card struct {
	Suit int `json:"suit"`
	Rank int `json:"rank"`
}

// Points 返回 21 点规则下的点数，A 先按 11 算，超点时由 Hand 降为 1
func (c Card) Points() int {
	switch {
	case c.Rank == 14:
		return 11
	case c.Rank >= 11:
		return 10
	default:
		return c.Rank
	}
}

func (c Card) String() string {
	return fmtCard(c)
}

func fmtCard(c Card) string {
	suits := []string{"♣", "♦", "♥", "♠"}
	ranks := map[int]string{
		11: "J",
		12: "Q",
		13: "K",
		14: "A",
	}
	rankStr, ok := ranks[c.Rank]
	if !ok {
		rankStr = fmt.Sprintf("%d", c.Rank)
	}
	suitStr := "?"
	if c.Suit >= 0 && c.Suit < len(suits) {
		suitStr = suits[c.Suit]
	}
	return rankStr + suitStr
}

// Shoe 一局牌的牌堆，只发不收，不洗回
type Shoe struct {
	cards []Card
	rnd   *rand.Rand
}

// NewShoe 初始化一副 52 张的新牌堆
func NewShoe(seed int64) *Shoe {
	s := &Shoe{
		cards: make([]Card, 0, 52),
		rnd:   rand.New(rand.NewSource(seed)),
	}
	for suit := 0; suit < 4; suit++ {
		for rank := 2; rank <= 14; rank++ {
			s.cards = append(s.cards, Card{Suit: suit, Rank: rank})
		}
	}
	return s
}

// Draw 等概率抽走一张剩余的牌
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrShoeExhausted
	}
	i := s.rnd.Intn(len(s.cards))
	c := s.cards[i]
	s.cards[i] = s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return c, nil
}

// Remaining 剩余张数
func (s *Shoe) Remaining() int {
	return len(s.cards)
}
