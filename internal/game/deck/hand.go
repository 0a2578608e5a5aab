package deck

import "strings"

// Hand 一方的手牌，顺序只影响展示
type Hand struct {
	cards []Card
}

func (h *Hand) Add(c Card) {
	h.cards = append(h.cards, c)
}

// Value 21 点计分：J/Q/K 记 10，A 先记 11，超过 21 时按手牌顺序
// 逐张把 A 降为 1，直到不超点或没有 A 可降
func (h *Hand) Value() int {
	total := 0
	aces := 0
	for _, c := range h.cards {
		p := c.Points()
		if p == 11 {
			aces++
		}
		total += p
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func (h *Hand) IsBust() bool {
	return h.Value() > 21
}

func (h *Hand) Size() int {
	return len(h.cards)
}

// First 明牌（发牌顺序的第一张）
func (h *Hand) First() Card {
	return h.cards[0]
}

// String 中文顿号拼接，用于回复文本
func (h *Hand) String() string {
	parts := make([]string, 0, len(h.cards))
	for _, c := range h.cards {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "，")
}
