package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 工具：检查是否有重复牌
func hasDuplicates(cards []Card) bool {
	seen := make(map[Card]bool)
	for _, c := range cards {
		if seen[c] {
			return true
		}
		seen[c] = true
	}
	return false
}

func TestNewShoe(t *testing.T) {
	s := NewShoe(1)

	assert.Equal(t, 52, s.Remaining())
	assert.False(t, hasDuplicates(s.cards))

	suits := make(map[int]bool)
	ranks := make(map[int]bool)
	for _, c := range s.cards {
		suits[c.Suit] = true
		ranks[c.Rank] = true
	}
	assert.Equal(t, 4, len(suits))
	assert.Equal(t, 13, len(ranks))
}

func TestDrawWithoutReplacement(t *testing.T) {
	s := NewShoe(42)

	drawn := make([]Card, 0, 52)
	for i := 0; i < 52; i++ {
		c, err := s.Draw()
		assert.NoError(t, err)
		drawn = append(drawn, c)
	}
	assert.False(t, hasDuplicates(drawn), "each card should be drawn at most once")
	assert.Equal(t, 0, s.Remaining())

	// 抽空后必须报错，不允许自动换新牌堆
	_, err := s.Draw()
	assert.ErrorIs(t, err, ErrShoeExhausted)
}

func TestDrawSameSeedSameSequence(t *testing.T) {
	s1 := NewShoe(7)
	s2 := NewShoe(7)
	for i := 0; i < 10; i++ {
		c1, _ := s1.Draw()
		c2, _ := s2.Draw()
		assert.Equal(t, c1, c2)
	}
}

func TestCardPoints(t *testing.T) {
	assert.Equal(t, 2, Card{Suit: 0, Rank: 2}.Points())
	assert.Equal(t, 10, Card{Suit: 1, Rank: 10}.Points())
	assert.Equal(t, 10, Card{Suit: 2, Rank: 11}.Points()) // J
	assert.Equal(t, 10, Card{Suit: 3, Rank: 12}.Points()) // Q
	assert.Equal(t, 10, Card{Suit: 0, Rank: 13}.Points()) // K
	assert.Equal(t, 11, Card{Suit: 1, Rank: 14}.Points()) // A
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", Card{Suit: 3, Rank: 14}.String())
	assert.Equal(t, "10♦", Card{Suit: 1, Rank: 10}.String())
	assert.Equal(t, "Q♥", Card{Suit: 2, Rank: 12}.String())
}

func TestHandValueSoftAce(t *testing.T) {
	// 一张 A 且其余不超过 10 点时，A 记 11
	h := &Hand{}
	h.Add(Card{Suit: 0, Rank: 14})
	h.Add(Card{Suit: 1, Rank: 9})
	assert.Equal(t, 20, h.Value())

	h2 := &Hand{}
	h2.Add(Card{Suit: 0, Rank: 14})
	h2.Add(Card{Suit: 1, Rank: 13})
	assert.Equal(t, 21, h2.Value())
}

func TestHandValueAceDemotion(t *testing.T) {
	// A + A + 9 = 11 + 1 + 9 = 21，只降一张 A
	h := &Hand{}
	h.Add(Card{Suit: 0, Rank: 14})
	h.Add(Card{Suit: 1, Rank: 14})
	h.Add(Card{Suit: 2, Rank: 9})
	assert.Equal(t, 21, h.Value())

	// A + A + K = 1 + 1 + 10 = 12，两张都降
	h2 := &Hand{}
	h2.Add(Card{Suit: 0, Rank: 14})
	h2.Add(Card{Suit: 1, Rank: 14})
	h2.Add(Card{Suit: 2, Rank: 13})
	assert.Equal(t, 12, h2.Value())

	// 没有 A 可降时返回最小硬点数
	h3 := &Hand{}
	h3.Add(Card{Suit: 0, Rank: 10})
	h3.Add(Card{Suit: 1, Rank: 13})
	h3.Add(Card{Suit: 2, Rank: 5})
	assert.Equal(t, 25, h3.Value())
	assert.True(t, h3.IsBust())
}

func TestHandString(t *testing.T) {
	h := &Hand{}
	h.Add(Card{Suit: 3, Rank: 14})
	h.Add(Card{Suit: 1, Rank: 13})
	assert.Equal(t, "A♠，K♦", h.String())
	assert.Equal(t, Card{Suit: 3, Rank: 14}, h.First())
	assert.Equal(t, 2, h.Size())
}
