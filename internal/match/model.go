package match

import "time"

// ChallengeRequest 一个玩家向指定对手下战书
type ChallengeRequest struct {
	From     string `json:"from" binding:"required"`
	Opponent string `json:"opponent" binding:"required"`
	Bet      int64  `json:"bet"` // 0 时用配置里的默认赌注
}

// CancelRequest 取消自己所在的挑战
type CancelRequest struct {
	From string `json:"from" binding:"required"`
}

// ChallengeResponse 返回建立的对局信息
type ChallengeResponse struct {
	MatchID  string `json:"matchId"`
	From     string `json:"from"`
	Opponent string `json:"opponent"`
	Bet      int64  `json:"bet"`
}

// Match 一场已建立的对局占位：发起方执玩家侧，被挑战方执庄家侧
type Match struct {
	ID         string
	Challenger string
	Opponent   string
	Bet        int64
	CreatedAt  time.Time
}
