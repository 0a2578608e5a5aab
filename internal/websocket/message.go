package websocket

// 游戏事件名，聊天层和前端共用
const (
	EventGameUpdate = "game_update"
	EventGamePrompt = "game_prompt" // 需要玩家恰好再回一条
	EventGameOver   = "game_over"
	EventGamePause  = "game_pause"
	EventGameError  = "game_error"
)

type OutgoingMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type IncomingMessage struct {
	From  string      `json:"from"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
