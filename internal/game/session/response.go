package session

// Disposition 告诉聊天层如何递送一条回复
type Disposition string

const (
	// Send 发送后继续收消息，不要求回复
	Send Disposition = "send"
	// Pause 预留，聊天层按带文本的 no-op 处理
	Pause Disposition = "pause"
	// Reject 发送后必须等到恰好一条新输入再继续（非法选择 / 回合继续都用它）
	Reject Disposition = "reject"
	// Finish 对局结束，调用方应丢弃 Session
	Finish Disposition = "finish"
)

// Response 引擎对外的唯一输出：一个递送标记加一段给玩家看的文本
type Response struct {
	Action Disposition `json:"action"`
	Text   string      `json:"text"`
}
