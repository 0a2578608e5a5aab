package websocket

import (
	"log"
	"sync"
)

type HubInterface interface {
	BroadcastToUsers(ids []string, msg OutgoingMessage)
	SendToUser(id string, msg OutgoingMessage)
	Close()
}

// Hub 聊天连接中枢：注册/注销、单发、群发，玩家输入统一回调给游戏层
type Hub struct {
	clients    map[string]*Client // user id -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastReq
	sendOne    chan sendReq
	incoming   chan IncomingMessage
	OnIncoming func(IncomingMessage)
	quit       chan struct{}
	mu         sync.RWMutex
}

type broadcastReq struct {
	Users   []string
	Message OutgoingMessage
}

type sendReq struct {
	User    string
	Message OutgoingMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastReq),
		sendOne:    make(chan sendReq),
		incoming:   make(chan IncomingMessage),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	log.Println("chat hub started")

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.UserID] = c
			h.mu.Unlock()
			log.Printf("hub.register -> %s (当前连接数: %d)", c.UserID, len(h.clients))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.UserID]; ok {
				delete(h.clients, c.UserID)
				close(c.Send)
				log.Printf("hub.unregister -> %s (当前连接数: %d)", c.UserID, len(h.clients))
			}
			h.mu.Unlock()

		case req := <-h.broadcast:
			for _, id := range req.Users {
				if client, ok := h.clients[id]; ok {
					select {
					case client.Send <- req.Message:
					default:
						// 慢客户端丢弃，不能卡住游戏层
					}
				}
			}

		case req := <-h.sendOne:
			if client, ok := h.clients[req.User]; ok {
				select {
				case client.Send <- req.Message:
				default:
				}
			}

		case req := <-h.incoming:
			// 玩家消息统一转发给游戏层（GameManager）
			if h.OnIncoming != nil {
				h.OnIncoming(req)
			}

		case <-h.quit:
			for _, c := range h.clients {
				close(c.Send)
			}
			return
		}
	}
}

func (h *Hub) BroadcastToUsers(ids []string, msg OutgoingMessage) {
	h.broadcast <- broadcastReq{Users: ids, Message: msg}
}

func (h *Hub) SendToUser(id string, msg OutgoingMessage) {
	h.sendOne <- sendReq{User: id, Message: msg}
}

func (h *Hub) Close() {
	close(h.quit)
}
