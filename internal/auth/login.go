package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type LoginRequest struct {
	UserID string `json:"userId" binding:"required"`
	Nonce  string `json:"nonce" binding:"required"`
}

type Handler struct {
	mu         sync.Mutex
	nonceStore map[string]bool
	jwtSecret  []byte
}

func NewHandler(jwtSecret []byte) *Handler {
	return &Handler{
		nonceStore: make(map[string]bool),
		jwtSecret:  jwtSecret,
	}
}

// POST /auth/login  body: {userId, nonce}
// 聊天身份没有可验证的密钥对，nonce 只用来换发本服务的 JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	h.mu.Lock()
	ok := h.nonceStore[req.Nonce]
	if ok {
		delete(h.nonceStore, req.Nonce) // 只允许一次
	}
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid nonce"})
		return
	}

	claims := jwt.MapClaims{
		"sub": req.UserID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtStr, err := token.SignedString(h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jwt": jwtStr})
}
