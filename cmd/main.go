package main

import (
	"net/http"

	"BlackjackBot/config"
	"BlackjackBot/internal/auth"
	"BlackjackBot/internal/game/manager"
	"BlackjackBot/internal/ledger"
	"BlackjackBot/internal/match"
	"BlackjackBot/internal/middleware"
	"BlackjackBot/internal/storage"
	"BlackjackBot/internal/utils"
	"BlackjackBot/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()
	utils.Init()

	//-------------------------------------------------------
	// 1. 初始化存储
	//-------------------------------------------------------
	if err := storage.InitRedis(
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	); err != nil {
		utils.Error.Fatalf("Redis init failed: %v", err)
	}

	// 账本：配了 DSN 走 Postgres，否则直接落 Redis
	var ledgerRepo ledger.Repo
	if config.C.Database.DSN != "" {
		if err := storage.InitPostgres(config.C.Database.DSN); err != nil {
			utils.Error.Fatalf("Postgres init failed: %v", err)
		}
		repo, err := ledger.NewPostgresRepo(storage.Ctx, storage.DB)
		if err != nil {
			utils.Error.Fatalf("ledger schema init failed: %v", err)
		}
		ledgerRepo = repo
		utils.Print.Info("ledger backed by postgres")
	} else {
		ledgerRepo = ledger.NewRedisRepo(storage.Rdb)
		utils.Print.Info("ledger backed by redis")
	}
	lgr := ledger.New(ledgerRepo)

	//-------------------------------------------------------
	// 2. 初始化 Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 3. 初始化 Hub（必须最先启动）
	//-------------------------------------------------------
	hub := websocket.NewHub()
	go hub.Run()

	//-------------------------------------------------------
	// 4. 挑战服务 + GameManager
	//-------------------------------------------------------
	matchRepo := match.NewRedisRepo(storage.Rdb)
	svc := match.NewService(matchRepo, config.C.Game.MatchTTL, config.C.Game.DefaultBet, hub)

	gameMgr := manager.NewGameManager(hub, lgr, svc)

	// 对局建立后交给 GameManager 开局
	svc.OnMatchReady = func(m *match.Match) {
		utils.Print.Info("match ready", "match", m.ID, "player", m.Challenger, "dealer", m.Opponent, "bet", m.Bet)
		if err := gameMgr.StartMatch(storage.Ctx, m); err != nil {
			utils.Print.Error("StartMatch", "match", m.ID, "err", err)
		}
	}

	// 玩家消息统一进 GameManager
	hub.OnIncoming = gameMgr.HandlePlayerMessage

	//-------------------------------------------------------
	// 5. 路由
	//-------------------------------------------------------
	secret := []byte(config.C.JWT.Secret)

	authGroup := r.Group("/auth")
	{
		ah := auth.NewHandler(secret)
		authGroup.GET("/nonce", ah.GetNonce)
		authGroup.POST("/login", ah.Login)
	}

	authed := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		authed.GET("/ws", websocket.ServeWS(hub))

		mh := match.NewHandler(svc)
		authed.POST("/match/challenge", mh.Challenge)
		authed.POST("/match/cancel", mh.Cancel)

		authed.GET("/balance/:id", func(c *gin.Context) {
			bal, ok, err := lgr.Balance(c.Request.Context(), c.Param("id"))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "no record"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "balance": bal})
		})
	}

	//-------------------------------------------------------
	// 6. 启动服务器
	//-------------------------------------------------------
	utils.Info.Printf("Server running on %s", config.C.Server.Port)
	if err := r.Run(config.C.Server.Port); err != nil {
		utils.Error.Fatalf("server stopped: %v", err)
	}
}
