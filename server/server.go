package server

import (
	"log"
	"time"

	"asp-server/cache"
	"asp-server/confs"
	"asp-server/db"
	"asp-server/handlers"
	httpHandler "asp-server/handlers/http"
	"asp-server/repositories"
	"asp-server/services"
	"asp-server/usecases"
	"asp-server/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	app *gin.Engine
	db  db.Database
	cfg *confs.Config
}

func NewServer(database db.Database, cfg *confs.Config) *Server {
	return &Server{
		app: gin.Default(),
		db:  database,
		cfg: cfg,
	}
}

func (s *Server) Start() {
	app := s.Router()
	if err := app.Run("0.0.0.0:" + s.cfg.Port); err != nil {
		panic(err)
	}
}

// Router wires repositories, use cases and handlers into the gin
// engine. Split from Start so tests can drive the full route table.
func (s *Server) Router() *gin.Engine {
	// Setup CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config))

	// Setup healthcheck route
	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "OK",
		})
	})

	// Initialize repositories
	userRepo := repositories.NewUserPgRepository(s.db)
	roomRepo := repositories.NewRoomPgRepository(s.db)
	aspRepo := repositories.NewASPPgRepository(s.db)

	// Token issuing and revocation. Redis keeps logouts across
	// restarts; without it the in-process cache is used.
	tokens := services.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	var revoked services.TokenRevoker
	if s.cfg.RedisAddr != "" {
		redisRevoker := services.NewRedisRevoker(s.cfg.RedisAddr, s.cfg.RedisDB)
		if err := redisRevoker.Ping(); err != nil {
			log.Fatalf("failed to connect to Redis at %s: %v", s.cfg.RedisAddr, err)
		}
		log.Printf("Using Redis token revocation store (%s)", s.cfg.RedisAddr)
		revoked = redisRevoker
	} else {
		log.Println("Using in-memory token revocation cache")
		memory := cache.NewRevokedTokenCache()
		memory.StartSweeper(time.Hour)
		revoked = memory
	}

	// Initialize use cases
	authUseCase := usecases.NewAuthUseCase(userRepo, tokens, revoked)
	controlUseCase := usecases.NewControlUseCase(roomRepo, aspRepo)

	// WebSocket manager and handler; state writes push to devices
	manager := ws.NewManager()
	wsHandler := handlers.NewWSHandler(manager, controlUseCase, tokens, revoked)
	controlUseCase.Pusher = wsHandler

	// Initialize handlers
	authHandler := httpHandler.NewAuthHandler(authUseCase)
	controlHandler := httpHandler.NewControlHandler(controlUseCase)

	requireAuth := httpHandler.RequireAuth(tokens, revoked)

	// Auth routes
	auth := s.app.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/logout", requireAuth, authHandler.Logout)
		auth.GET("/profile/:userId", requireAuth, authHandler.Profile)
	}

	// Control routes, every one behind the token validator
	control := s.app.Group("/control", requireAuth)
	{
		control.POST("/add-room/:userId", controlHandler.AddRoom)
		control.POST("/add-asp/:userId/:roomId", controlHandler.AddASP)
		control.GET("/get-rooms-with-asps/:userId", controlHandler.RoomsWithASPs)
		control.GET("/get-devices/:userId/:roomId", controlHandler.RoomDevices)
		control.PUT("/update-room-title/:userId/:roomId", controlHandler.UpdateRoomTitle)
		control.PUT("/update-device-name/:userId/:roomId/:aspId", controlHandler.UpdateDeviceName)
		control.POST("/update-asp-state/:userId/:roomId/:aspId", controlHandler.UpdateASPState)
		control.GET("/read-asp-state/:userId/:roomId/:aspId", controlHandler.ReadASPState)
		control.DELETE("/delete-room/:userId/:roomId", controlHandler.DeleteRoom)
		control.DELETE("/delete-asp/:userId/:roomId/:aspId", controlHandler.DeleteASP)
		control.GET("/connected-asps/:userId", wsHandler.GetConnectedASPs)
	}

	// Device push channel (token checked inside, via query param)
	s.app.GET("/ws", wsHandler.HandleASPWS)

	return s.app
}
