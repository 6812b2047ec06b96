package router

import (
	"context"

	"github.com/dkeye/Meet/internal/adapters/signal"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const sessionName = "MeetSessions"

// Deps are the services the HTTP surface is wired to. Redis is optional;
// without it the request rate limit is off.
type Deps struct {
	Auth      *app.AuthService
	Directory *app.Directory
	Relay     *app.Relay
	Redis     *redis.Client
	ICE       webrtc.Configuration
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: int(cfg.JWTExpiry.Seconds()), HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	// limited guards the credential-guessing endpoints
	var limited []gin.HandlerFunc
	if deps.Redis != nil && cfg.RateLimit.Requests > 0 {
		limited = append(limited, RateLimit(deps.Redis, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	authH := NewAuthHandler(deps.Auth)
	auth := api.Group("/auth", limited...)
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", Auth(deps.Auth), authH.Me)

	roomH := NewRoomHandler(deps.Directory, deps.Relay)
	rooms := api.Group("/rooms", Auth(deps.Auth))
	rooms.POST("", roomH.CreateRoom)
	rooms.POST("/join", append(limited, roomH.JoinRoom)...)
	rooms.GET("/:roomId", roomH.GetRoom)
	rooms.POST("/:roomId/end", roomH.EndRoom)
	rooms.POST("/:roomId/kick/:userId", roomH.KickUser)

	api.GET("/ice", ICEHandler(deps.ICE))

	var limiter *signal.JoinLimiter
	if cfg.JoinLimit.Requests > 0 {
		limiter = signal.NewJoinLimiter(cfg.JoinLimit.Requests, cfg.JoinLimit.Window)
	}
	ctrl := signal.NewSignalWSController(deps.Relay, deps.Auth, limiter, signal.Config{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	})
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
