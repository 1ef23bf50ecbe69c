package http

import (
	"context"
	"time"

	"github.com/dkeye/VoipWeb/internal/adapters/signal"
	"github.com/dkeye/VoipWeb/internal/app/orch"
	"github.com/dkeye/VoipWeb/internal/config"
	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const sessionName = "VoipSessions"

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// IdentityMiddleware exposes the display name for the signaling channel:
// the ?name= query wins over the one remembered in the session.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			if v, ok := sessions.Default(c).Get(core.DisplayNameKey).(string); ok {
				name = v
			}
		}
		if name != "" {
			c.Set(core.DisplayNameKey, name)
		}
		c.Next()
	}
}

type Deps struct {
	Config     *config.Config
	Orch       *orch.Orchestrator
	Signal     *signal.SignalWSController
	ICEServers []webrtc.ICEServer
	Version    string
}

func SetupRouter(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Server.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Server.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, Secure: cfg.TLS.Enabled})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.Server.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.Server.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.Server.StaticPath).Msg("router setup")

	h := &handlers{
		orch:     d.Orch,
		hub:      d.Signal.Hub,
		features: cfg.Features,
		limits:   cfg.Limits,
		ice:      d.ICEServers,
		version:  d.Version,
		started:  time.Now(),
	}
	r.GET("/healthz", h.health)

	api := r.Group("/api")
	api.GET("/status", h.status)
	api.GET("/config", h.clientConfig)
	api.GET("/rooms", h.rooms)
	api.GET("/rooms/:id/members", h.members)
	api.POST("/identity", h.setIdentity)

	api.GET("/ws/signal", IdentityMiddleware(), func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		d.Signal.HandleSignal(ctx, c)
	})

	return r
}
