package http

import (
	"net/http"
	"time"

	"github.com/dkeye/VoipWeb/internal/adapters/signal"
	"github.com/dkeye/VoipWeb/internal/app/orch"
	"github.com/dkeye/VoipWeb/internal/config"
	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch     *orch.Orchestrator
	hub      *signal.Hub
	features config.Features
	limits   config.Limits
	ice      []webrtc.ICEServer
	version  string
	started  time.Time
}

type StatusResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Connections int    `json:"connections"`
	Sockets     int    `json:"sockets"`
	Rooms       int    `json:"rooms"`
	Calls       int    `json:"calls"`
}

type ClientConfigResponse struct {
	Features   config.Features    `json:"features"`
	Limits     config.Limits      `json:"limits"`
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

type IdentityRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:      "ok",
		Version:     h.version,
		Uptime:      time.Since(h.started).Truncate(time.Second).String(),
		Connections: h.orch.Registry.Count(),
		Sockets:     h.hub.Len(),
		Rooms:       len(h.orch.Rooms.List()),
		Calls:       h.orch.Calls.Count(),
	})
}

func (h *handlers) clientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ClientConfigResponse{
		Features:   h.features,
		Limits:     h.limits,
		ICEServers: h.ice,
	})
}

func (h *handlers) rooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

func (h *handlers) members(c *gin.Context) {
	id, err := domain.NormalizeRoomID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	conns := h.orch.Rooms.Resolve(id)
	if len(conns) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	members := make([]domain.Member, 0, len(conns))
	for _, m := range conns {
		members = append(members, m.Member())
	}
	c.JSON(http.StatusOK, gin.H{"roomId": id, "members": members})
}

// setIdentity remembers the display name for later signaling channels of
// this browser.
func (h *handlers) setIdentity(c *gin.Context) {
	var req IdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	name, err := domain.NormalizeDisplayName(domain.ConnID(c.GetString("client_token")), req.DisplayName, h.limits.MinUsernameLength, h.limits.MaxUsernameLength)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := sessions.Default(c)
	sess.Set(core.DisplayNameKey, name)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
		return
	}
	c.JSON(http.StatusOK, IdentityRequest{DisplayName: name})
}
