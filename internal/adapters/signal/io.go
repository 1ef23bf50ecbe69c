package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/VoipWeb/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(pingPeriod(ctl.opts.PongWait))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			c.Close()
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(ctl.opts.WriteWait))
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				c.Close()
				return
			}
		case <-ticker.C:
			if err := ctl.ping(c); err != nil {
				c.Close()
				return
			}
		}
	}
}

// readPump owns the inbound side. Events of one connection are handled in
// arrival order; when it returns the connection is torn down.
func (ctl *SignalWSController) readPump(ctx context.Context, id domain.ConnID, c *WsSignalConn) {
	defer func() {
		ctl.Hub.detach(id)
		ctl.limiter.Forget(id)
		ctl.Orch.Disconnect(id)
		c.Close()
		log.Info().Str("module", "signal").Str("sid", string(id)).Msg("readPump closed")
	}()

	ctl.keepAlive(c)
	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(id)).Msg("readPump read error")
			}
			return
		}
		if !ctl.limiter.Allow(id) {
			ctl.Orch.Reject(id, "", domain.ErrRateLimited)
			continue
		}
		ctl.Orch.Handle(id, data)
	}
}
