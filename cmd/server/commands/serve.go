package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	router "github.com/dkeye/VoipWeb/internal/adapters/http"
	"github.com/dkeye/VoipWeb/internal/adapters/rtc"
	sig "github.com/dkeye/VoipWeb/internal/adapters/signal"
	"github.com/dkeye/VoipWeb/internal/app"
	"github.com/dkeye/VoipWeb/internal/app/orch"
	"github.com/dkeye/VoipWeb/internal/config"
	"github.com/dkeye/VoipWeb/internal/version"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serveHost  string
	servePort  int
	serveDebug bool
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling server",
	RunE:  runServe,
}

func init() {
	ServeCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	ServeCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides server.port)")
	ServeCmd.Flags().BoolVar(&serveDebug, "debug", false, "debug logging and gin debug mode")
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogger(config.Log{Level: "info"}, serveDebug)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveDebug {
		cfg.Server.Mode = "debug"
	}
	setupLogger(cfg.Log, serveDebug)

	ice, err := rtc.BuildICEServers(cfg.WebRTC.ICEServers)
	if err != nil {
		log.Error().Err(err).Msg("invalid webrtc.ice_servers")
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hub := sig.NewHub()
	o := orch.New(orch.Options{
		MaxMembersPerRoom: cfg.Limits.MaxUsersPerRoom,
		MaxMessageLen:     cfg.Limits.MaxMessageLength,
		MinUsernameLen:    cfg.Limits.MinUsernameLength,
		MaxUsernameLen:    cfg.Limits.MaxUsernameLength,
		RingTimeout:       cfg.Signaling.RingTimeout,
		Features: orch.Features{
			AudioCalls: cfg.Features.AudioCalls,
			VideoCalls: cfg.Features.VideoCalls,
			TextChat:   cfg.Features.TextChat,
		},
		Policy: app.ParsePolicy(cfg.Signaling.Backpressure),
	}, hub)
	ctl := sig.NewSignalWSController(o, hub, nil, sig.Options{
		SendBuffer:     cfg.Signaling.SendBuffer,
		WriteWait:      cfg.Signaling.WriteWait,
		PongWait:       cfg.Signaling.PongWait,
		MaxMessageSize: cfg.Signaling.MaxMessageSize,
		RateLimit:      cfg.Limits.RateLimitMessages,
	})

	r := router.SetupRouter(ctx, router.Deps{
		Config:     cfg,
		Orch:       o,
		Signal:     ctl,
		ICEServers: ice,
		Version:    version.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Bool("tls", cfg.TLS.Enabled).Str("version", version.Version).Msg("VoipWeb server started")
		var err error
		if cfg.TLS.Enabled {
			err = srv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			return err
		}
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
