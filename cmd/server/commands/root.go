package commands

import (
	"os"
	"strings"

	"github.com/dkeye/VoipWeb/internal/config"
	"github.com/dkeye/VoipWeb/internal/version"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

// RootCmd is the voipweb command line.
var RootCmd = &cobra.Command{
	Use:     "voipweb",
	Short:   "WebRTC signaling server for rooms, chat and 1:1 calls",
	Version: version.Version,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config/config.$CONFIG_ENV.yaml)")
	RootCmd.AddCommand(ServeCmd, InitConfigCmd, ShowConfigCmd, VersionCmd)
}

func Execute() error {
	RootCmd.SilenceUsage = true
	return RootCmd.Execute()
}

// setupLogger configures the global zerolog logger.
func setupLogger(cfg config.Log, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if strings.EqualFold(cfg.Format, "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}
