package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dkeye/VoipWeb/internal/adapters/rtc"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const EnvPrefix = "VOIP"

type Server struct {
	Host       string `mapstructure:"host" yaml:"host"`
	Port       int    `mapstructure:"port" yaml:"port"`
	Mode       string `mapstructure:"mode" yaml:"mode"`
	StaticPath string `mapstructure:"static_path" yaml:"static_path"`
	Secret     string `mapstructure:"secret" yaml:"secret"`
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type TLS struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	CertFile string `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file"`
}

type Signaling struct {
	RingTimeout    time.Duration `mapstructure:"ring_timeout" yaml:"ring_timeout"`
	SendBuffer     int           `mapstructure:"send_buffer" yaml:"send_buffer"`
	WriteWait      time.Duration `mapstructure:"write_wait" yaml:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait" yaml:"pong_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size" yaml:"max_message_size"`
	Backpressure   string        `mapstructure:"backpressure" yaml:"backpressure"`
}

type Limits struct {
	MaxUsersPerRoom   int `mapstructure:"max_users_per_room" yaml:"max_users_per_room" json:"maxUsersPerRoom"`
	MaxMessageLength  int `mapstructure:"max_message_length" yaml:"max_message_length" json:"maxMessageLength"`
	MinUsernameLength int `mapstructure:"min_username_length" yaml:"min_username_length" json:"minUsernameLength"`
	MaxUsernameLength int `mapstructure:"max_username_length" yaml:"max_username_length" json:"maxUsernameLength"`
	RateLimitMessages int `mapstructure:"rate_limit_messages" yaml:"rate_limit_messages" json:"rateLimitMessages"`
}

type Features struct {
	AudioCalls bool `mapstructure:"audio_calls" yaml:"audio_calls" json:"audioCalls"`
	VideoCalls bool `mapstructure:"video_calls" yaml:"video_calls" json:"videoCalls"`
	TextChat   bool `mapstructure:"text_chat" yaml:"text_chat" json:"textChat"`
}

type WebRTC struct {
	ICEServers []rtc.ICEServer `mapstructure:"ice_servers" yaml:"ice_servers"`
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type Config struct {
	Server    Server    `mapstructure:"server" yaml:"server"`
	TLS       TLS       `mapstructure:"tls" yaml:"tls"`
	Signaling Signaling `mapstructure:"signaling" yaml:"signaling"`
	Limits    Limits    `mapstructure:"limits" yaml:"limits"`
	Features  Features  `mapstructure:"features" yaml:"features"`
	WebRTC    WebRTC    `mapstructure:"webrtc" yaml:"webrtc"`
	Log       Log       `mapstructure:"log" yaml:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.static_path", "./web")
	v.SetDefault("server.secret", "change-me")

	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")

	v.SetDefault("signaling.ring_timeout", "30s")
	v.SetDefault("signaling.send_buffer", 64)
	v.SetDefault("signaling.write_wait", "10s")
	v.SetDefault("signaling.pong_wait", "60s")
	v.SetDefault("signaling.max_message_size", 65536)
	v.SetDefault("signaling.backpressure", "drop")

	v.SetDefault("limits.max_users_per_room", 50)
	v.SetDefault("limits.max_message_length", 1000)
	v.SetDefault("limits.min_username_length", 2)
	v.SetDefault("limits.max_username_length", 30)
	v.SetDefault("limits.rate_limit_messages", 10)

	v.SetDefault("features.audio_calls", true)
	v.SetDefault("features.video_calls", true)
	v.SetDefault("features.text_chat", true)

	v.SetDefault("webrtc.ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Load reads path when given. Otherwise config/config.<CONFIG_ENV>.yaml is
// tried and a missing file falls back to defaults. VOIP_* variables
// override both, e.g. VOIP_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		log.Info().Str("module", "config").Str("file", path).Msg("loaded config")
	} else {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName := fmt.Sprintf("config/config.%s.yaml", env)
		v.SetConfigFile(fileName)
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
		} else {
			log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Server.Mode).Int("port", cfg.Server.Port).
		Str("static", cfg.Server.StaticPath).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q: want debug, release or test", c.Server.Mode))
	}
	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("tls.enabled needs cert_file and key_file"))
	}
	switch strings.ToLower(c.Signaling.Backpressure) {
	case "drop", "kick":
	default:
		errs = append(errs, fmt.Errorf("signaling.backpressure %q: want drop or kick", c.Signaling.Backpressure))
	}
	if c.Signaling.RingTimeout <= 0 {
		errs = append(errs, errors.New("signaling.ring_timeout must be positive"))
	}
	if c.Signaling.SendBuffer <= 0 {
		errs = append(errs, errors.New("signaling.send_buffer must be positive"))
	}
	if c.Limits.MaxUsersPerRoom < 0 || c.Limits.RateLimitMessages < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	if c.Limits.MaxMessageLength <= 0 || c.Limits.MaxUsernameLength <= 0 {
		errs = append(errs, errors.New("limits.max_message_length and max_username_length must be positive"))
	}
	if c.Limits.MinUsernameLength <= 0 || c.Limits.MinUsernameLength > c.Limits.MaxUsernameLength {
		errs = append(errs, errors.New("limits.min_username_length must be positive and not above max_username_length"))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want console or json", c.Log.Format))
	}
	return errors.Join(errs...)
}
