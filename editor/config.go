package editor

import (
	"time"

	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"notectl/state"
)

// Config tunes the editor instance. Values load from notectl.yaml and
// NOTECTL_* environment overrides.
type Config struct {
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	History struct {
		GroupWindowMS int `mapstructure:"group_window_ms"`
		MaxDepth      int `mapstructure:"max_depth"`
	} `mapstructure:"history"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	var c Config
	c.Log.Level = "info"
	c.History.GroupWindowMS = 1000
	c.History.MaxDepth = 1000
	c.Server.Addr = ":8732"
	return c
}

// LoadConfig reads notectl.yaml from the given directories (falling back to
// the working directory) plus NOTECTL_* env vars. A missing config file is
// not an error; defaults apply.
func LoadConfig(paths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("notectl")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("NOTECTL")
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("history.group_window_ms", def.History.GroupWindowMS)
	v.SetDefault("history.max_depth", def.History.MaxDepth)
	v.SetDefault("server.addr", def.Server.Addr)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !xerrors.As(err, &notFound) {
			return def, xerrors.Errorf("editor: read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, xerrors.Errorf("editor: unmarshal config: %w", err)
	}
	return cfg, nil
}

// HistoryConfig converts the config to the state package's shape.
func (c Config) HistoryConfig() state.HistoryConfig {
	return state.HistoryConfig{
		GroupWindow: time.Duration(c.History.GroupWindowMS) * time.Millisecond,
		MaxDepth:    c.History.MaxDepth,
	}
}
