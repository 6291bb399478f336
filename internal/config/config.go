package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cron      CronConfig      `mapstructure:"cron"`
	Gamma     GammaConfig     `mapstructure:"gamma"`
	Clob      ClobConfig      `mapstructure:"clob"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Trending  TrendingConfig  `mapstructure:"trending"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SnapshotRefresh string `mapstructure:"snapshot_refresh"`
	TrendingRefresh string `mapstructure:"trending_refresh"`
}

type GammaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ClobConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AlertsConfig holds every knob the shift detector and ledger consume.
type AlertsConfig struct {
	AbsoluteDeltaThreshold float64       `mapstructure:"absolute_delta_threshold"`
	RelativeDeltaThreshold float64       `mapstructure:"relative_delta_threshold"`
	MinVolumeThreshold     float64       `mapstructure:"min_volume_threshold"`
	Cooldown               time.Duration `mapstructure:"cooldown"`
	DetectionWindow        time.Duration `mapstructure:"detection_window"`
}

type BroadcastConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	TradeLimit int           `mapstructure:"trade_limit"`
}

type TrendingConfig struct {
	TopK           int     `mapstructure:"top_k"`
	MinScore       float64 `mapstructure:"min_score"`
	MinOccurrences int     `mapstructure:"min_occurrences"`
	FetchLimit     int     `mapstructure:"fetch_limit"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.snapshot_refresh", "@every 5m")
	v.SetDefault("cron.trending_refresh", "@every 10m")
	v.SetDefault("gamma.base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("gamma.timeout", "30s")
	v.SetDefault("clob.base_url", "https://clob.polymarket.com")
	v.SetDefault("clob.timeout", "30s")

	v.SetDefault("alerts.absolute_delta_threshold", 0.05)
	v.SetDefault("alerts.relative_delta_threshold", 0.20)
	v.SetDefault("alerts.min_volume_threshold", 100)
	v.SetDefault("alerts.cooldown", "15m")
	v.SetDefault("alerts.detection_window", "1h")

	v.SetDefault("broadcast.interval", "5s")
	v.SetDefault("broadcast.trade_limit", 10)

	v.SetDefault("trending.top_k", 20)
	v.SetDefault("trending.min_score", 1000)
	v.SetDefault("trending.min_occurrences", 2)
	v.SetDefault("trending.fetch_limit", 100)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
