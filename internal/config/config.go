package config

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Chart  ChartConfig  `yaml:"chart" mapstructure:"chart"`
	Bubble BubbleConfig `yaml:"bubble" mapstructure:"bubble"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig names the three input documents. Each is a local path or an
// http(s):// or ftp:// URL.
type DataConfig struct {
	Cities   string `yaml:"cities" mapstructure:"cities"`
	Features string `yaml:"features" mapstructure:"features"`
	Topology string `yaml:"topology" mapstructure:"topology"`

	// Parsing of a delimited city table. Delimiter and Comment are single
	// characters; "tab" and "\t" name a tab.
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	Comment    string `yaml:"comment" mapstructure:"comment"`
	LazyQuotes bool   `yaml:"lazy_quotes" mapstructure:"lazy_quotes"`
}

// DelimiterRune returns the configured field delimiter, or 0 for the default.
func (d DataConfig) DelimiterRune() rune {
	r, _ := tableRune(d.Delimiter)
	return r
}

// CommentRune returns the configured comment character, or 0 for none.
func (d DataConfig) CommentRune() rune {
	r, _ := tableRune(d.Comment)
	return r
}

func (d DataConfig) effectiveDelimiter() rune {
	if r := d.DelimiterRune(); r != 0 {
		return r
	}
	return ','
}

func tableRune(s string) (rune, bool) {
	switch s {
	case "":
		return 0, true
	case "tab", `\t`:
		return '\t', true
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, false
	}
	return r, true
}

// MapConfig sizes the choropleth map.
type MapConfig struct {
	Width         int     `yaml:"width" mapstructure:"width"`
	Height        int     `yaml:"height" mapstructure:"height"`
	Scale         float64 `yaml:"scale" mapstructure:"scale"`
	GraticuleStep float64 `yaml:"graticule_step" mapstructure:"graticule_step"`
	PointRadius   float64 `yaml:"point_radius" mapstructure:"point_radius"`
}

// ChartConfig lays out the bar chart.
type ChartConfig struct {
	Width            int     `yaml:"width" mapstructure:"width"`
	Height           int     `yaml:"height" mapstructure:"height"`
	LeftPadding      float64 `yaml:"left_padding" mapstructure:"left_padding"`
	RightPadding     float64 `yaml:"right_padding" mapstructure:"right_padding"`
	TopBottomPadding float64 `yaml:"top_bottom_padding" mapstructure:"top_bottom_padding"`
	Gutter           float64 `yaml:"gutter" mapstructure:"gutter"`
}

// BubbleConfig lays out the bubble chart.
type BubbleConfig struct {
	Width        int     `yaml:"width" mapstructure:"width"`
	Height       int     `yaml:"height" mapstructure:"height"`
	Count        int     `yaml:"count" mapstructure:"count"`
	XMin         float64 `yaml:"x_min" mapstructure:"x_min"`
	XMax         float64 `yaml:"x_max" mapstructure:"x_max"`
	YBottom      float64 `yaml:"y_bottom" mapstructure:"y_bottom"`
	YTop         float64 `yaml:"y_top" mapstructure:"y_top"`
	RadiusFactor float64 `yaml:"radius_factor" mapstructure:"radius_factor"`
	RampFrom     string  `yaml:"ramp_from" mapstructure:"ramp_from"`
	RampTo       string  `yaml:"ramp_to" mapstructure:"ramp_to"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	CacheSize       int           `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTL        time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RateLimit       float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins  []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// FetchConfig configures remote source downloads.
type FetchConfig struct {
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
// Environment variables use the CITYMAP_ prefix with dots replaced by
// underscores, e.g. CITYMAP_DATA_CITIES.
func Load() (*Config, error) {
	// A missing .env is not an error.
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CITYMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.cities", "data/uscities1.csv")
	v.SetDefault("data.features", "data/uscities1.geojson")
	v.SetDefault("data.topology", "data/states.json")
	v.SetDefault("data.delimiter", "")
	v.SetDefault("data.comment", "")
	v.SetDefault("data.lazy_quotes", false)
	v.SetDefault("map.width", 960)
	v.SetDefault("map.height", 500)
	v.SetDefault("map.scale", 800)
	v.SetDefault("map.graticule_step", 5)
	v.SetDefault("map.point_radius", 6)
	v.SetDefault("chart.width", 960)
	v.SetDefault("chart.height", 500)
	v.SetDefault("chart.left_padding", 80)
	v.SetDefault("chart.right_padding", 20)
	v.SetDefault("chart.top_bottom_padding", 80)
	v.SetDefault("chart.gutter", 2)
	v.SetDefault("bubble.width", 900)
	v.SetDefault("bubble.height", 500)
	v.SetDefault("bubble.count", 5)
	v.SetDefault("bubble.x_min", 90)
	v.SetDefault("bubble.x_max", 790)
	v.SetDefault("bubble.y_bottom", 450)
	v.SetDefault("bubble.y_top", 50)
	v.SetDefault("bubble.radius_factor", 0.0012)
	v.SetDefault("bubble.ramp_from", "#FDBE85")
	v.SetDefault("bubble.ramp_to", "#D94701")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_size", 64)
	v.SetDefault("server.cache_ttl", "10m")
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("fetch.user_agent", "citymap/1.0")
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is the command name.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Data.Cities == "" {
		errs = append(errs, "data.cities is required")
	}
	if _, ok := tableRune(c.Data.Delimiter); !ok {
		errs = append(errs, "data.delimiter must be a single character")
	}
	if _, ok := tableRune(c.Data.Comment); !ok {
		errs = append(errs, "data.comment must be a single character")
	} else if c.Data.Comment != "" && c.Data.CommentRune() == c.Data.effectiveDelimiter() {
		errs = append(errs, "data.comment must differ from data.delimiter")
	}
	if mode != "classify" {
		if c.Data.Features == "" {
			errs = append(errs, "data.features is required")
		}
		if c.Data.Topology == "" {
			errs = append(errs, "data.topology is required")
		}
	}

	switch mode {
	case "render", "serve":
		if c.Map.Width <= 0 || c.Map.Height <= 0 {
			errs = append(errs, "map.width and map.height must be positive")
		}
		if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
			errs = append(errs, "chart.width and chart.height must be positive")
		}
		if c.Bubble.Width <= 0 || c.Bubble.Height <= 0 {
			errs = append(errs, "bubble.width and bubble.height must be positive")
		}
	}

	if mode == "serve" {
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Server.CacheSize < 1 {
			errs = append(errs, "server.cache_size must be positive")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
