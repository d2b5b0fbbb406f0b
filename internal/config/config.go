// Package config loads client settings from defaults, an optional YAML file
// and OTTO_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

// Config is the resolved client configuration.
type Config struct {
	APIURL         string
	WSURL          string // empty: derived from APIURL
	SessionCookie  string
	CookieName     string
	UserID         string
	Surface        domain.SessionType
	AutoReconnect  bool
	ReconnectDelay time.Duration
	SSEPath        string
	SSEMaxRetries  int
	SSERetryDelay  time.Duration
	FeaturesTTL    time.Duration
	HTTPTimeout    time.Duration
	LogLevel       string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		CookieName:     "session",
		Surface:        domain.SessionKitchen,
		AutoReconnect:  true,
		ReconnectDelay: 3 * time.Second,
		SSEPath:        "/api/events",
		SSEMaxRetries:  5,
		SSERetryDelay:  5 * time.Second,
		FeaturesTTL:    5 * time.Minute,
		HTTPTimeout:    30 * time.Second,
		LogLevel:       "info",
	}
}

// file mirrors the YAML layout. Pointers distinguish "absent" from zero.
type file struct {
	APIURL           *string `yaml:"api_url"`
	WSURL            *string `yaml:"ws_url"`
	SessionCookie    *string `yaml:"session_cookie"`
	CookieName       *string `yaml:"cookie_name"`
	UserID           *string `yaml:"user_id"`
	Surface          *string `yaml:"surface"`
	AutoReconnect    *bool   `yaml:"auto_reconnect"`
	ReconnectDelayMS *int    `yaml:"reconnect_delay_ms"`
	SSEPath          *string `yaml:"sse_path"`
	SSEMaxRetries    *int    `yaml:"sse_max_retries"`
	SSERetryMS       *int    `yaml:"sse_retry_interval_ms"`
	FeaturesTTLMS    *int    `yaml:"features_ttl_ms"`
	HTTPTimeoutMS    *int    `yaml:"http_timeout_ms"`
	LogLevel         *string `yaml:"log_level"`
}

// Load resolves the configuration. path may be empty; a missing file at a
// non-empty path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := cfg.applyYAML(data); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyYAML(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	setStr(&c.APIURL, f.APIURL)
	setStr(&c.WSURL, f.WSURL)
	setStr(&c.SessionCookie, f.SessionCookie)
	setStr(&c.CookieName, f.CookieName)
	setStr(&c.UserID, f.UserID)
	if f.Surface != nil {
		c.Surface = domain.SessionType(*f.Surface)
	}
	if f.AutoReconnect != nil {
		c.AutoReconnect = *f.AutoReconnect
	}
	setMillis(&c.ReconnectDelay, f.ReconnectDelayMS)
	setStr(&c.SSEPath, f.SSEPath)
	if f.SSEMaxRetries != nil {
		c.SSEMaxRetries = *f.SSEMaxRetries
	}
	setMillis(&c.SSERetryDelay, f.SSERetryMS)
	setMillis(&c.FeaturesTTL, f.FeaturesTTLMS)
	setMillis(&c.HTTPTimeout, f.HTTPTimeoutMS)
	setStr(&c.LogLevel, f.LogLevel)
	return nil
}

func (c *Config) applyEnv() {
	c.APIURL = envStr("OTTO_API_URL", c.APIURL)
	c.WSURL = envStr("OTTO_WS_URL", c.WSURL)
	c.SessionCookie = envStr("OTTO_SESSION_COOKIE", c.SessionCookie)
	c.CookieName = envStr("OTTO_COOKIE_NAME", c.CookieName)
	c.UserID = envStr("OTTO_USER_ID", c.UserID)
	c.Surface = domain.SessionType(envStr("OTTO_SURFACE", string(c.Surface)))
	c.AutoReconnect = envBool("OTTO_AUTO_RECONNECT", c.AutoReconnect)
	c.ReconnectDelay = envMillis("OTTO_RECONNECT_DELAY_MS", c.ReconnectDelay)
	c.SSEPath = envStr("OTTO_SSE_PATH", c.SSEPath)
	c.SSEMaxRetries = envInt("OTTO_SSE_MAX_RETRIES", c.SSEMaxRetries)
	c.SSERetryDelay = envMillis("OTTO_SSE_RETRY_INTERVAL_MS", c.SSERetryDelay)
	c.FeaturesTTL = envMillis("OTTO_FEATURES_TTL_MS", c.FeaturesTTL)
	c.HTTPTimeout = envMillis("OTTO_HTTP_TIMEOUT_MS", c.HTTPTimeout)
	c.LogLevel = envStr("OTTO_LOG_LEVEL", c.LogLevel)
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.WSURL, is.URL),
		validation.Field(&c.CookieName, validation.Required),
		validation.Field(&c.Surface, validation.In(
			domain.SessionKitchen, domain.SessionRecipeCreator, domain.SessionMealPlanner,
		)),
		validation.Field(&c.ReconnectDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.SSEPath, validation.Required, validation.By(leadingSlash)),
		validation.Field(&c.SSEMaxRetries, validation.Min(0)),
		validation.Field(&c.SSERetryDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.FeaturesTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func leadingSlash(v any) error {
	s, _ := v.(string)
	if !strings.HasPrefix(s, "/") {
		return errors.New("must start with /")
	}
	return nil
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setMillis(dst *time.Duration, ms *int) {
	if ms != nil {
		*dst = time.Duration(*ms) * time.Millisecond
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envMillis(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}
