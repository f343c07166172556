package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Build-time variables - inject via ldflags
// Example: go build -ldflags "-X main.buildClientVersion=release-11.10-12-4002057"
var (
	buildClientVersion string // -X main.buildClientVersion=...
)

const (
	fallbackClientVersion = "release-11.10-12-4002057"
	fallbackRegion        = "ap"
)

// Config holds every runtime setting. Values come from the environment (and .env),
// then CLI flags override individual fields.
type Config struct {
	RedirectURI string `env:"REDIRECT_URI" envDefault:"https://playvalorant.com/opt_in"`
	ClientID    string `env:"CLIENT_ID" envDefault:"play-valorant-web-prod"`

	DefaultRegion        string `env:"DEFAULT_REGION" envDefault:"ap"`
	DefaultClientVersion string `env:"CLIENT_VERSION"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	PipelineTimeout time.Duration `env:"PIPELINE_TIMEOUT" envDefault:"90s"`
	LoginTimeout    time.Duration `env:"LOGIN_TIMEOUT" envDefault:"5m"`

	Proxy      string `env:"PROXY"`
	BrowserBin string `env:"BROWSER_BIN"`
	Headless   bool   `env:"HEADLESS" envDefault:"false"`

	LogFile string `env:"LOG_FILE" envDefault:"valshop.log"`
	Debug   bool   `env:"DEBUG" envDefault:"false"`

	Endpoints Endpoints `envPrefix:"ENDPOINT_"`
}

// Endpoints are the vendor URLs the pipeline calls. StorefrontBase is a
// format string receiving the shard code.
type Endpoints struct {
	Version        string `env:"VERSION" envDefault:"https://valorant-api.com/v1/version"`
	Geo            string `env:"GEO" envDefault:"https://riot-geo.pas.si.riotgames.com/pas/v1/product/valorant"`
	UserInfo       string `env:"USERINFO" envDefault:"https://auth.riotgames.com/userinfo"`
	Entitlement    string `env:"ENTITLEMENT" envDefault:"https://entitlements.auth.riotgames.com/api/token/v1"`
	StorefrontBase string `env:"STOREFRONT_BASE" envDefault:"https://pd.%s.a.pvp.net"`
}

// DefaultEndpoints returns the production vendor endpoints.
func DefaultEndpoints() Endpoints {
	var e Endpoints
	_ = env.ParseWithOptions(&e, env.Options{Environment: map[string]string{}})
	return e
}

// LoadConfig reads an optional dotenv file and parses VALSHOP_* variables.
// A missing dotenv file is not an error.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "VALSHOP_"}); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.DefaultClientVersion == "" {
		cfg.DefaultClientVersion = GetClientVersion()
	}
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = fallbackRegion
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot.
func (c Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.PipelineTimeout <= 0 {
		return fmt.Errorf("pipeline timeout must be positive, got %v", c.PipelineTimeout)
	}
	if c.LoginTimeout <= 0 {
		return fmt.Errorf("login timeout must be positive, got %v", c.LoginTimeout)
	}
	if c.Proxy != "" {
		if _, _, ok := parseProxyLine(c.Proxy); !ok {
			return fmt.Errorf("unrecognised proxy format: %q", c.Proxy)
		}
	}
	return nil
}

// GetClientVersion returns the default client version (build-time or fallback).
func GetClientVersion() string {
	if buildClientVersion != "" {
		return buildClientVersion
	}
	return fallbackClientVersion
}
