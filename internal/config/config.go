package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds the process-wide configuration. It is loaded once at startup
// and treated as read-only afterwards.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Paper Feed"`
	Port    string `env:"PORT" envDefault:"8080"`
	Env     string `env:"ENV" envDefault:"DEV"`

	// Remote instance and the OAuth client registered with it. The redirect
	// URI defaults to the out-of-band target: the instance displays the
	// authorization code to the user instead of redirecting back to us.
	InstanceURL  string `env:"INSTANCE_URL,required,notEmpty"`
	ClientID     string `env:"CLIENT_ID,required,notEmpty"`
	ClientSecret string `env:"CLIENT_SECRET,required,notEmpty"`
	RedirectURI  string `env:"CALLBACK_URL" envDefault:"urn:ietf:wg:oauth:2.0:oob"`
	Scope        string `env:"OAUTH_SCOPE" envDefault:"read"`

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// RedisURL selects the redis-backed session store when set. Empty means
	// sessions live in process memory.
	RedisURL string `env:"REDIS_URL"`

	PageSize int `env:"TIMELINE_PAGE_SIZE" envDefault:"10"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] env.Parse")
	}

	cfg.InstanceURL = strings.TrimRight(strings.TrimSpace(cfg.InstanceURL), "/")
	if !strings.HasPrefix(cfg.InstanceURL, "http://") && !strings.HasPrefix(cfg.InstanceURL, "https://") {
		cfg.InstanceURL = "https://" + cfg.InstanceURL
	}

	if cfg.PageSize <= 0 {
		return Config{}, errors.New("[config.Load] TIMELINE_PAGE_SIZE must be positive")
	}

	return cfg, nil
}

// MustLoad is Load for program startup, where a bad environment is fatal.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Addr returns the listen address in ":port" form.
func (c Config) Addr() string {
	port := c.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// IsDev reports whether the server runs in the development environment.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, "DEV")
}
