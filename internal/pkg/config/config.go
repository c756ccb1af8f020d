package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	StaticDir string `env:"STATIC_DIR, default=static"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Session    SessionConfig
	RememberMe RememberMeConfig
	Bootstrap  BootstrapConfig
	OAuth      OAuthConfig
	Security   SecurityConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=authsec"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SessionConfig struct {
	CookieName string        `env:"SESSION_COOKIE, default=SESSION"`
	TTL        time.Duration `env:"SESSION_TTL,    default=30m"`
}

// RememberMeConfig holds the fixed key persistent-login tokens are signed with.
type RememberMeConfig struct {
	Key string        `env:"REMEMBER_ME_KEY, required"`
	TTL time.Duration `env:"REMEMBER_ME_TTL, default=336h"`
}

type BootstrapConfig struct {
	AdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME, default=admin"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD, default=admin"`
}

// OAuthConfig describes the third-party identity provider. Login through the
// provider is offered only when ClientID is set.
type OAuthConfig struct {
	Provider      string   `env:"OAUTH_PROVIDER,       default=github"`
	ClientID      string   `env:"OAUTH_CLIENT_ID"`
	ClientSecret  string   `env:"OAUTH_CLIENT_SECRET"`
	AuthURL       string   `env:"OAUTH_AUTH_URL,       default=https://github.com/login/oauth/authorize"`
	TokenURL      string   `env:"OAUTH_TOKEN_URL,      default=https://github.com/login/oauth/access_token"`
	UserInfoURL   string   `env:"OAUTH_USERINFO_URL,   default=https://api.github.com/user"`
	RedirectURL   string   `env:"OAUTH_REDIRECT_URL,   default=http://localhost:8080/login/oauth2/code/github"`
	Scopes        []string `env:"OAUTH_SCOPES,         default=read:user"`
	UsernameField string   `env:"OAUTH_USERNAME_FIELD, default=login"`
}

type SecurityConfig struct {
	CookieSecure bool `env:"COOKIE_SECURE, default=false"`
	BcryptCost   int  `env:"BCRYPT_COST,   default=10"`
}

// OAuthEnabled reports whether a provider has been configured.
func (c *Config) OAuthEnabled() bool {
	return strings.TrimSpace(c.OAuth.ClientID) != ""
}

// IsDevelopment reports whether the process runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
