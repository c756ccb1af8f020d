// @title           Account Service API
// @version         1.0
// @description     Account registration, login and administration with role-based route permissions.
// @host            localhost:8080
// @BasePath        /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/authsec/account-system/docs"
	"github.com/authsec/account-system/internal/api"
	"github.com/authsec/account-system/internal/api/cookie"
	"github.com/authsec/account-system/internal/api/handler"
	"github.com/authsec/account-system/internal/core/ports"
	"github.com/authsec/account-system/internal/core/service"
	"github.com/authsec/account-system/internal/infrastructure/bootstrap"
	"github.com/authsec/account-system/internal/infrastructure/crypto"
	mongostore "github.com/authsec/account-system/internal/infrastructure/db/mongo"
	redisstore "github.com/authsec/account-system/internal/infrastructure/db/redis"
	"github.com/authsec/account-system/internal/infrastructure/oauth"
	"github.com/authsec/account-system/internal/pkg/config"
	"github.com/authsec/account-system/internal/security"
	"github.com/authsec/account-system/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Level: "error"})
		l.Fatal().Err(err).Msg("config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "account-system",
	})
	log.Info().Str("env", cfg.Env).Msg("config loaded, connecting to MongoDB and Redis...")

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo")
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}

	users := mongostore.NewUserRepository(db)
	roles := mongostore.NewRoleRepository(db)
	hasher := crypto.NewBcryptHasher(cfg.Security.BcryptCost)

	seeder := bootstrap.NewSeeder(users, roles, hasher, logger.Component("bootstrap"))
	if err := seeder.Run(ctx, bootstrap.AdminAccount{
		Username: cfg.Bootstrap.AdminUsername,
		Password: cfg.Bootstrap.AdminPassword,
	}); err != nil {
		log.Fatal().Err(err).Msg("bootstrap")
	}

	accounts := service.NewAccountService(users, roles, hasher, nil, log)
	authenticator := security.NewAuthenticator(accounts, hasher, log)

	var providers []ports.IdentityProvider
	if cfg.OAuthEnabled() {
		providers = append(providers, oauth.NewProvider(oauth.Config{
			Name:          cfg.OAuth.Provider,
			ClientID:      cfg.OAuth.ClientID,
			ClientSecret:  cfg.OAuth.ClientSecret,
			AuthURL:       cfg.OAuth.AuthURL,
			TokenURL:      cfg.OAuth.TokenURL,
			UserInfoURL:   cfg.OAuth.UserInfoURL,
			RedirectURL:   cfg.OAuth.RedirectURL,
			Scopes:        cfg.OAuth.Scopes,
			UsernameField: cfg.OAuth.UsernameField,
		}))
		log.Info().Str("provider", cfg.OAuth.Provider).Msg("third-party login enabled")
	}

	router := api.NewRouter(api.Deps{
		Accounts:      accounts,
		Authenticator: authenticator,
		Sessions:      redisstore.NewSessionStore(rdb, cfg.Session.TTL),
		RememberMe:    security.NewRememberMe(cfg.RememberMe.Key, cfg.RememberMe.TTL),
		Cookies: &cookie.Jar{
			SessionName:    cfg.Session.CookieName,
			RememberMeName: security.RememberMeCookie,
			SessionTTL:     cfg.Session.TTL,
			RememberMeTTL:  cfg.RememberMe.TTL,
			Secure:         cfg.Security.CookieSecure,
		},
		Policy:    security.DefaultPolicy(),
		Providers: providers,
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
		StaticDir: cfg.StaticDir,
		Log:       log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
	log.Info().Msg("stopped")
}
