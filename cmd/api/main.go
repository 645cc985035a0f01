package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Adel-MESRATI/Nexus-AI/internal/http/handlers"
	"github.com/Adel-MESRATI/Nexus-AI/internal/http/httpapi"
	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
	"github.com/Adel-MESRATI/Nexus-AI/internal/infra/jwks"
	"github.com/Adel-MESRATI/Nexus-AI/internal/middleware"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/hf"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/image"
	"github.com/Adel-MESRATI/Nexus-AI/internal/providers/prompt"
	"github.com/Adel-MESRATI/Nexus-AI/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	gateway, err := hf.NewClient(hf.Options{
		Token:          cfg.HFToken,
		BaseURL:        cfg.HFBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.HFRequestTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid inference gateway config")
	}
	if !gateway.HasCredentials() {
		logger.Warn().Msg("HF_TOKEN not set: generation will fail and enhancement falls back to local rules")
	}

	generator := image.NewFluxGenerator(gateway, cfg.HFImageModel, &logger)
	enhancer, err := prompt.NewMistralEnhancer(prompt.MistralOptions{
		Client: gateway,
		Model:  cfg.HFTextModel,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("prompt enhancer fallback")
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build prompt enhancer")
	}

	ctx := context.Background()
	identity := middleware.IdentityOptions{
		Secret:     cfg.JWTSecret,
		CookieName: cfg.SessionCookie,
		Logger:     &logger,
	}
	verifier, err := jwks.NewVerifier(jwks.Options{
		Issuer:   cfg.IdentityIssuer,
		URL:      cfg.IdentityJWKSURL,
		Audience: cfg.IdentityAudience,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid identity provider config")
	}
	if verifier != nil {
		identity.Provider = verifier
		logger.Info().Str("issuer", cfg.IdentityIssuer).Msg("identity provider tokens enabled")
	}
	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
		identity.Sessions = session.NewStore(redisClient, session.DefaultTTL)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("opaque sessions enabled")
	}

	app := handlers.NewApp(generator, enhancer, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Identity:        identity,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		logger.Info().
			Str("image_model", generator.String()).
			Str("text_model", enhancer.String()).
			Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
