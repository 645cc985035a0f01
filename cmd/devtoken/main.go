package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
	"github.com/Adel-MESRATI/Nexus-AI/internal/middleware"
	"github.com/Adel-MESRATI/Nexus-AI/internal/session"
)

func main() {
	var (
		subFlag     string
		ttlFlag     time.Duration
		sessionFlag bool
	)
	flag.StringVar(&subFlag, "sub", "", "user id to issue the token for")
	flag.DurationVar(&ttlFlag, "ttl", 24*time.Hour, "token lifetime")
	flag.BoolVar(&sessionFlag, "session", false, "create an opaque Redis session instead of a signed token")
	flag.Parse()

	_ = godotenv.Load()

	sub := strings.TrimSpace(subFlag)
	if sub == "" {
		exitWithError(errors.New("-sub is required"))
	}
	if ttlFlag <= 0 {
		exitWithError(errors.New("-ttl must be positive"))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").Output(os.Stderr).With().Str("cmd", "devtoken").Logger()

	if sessionFlag {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			exitWithError(err)
		}
		if client == nil {
			exitWithError(errors.New("REDIS_ADDR is required for -session"))
		}
		defer client.Close()

		id, err := session.NewStore(client, ttlFlag).Create(ctx, sub)
		if err != nil {
			exitWithError(err)
		}
		logger.Info().Str("sub", sub).Dur("ttl", ttlFlag).Msg("session created")
		fmt.Println(id)
		return
	}

	now := time.Now()
	token, err := middleware.SignJWT(cfg.JWTSecret, middleware.TokenClaims{
		Sub: sub,
		Iat: now.Unix(),
		Exp: now.Add(ttlFlag).Unix(),
	})
	if err != nil {
		exitWithError(err)
	}
	logger.Info().Str("sub", sub).Time("expires_at", now.Add(ttlFlag)).Msg("token signed")
	fmt.Println(token)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "devtoken:", err)
	os.Exit(1)
}
