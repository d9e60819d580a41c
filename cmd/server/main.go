package main

import (
	"context"
	"net/http"

	"github.com/castillofj/touchline/pkg/config"
	"github.com/castillofj/touchline/pkg/logging"
	"github.com/castillofj/touchline/pkg/repositories"
	"github.com/castillofj/touchline/pkg/server"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	logging.Init()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	var repo repositories.Repository
	switch {
	case cfg.PostgresDSN != "":
		repo = repositories.NewPostgresRepository(ctx, cfg.PostgresDSN)
		log.Info().Msg("using postgres repository")
	case cfg.SQLitePath != "":
		repo, err = repositories.NewSQLiteRepository(ctx, cfg.SQLitePath, cfg.MigrationsDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite repository")
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("using sqlite repository")
	default:
		repo = repositories.NewInMemoryRepository()
		log.Info().Msg("using in-memory repository")
	}
	defer repo.Close(ctx)

	srv := server.NewServer(server.NewServerOptions{
		Repository: repo,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Routes()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
