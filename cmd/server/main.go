package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/evanhutnik/movesuggest-service/internal/common"
	"github.com/evanhutnik/movesuggest-service/internal/config"
	"github.com/evanhutnik/movesuggest-service/internal/suggest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := common.NewLogger(cfg.Environment)
	defer logger.Sync()

	s := suggest.New(cfg, suggest.LoggerOption(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		logger.Errorw("server stopped", "error", err.Error())
		os.Exit(1)
	}
}
