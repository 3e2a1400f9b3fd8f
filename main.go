package main

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gamehub/api"
	"gamehub/games/codenames"
	"gamehub/games/pictionary"
	"gamehub/games/pixelwar"
	"gamehub/games/tictactoe"
	"gamehub/metrics"
	"gamehub/tokens"
	"gamehub/util"
	"gamehub/ws"
)

func main() {
	config, err := util.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	maker, err := tokens.NewPasetoMaker(config.TokenKey)
	if err != nil {
		logger.Fatal("token maker", zap.Error(err))
	}

	stats := metrics.NewSet(prometheus.DefaultRegisterer)

	games := []ws.Game{
		pictionary.New(),
		tictactoe.New(),
		codenames.New(),
		pixelwar.New(),
	}

	managers := make([]*ws.Manager, 0, len(games))
	for _, game := range games {
		registry := ws.NewRegistry()
		metrics.RegisterRoomCount(prometheus.DefaultRegisterer, game.Name(), registry.Len)
		managers = append(managers, ws.NewManager(game, registry, logger,
			ws.WithTokenMaker(maker), ws.WithMetrics(stats)))
	}

	server := api.NewServer(config, logger, maker, managers)

	logger.Fatal("server exited", zap.Error(server.Start()))
}
