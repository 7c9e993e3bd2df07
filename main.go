package main

import (
	"flag"
	"net/http"
	"os"

	"go.uber.org/zap"

	"grid-planner/config"
	"grid-planner/grid"
	"grid-planner/solve"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	layoutPath := flag.String("layout", "", "path to a YAML layout, overrides [grid] layout")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			os.Stderr.WriteString(err.Error() + "\n")
			os.Exit(1)
		}
	}
	if *layoutPath != "" {
		cfg.Grid.Layout = *layoutPath
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	layout, err := cfg.BuildGrid()
	if err != nil {
		log.Fatal("failed to build grid", zap.Error(err))
	}
	g := layout.Grid
	log.Info("grid ready",
		zap.Int("width", g.Width()),
		zap.Int("height", g.Height()),
		zap.Float64("cellSize", g.CellSize()),
		zap.Int("walls", g.WallCount()),
		zap.String("layout", cfg.Grid.Layout))
	if layout.Start != nil && layout.Goal != nil {
		log.Info("layout endpoints",
			zap.Float64("startX", layout.Start[0]), zap.Float64("startY", layout.Start[1]),
			zap.Float64("goalX", layout.Goal[0]), zap.Float64("goalY", layout.Goal[1]))
	}

	shared := grid.NewShared(g)
	astar := solve.NewAnyAngle(shared, cfg.AnyAngle(g.CellSize()), solve.WithLogger(log.Named("astar")))
	colony := solve.NewColony(shared, cfg.Colony(), solve.WithLogger(log.Named("aco")))
	srv := newPlannerServer(shared, astar, colony, solve.NewTimers(), log, cfg.Server.SimplifyEpsilon)

	log.Info("server starting",
		zap.String("addr", cfg.Server.BindAddress),
		zap.Strings("endpoints", []string{
			"POST /route",
			"GET  /walls",
			"POST /walls",
			"POST /reset",
			"GET  /health",
		}))

	if err := http.ListenAndServe(cfg.Server.BindAddress, srv.routes()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
