package main

import (
	"flag"
	"strings"

	"go.uber.org/zap"

	"secureentity/extractor/extractor"
	"secureentity/extractor/internal/server"
	"secureentity/extractor/ner"
)

func main() {
	var configPath string
	var addr string
	flag.StringVar(&configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides the config value)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := extractor.LoadConfig(strings.TrimSpace(configPath))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	local, err := ner.NewLocal(cfg.Model)
	if err != nil {
		logger.Fatal("load model", zap.Error(err))
	}
	defer func() { _ = local.Close() }()

	svc, err := extractor.NewService(local, extractor.DefaultRegistry(), cfg, logger)
	if err != nil {
		logger.Fatal("init service", zap.Error(err))
	}

	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.NewServer(svc, logger)
	if err := srv.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
