package main

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/junkd0g/vgcharts/internal/config"
	"github.com/junkd0g/vgcharts/internal/logging"
	"github.com/junkd0g/vgcharts/internal/tools"
)

func main() {
	path := os.Getenv("VGCHARTS_CONFIG")
	if path == "" {
		path = "vgcharts.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, false)
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	s := server.NewMCPServer(
		"vgcharts",
		"1.0.0",
	)

	tools.Register(s, tools.New(cfg, logger))

	logger.Info("Serving MCP over stdio", zap.String("config", path))
	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
