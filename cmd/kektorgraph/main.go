package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorgraph/internal/mcp"
	"github.com/sanonone/kektorgraph/internal/server"
	"github.com/sanonone/kektorgraph/pkg/engine"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file (optional)")
	httpAddr := flag.String("http-addr", "", "Address for the REST API (overrides config, default :9091)")
	snapshotPath := flag.String("snapshot", "", "Path to the .kgr snapshot to load on startup (overrides config)")
	mcpStdio := flag.Bool("mcp", false, "Serve the Model Context Protocol over stdio instead of HTTP")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *snapshotPath != "" {
		cfg.SnapshotPath = *snapshotPath
	}

	eng, err := engine.Open(engine.DefaultOptions(cfg.SnapshotPath))
	if err != nil {
		log.Fatalf("failed to open engine: %v", err)
	}
	defer eng.Close()

	if *mcpStdio {
		// MCP owns stdout; logs go to stderr only.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		mcpServer := mcp.NewMCPServer(eng)
		if err := mcpServer.Run(context.Background(), &sdkmcp.StdioTransport{}); err != nil {
			log.Fatalf("MCP server stopped: %v", err)
		}
		return
	}

	srv, err := server.NewServer(eng, cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-shutdownChan
	srv.Shutdown()
}
