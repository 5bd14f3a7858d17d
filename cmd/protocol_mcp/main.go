// Package main runs the protocol MCP server over stdio (for local assistant use).
// The same MCP server is also mounted on the main service at /mcp over HTTP
// when mcp_enabled is set.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/2beens/protocolengine/internal"
	"github.com/2beens/protocolengine/internal/config"
	"github.com/2beens/protocolengine/internal/protocol"
	protocolmcp "github.com/2beens/protocolengine/internal/protocol/mcp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, _, err := internal.OpenStore(ctx, cfg, false)
	if err != nil {
		log.Fatalf("open protocol store: %v", err)
	}

	logger := log.WithField("service", "protocol-mcp")
	registry, err := protocol.NewRegistry(ctx, store, logger, nil)
	if err != nil {
		log.Fatalf("load protocols: %v", err)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			log.Errorf("close protocol store: %v", err)
		}
	}()

	service := protocol.NewService(registry, logger, nil)
	server := protocolmcp.NewServer(service, "stdio")

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Errorf("mcp server: %v", err)
	}
}
