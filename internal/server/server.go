// SPDX-License-Identifier: Apache-2.0

// Package server exposes the normalizer tools over MCP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/gemaraproj/variants-mcp/internal/config"
	"github.com/gemaraproj/variants-mcp/internal/tool"
	"github.com/gemaraproj/variants-mcp/internal/variant"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg    config.ServerConfig
	log    *zap.Logger
	server *mcp.Server
}

// New builds an MCP server with every tool registered.
func New(cfg config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	newID, err := variant.GeneratorFor(cfg.Normalizer.IDMode, cfg.Normalizer.IDPrefix)
	if err != nil {
		return nil, err
	}

	impl := &mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}
	server := mcp.NewServer(impl, nil)

	normalizer := tool.NewNormalizer(newID, log.Named("tool"))
	mcp.AddTool(server, tool.MetadataNormalizeResponse, normalizer.NormalizeResponse)

	return &Server{
		cfg:    cfg.Server,
		log:    log,
		server: server,
	}, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves until ctx is cancelled or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportStdio, "":
		s.log.Info("serving MCP over stdio", zap.String("name", s.cfg.Name))
		if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport: %w", err)
		}
		return nil
	case config.TransportHTTP:
		return s.runHTTP(ctx)
	default:
		return fmt.Errorf("unsupported transport %q", s.cfg.Transport)
	}
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})
}

func (s *Server) runHTTP(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving MCP over http", zap.String("address", s.cfg.Address))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http transport: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down http transport")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
