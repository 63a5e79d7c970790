// Package mcp exposes the consistency engines over the Model Context
// Protocol so agent tooling can audit pages, resolve literals, and switch
// themes without shelling out to the CLI.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/sitespec/pkg/links"
	"github.com/gnana997/sitespec/pkg/mcplog"
	"github.com/gnana997/sitespec/pkg/site"
	"github.com/gnana997/sitespec/pkg/theme"
	"github.com/gnana997/sitespec/pkg/tokens"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for sitespec, exposing audit, token, and
// theme tools over stdio.
type Server struct {
	mcpServer *server.MCPServer
	site      *site.Site
	source    *tokens.Source
	graph     *links.Graph
	selector  *theme.Selector
	logger    *mcplog.Logger // nil disables tool-call logging
}

// NewServer wires the tool handlers over the loaded inputs. logger may be
// nil.
func NewServer(s *site.Site, src *tokens.Source, g *links.Graph, sel *theme.Selector, logger *mcplog.Logger) *Server {
	srv := &Server{
		site:     s,
		source:   src,
		graph:    g,
		selector: sel,
		logger:   logger,
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(srv.loggingMiddleware()))
	}
	srv.mcpServer = server.NewMCPServer("sitespec", serverVersion, opts...)

	srv.mcpServer.AddTools(
		server.ServerTool{Tool: auditSiteTool(), Handler: srv.handleAuditSite},
		server.ServerTool{Tool: resolvePageTool(), Handler: srv.handleResolvePage},
		server.ServerTool{Tool: applyLinksTool(), Handler: srv.handleApplyLinks},
		server.ServerTool{Tool: listTokensTool(), Handler: srv.handleListTokens},
		server.ServerTool{Tool: emitCSSTool(), Handler: srv.handleEmitCSS},
		server.ServerTool{Tool: getThemeTool(), Handler: srv.handleGetTheme},
		server.ServerTool{Tool: setThemeTool(), Handler: srv.handleSetTheme},
	)

	return srv
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// activeTable returns the token table for the currently selected theme.
func (s *Server) activeTable() *tokens.Table {
	if t, ok := s.source.Table(s.selector.Get()); ok {
		return t
	}
	return s.source.Default()
}
