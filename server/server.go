package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swairshah/zotero-mcp-server/internal/catalog"
	"github.com/swairshah/zotero-mcp-server/internal/config"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
	"github.com/swairshah/zotero-mcp-server/tools"
)

// CreateServer loads configuration, opens the configured catalog backend and
// registers all tools. A backend that cannot be opened is fatal: a server
// that cannot reach its library has nothing to offer.
func CreateServer(log logger.Logger) *mcp.Server {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: %v", err)
	}

	cat, err := openCatalog(cfg, log)
	if err != nil {
		log.Fatal("Failed to open catalog: %v", err)
	}

	return createServerWithCatalog(cat, log)
}

// createServerWithCatalog builds the MCP server around an already-open
// catalog. Split out so tests can inject a stub backend.
func createServerWithCatalog(cat catalog.Catalog, log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "zotero-mcp-server", Version: "v0.1.0"}, nil)

	mcp.AddTool(server, tools.SearchPapersTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.SearchPapersQuery) (*mcp.CallToolResult, *tools.SearchPapersResponse, error) {
		return tools.SearchPapersToolHandler(ctx, req, query, cat, log)
	})

	mcp.AddTool(server, tools.GetPaperTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.GetPaperQuery) (*mcp.CallToolResult, *tools.GetPaperResponse, error) {
		return tools.GetPaperToolHandler(ctx, req, query, cat, log)
	})

	mcp.AddTool(server, tools.GetPaperNotesTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.GetPaperNotesQuery) (*mcp.CallToolResult, *tools.GetPaperNotesResponse, error) {
		return tools.GetPaperNotesToolHandler(ctx, req, query, cat, log)
	})

	mcp.AddTool(server, tools.AddNoteTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.AddNoteQuery) (*mcp.CallToolResult, *tools.AddNoteResponse, error) {
		return tools.AddNoteToolHandler(ctx, req, query, cat, log)
	})

	mcp.AddTool(server, tools.GetPDFContentTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.GetPDFContentQuery) (*mcp.CallToolResult, *tools.GetPDFContentResponse, error) {
		return tools.GetPDFContentToolHandler(ctx, req, query, cat, log)
	})

	mcp.AddTool(server, tools.RequestSummaryTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.RequestSummaryQuery) (*mcp.CallToolResult, *tools.RequestSummaryResponse, error) {
		return tools.RequestSummaryToolHandler(ctx, req, query, cat, log)
	})

	mcp.AddTool(server, tools.SummarizePaperTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.SummarizePaperQuery) (*mcp.CallToolResult, *tools.SummarizePaperResponse, error) {
		return tools.SummarizePaperToolHandler(ctx, req, query, cat, log)
	})

	return server
}

// openCatalog selects the backend from configuration.
func openCatalog(cfg *config.Config, log logger.Logger) (catalog.Catalog, error) {
	switch cfg.Backend {
	case config.BackendDB:
		log.Info("Using direct-storage backend (db: %s)", cfg.DBPath)
		return catalog.NewSQLiteCatalog(cfg.DBPath, log)
	case config.BackendAPI:
		log.Info("Using API-mediated backend (user: %s, local: %v)", cfg.UserID, cfg.LocalAPI)
		return catalog.NewRemoteCatalog(catalog.RemoteConfig{
			UserID:   cfg.UserID,
			APIKey:   cfg.APIKey,
			LocalAPI: cfg.LocalAPI,
		}, log)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
