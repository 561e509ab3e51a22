// Package mcpserver exposes the search engine as a Model Context Protocol
// tool so agents can look up literals without shelling out.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentic-research/litgrep/api"
	"github.com/agentic-research/litgrep/internal/lang"
	"github.com/agentic-research/litgrep/internal/report"
	"github.com/agentic-research/litgrep/internal/search"
	"github.com/agentic-research/litgrep/internal/source"
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolName is the name the search tool is registered under.
const ToolName = "find_string"

var (
	// ErrOutsideRoot is returned for a directory argument escaping the root.
	ErrOutsideRoot = errors.New("directory must stay inside the served root")
	// ErrNotDirectory is returned for a directory argument naming a file.
	ErrNotDirectory = errors.New("not a directory")
)

// Handler answers find_string calls for one root directory.
type Handler struct {
	Root   string
	Logger *log.Logger
}

// Tool describes find_string.
func Tool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Find string and template literals in source code that match a concrete string. "+
			"Plain strings match when they contain the query; template literals match when the query "+
			"could have been produced by them, with anything in place of each ${...} hole."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The concrete string to look for, e.g. a log line or error message"),
		),
		mcp.WithString("directory",
			mcp.Description("Subdirectory of the served root to search (default: the root)"),
		),
		mcp.WithString("language",
			mcp.Description("Grammar to parse with"),
			mcp.Enum(lang.Names()...),
		),
	)
}

// NewServer returns an MCP server with find_string registered.
func NewServer(version string, h *Handler) *server.MCPServer {
	s := server.NewMCPServer("litgrep", version, server.WithToolCapabilities(false))
	s.AddTool(Tool(), h.FindString)
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func Serve(version string, h *Handler) error {
	return server.ServeStdio(NewServer(version, h))
}

// FindString is the find_string tool handler. Bad arguments and per-search
// failures are reported to the client as tool errors.
func (h *Handler) FindString(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	dir, err := h.resolve(req.GetString("directory", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := lang.Lookup(req.GetString("language", lang.Default))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := []search.Option{}
	if h.Logger != nil {
		opts = append(opts, search.WithLogger(h.Logger))
	}
	e := search.NewEngine(source.Open(dir), l, opts...)

	var hits []api.Hit
	for hit, err := range e.Search(ctx, query) {
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		hits = append(hits, hit)
	}
	return mcp.NewToolResultText(report.Encode(hits)), nil
}

func (h *Handler) resolve(dir string) (string, error) {
	target := h.Root
	if dir != "" && dir != "." {
		if !filepath.IsLocal(dir) {
			return "", fmt.Errorf("%w: %s", ErrOutsideRoot, dir)
		}
		target = filepath.Join(h.Root, dir)
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("search directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return target, nil
}
