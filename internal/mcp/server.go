// Package mcp exposes the planning documents to AI agents as read-only
// MCP tools over stdio.
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/embeddings"
	"github.com/ziadkadry99/ideaflow/internal/similarity"
	"github.com/ziadkadry99/ideaflow/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps configures a Server. Engine and Embedder are optional; the tools
// that need them report an error when they are nil.
type Deps struct {
	IdeasPath   string
	BacklogPath string
	Vocabulary  *backlog.Vocabulary
	Engine      similarity.Engine
	Embedder    embeddings.Embedder
	Logger      *zap.Logger
}

// Server wraps an MCP server that exposes backlog tools. Every call
// re-reads the documents from disk.
type Server struct {
	deps Deps
	log  *zap.Logger
	mcp  *server.MCPServer

	indexOnce sync.Once
	index     *vectordb.Index
	indexErr  error
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps) *Server {
	if deps.Vocabulary == nil {
		deps.Vocabulary = backlog.Spanish
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{deps: deps, log: log}

	s.mcp = server.NewMCPServer(
		"ideaflow",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listPendingIdeasTool, s.handleListPendingIdeas)
	s.mcp.AddTool(getRecordTool, s.handleGetRecord)
	s.mcp.AddTool(checkIdeaTool, s.handleCheckIdea)
	s.mcp.AddTool(nextIDsTool, s.handleNextIDs)
	s.mcp.AddTool(searchBacklogTool, s.handleSearchBacklog)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

// searchIndex lazily creates the embedding index shared by search calls.
func (s *Server) searchIndex() (*vectordb.Index, error) {
	s.indexOnce.Do(func() {
		s.index, s.indexErr = vectordb.NewIndex(s.deps.Embedder)
	})
	return s.index, s.indexErr
}
