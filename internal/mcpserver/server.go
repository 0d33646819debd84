// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only note tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/okvist/miniref/internal/apperr"
	"github.com/okvist/miniref/internal/models"
	"github.com/okvist/miniref/internal/notestore"
)

// Server wraps the MCP server with note tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store
}

// New creates a new MCP server with all tools registered.
func New(store *notestore.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"MiniRef",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List metadata (id, title, tags, references) for every note in the store."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Fetch a single note by id, with its Markdown body rendered to HTML."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (filename stem, no .md extension)")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("invalidate_cache",
		mcp.WithDescription("Drop one note from the render cache so the next read re-renders it, "+
			"or the whole cache when no id is given."),
		mcp.WithString("id", mcp.Description("Optional note id; empty clears the entire cache")),
	), s.invalidateCache)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical note format contract. "+
			"Call this to understand the structure of notes before interpreting them."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("miniref://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note format that all notes follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metas := make([]models.NoteMetadata, 0, len(notes))
	for i := range notes {
		metas = append(metas, notes[i].Metadata())
	}
	out, _ := json.MarshalIndent(metas, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) invalidateCache(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := ""
	if v, err := req.RequireString("id"); err == nil {
		id = v
	}
	if id == "" {
		s.store.ClearCache()
		return mcp.NewToolResultText("cache cleared"), nil
	}
	s.store.Invalidate(id)
	return mcp.NewToolResultText(fmt.Sprintf("invalidated: %s", id)), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "miniref://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
