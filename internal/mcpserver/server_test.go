package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/okvist/miniref/internal/notestore"
	"github.com/okvist/miniref/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	store, dir := testutil.NewStore(t)
	return New(store), dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "invalidate_cache":
		result, err = srv.invalidateCache(ctx, req)
	case "get_note_contract":
		result, err = srv.getNoteContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListNotesTool(t *testing.T) {
	srv, dir := testServer(t)
	testutil.WriteNote(t, dir, "a", "Alpha", "first")
	testutil.WriteNote(t, dir, "b", "Beta", "second")

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"id": "a"`) || !strings.Contains(text, `"id": "b"`) {
		t.Errorf("list missing ids: %q", text)
	}
	if strings.Contains(text, "content") {
		t.Errorf("list should carry metadata only, got %q", text)
	}
}

func TestGetNoteTool(t *testing.T) {
	srv, dir := testServer(t)
	testutil.WriteNote(t, dir, "hello", "Hello", "# Hi")

	r := callTool(t, srv, "get_note", map[string]interface{}{"id": "hello"})
	text := resultText(r)
	if !strings.Contains(text, `"title": "Hello"`) {
		t.Errorf("get result = %q", text)
	}
	if !strings.Contains(text, "<h1>Hi</h1>") {
		t.Errorf("content not rendered: %q", text)
	}
}

func TestGetNoteTool_Missing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestGetNoteTool_NoID(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without id argument")
	}
}

func TestInvalidateCacheTool(t *testing.T) {
	srv, dir := testServer(t)
	testutil.WriteNote(t, dir, "c", "C", "body")
	_ = callTool(t, srv, "get_note", map[string]interface{}{"id": "c"})

	r := callTool(t, srv, "invalidate_cache", map[string]interface{}{"id": "c"})
	if resultText(r) != "invalidated: c" {
		t.Errorf("invalidate result = %q", resultText(r))
	}

	r = callTool(t, srv, "invalidate_cache", map[string]interface{}{})
	if resultText(r) != "cache cleared" {
		t.Errorf("clear result = %q", resultText(r))
	}

	// Note still readable afterwards.
	r = callTool(t, srv, "get_note", map[string]interface{}{"id": "c"})
	if r.IsError {
		t.Error("get after invalidate failed")
	}
}

func TestGetNoteContractTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Note Format Contract") {
		t.Errorf("contract result = %q", resultText(r))
	}
}

func TestReadNoteFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected contents type %T", contents[0])
	}
	if tc.URI != "miniref://note-format" || tc.MIMEType != "text/markdown" {
		t.Errorf("resource uri/mime = %q/%q", tc.URI, tc.MIMEType)
	}
}

func TestServerConstruction(t *testing.T) {
	dir := t.TempDir()
	store, err := notestore.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	srv := New(store)
	if srv.MCPServer() == nil {
		t.Error("underlying MCP server is nil")
	}
}
