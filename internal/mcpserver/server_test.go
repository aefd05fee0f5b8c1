package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/calloway/scribe/internal/cards"
	"github.com/calloway/scribe/internal/testutil"
	"github.com/calloway/scribe/internal/views"
)

func testServer(t *testing.T, files map[string]string) *Server {
	t.Helper()

	dir, store := testutil.TestProject(t)
	for name, content := range files {
		testutil.WriteContent(t, dir, name, content)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := cards.New(store, testutil.ContentDir, testutil.CardsDir, logger, nil)

	chars := views.NewCharacters(store, rec, testutil.ContentDir, logger, nil)
	structure := views.NewStructure(store, testutil.ContentDir, 250, logger, nil)
	markers := views.NewMarkers(store, testutil.ContentDir, logger, nil)
	tasks := views.NewTasks(store, testutil.ContentDir, logger, nil)

	group := views.NewGroup(logger)
	group.Register("characters", chars)
	group.Register("structure", structure)
	group.Register("markers", markers)
	group.Register("tasks", tasks)

	if err := group.RefreshAllWait(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	return New(store, chars, structure, markers, tasks, group)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; call handlers directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_characters":
		result, err = srv.listCharacters(ctx, req)
	case "get_character":
		result, err = srv.getCharacter(ctx, req)
	case "rename_character":
		result, err = srv.renameCharacter(ctx, req)
	case "set_character_category":
		result, err = srv.setCharacterCategory(ctx, req)
	case "project_outline":
		result, err = srv.projectOutline(ctx, req)
	case "list_markers":
		result, err = srv.listMarkers(ctx, req)
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "word_count":
		result, err = srv.wordCount(ctx, req)
	case "read_file":
		result, err = srv.readFile(ctx, req)
	case "refresh":
		result, err = srv.refresh(ctx, req)
	case "get_markup_contract":
		result, err = srv.getMarkupContract(ctx, req)
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

func TestListCharactersTool(t *testing.T) {
	srv := testServer(t, map[string]string{
		"chapter-01.md": "@Elena met @[John Smith]. @Elena smiled.\n",
	})

	text := resultText(callTool(t, srv, "list_characters", nil))
	if !strings.Contains(text, "Elena: 2 mentions in 1 files") {
		t.Errorf("list = %q", text)
	}
	if !strings.Contains(text, "John Smith: 1 mentions in 1 files") {
		t.Errorf("list = %q", text)
	}
}

func TestGetCharacterTool(t *testing.T) {
	srv := testServer(t, map[string]string{"a.md": "@Elena waits.\n"})

	r := callTool(t, srv, "get_character", map[string]interface{}{"name": "Elena"})
	text := resultText(r)
	if !strings.Contains(text, `"name": "Elena"`) {
		t.Errorf("get = %q", text)
	}

	r = callTool(t, srv, "get_character", map[string]interface{}{"name": "Nobody"})
	if !r.IsError {
		t.Error("expected error for unknown character")
	}
}

func TestRenameCharacterTool(t *testing.T) {
	srv := testServer(t, map[string]string{"a.md": "@Elena nods.\n"})

	r := callTool(t, srv, "rename_character", map[string]interface{}{
		"name":     "Elena",
		"new_name": "Elena Marie",
	})
	text := resultText(r)
	if !strings.Contains(text, "1 files rewritten") {
		t.Errorf("rename = %q", text)
	}

	data, err := srv.store.Read("manuscript/a.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "@[Elena Marie] nods.") {
		t.Errorf("content = %q", data)
	}
}

func TestSetCategoryTool(t *testing.T) {
	srv := testServer(t, map[string]string{"a.md": "@Elena.\n"})

	callTool(t, srv, "set_character_category", map[string]interface{}{
		"name":     "Elena",
		"category": "protagonist",
	})
	data, err := srv.store.Read("characters/Elena.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "category: protagonist") {
		t.Errorf("card = %q", data)
	}
}

func TestOutlineAndWordCountTools(t *testing.T) {
	srv := testServer(t, map[string]string{
		"chapter-01.md": "# Act One\n## Chapter 1: Start\nfive words of real prose\n",
	})

	outline := resultText(callTool(t, srv, "project_outline", nil))
	if !strings.Contains(outline, "Act One") {
		t.Errorf("outline = %q", outline)
	}

	counts := resultText(callTool(t, srv, "word_count", nil))
	if !strings.Contains(counts, `"files": 1`) {
		t.Errorf("word_count = %q", counts)
	}
}

func TestMarkersAndTasksTools(t *testing.T) {
	srv := testServer(t, map[string]string{
		"a.md": "#![Theme] duty\n{TODO: tighten pacing}\n",
	})

	markers := resultText(callTool(t, srv, "list_markers", nil))
	if !strings.Contains(markers, "Theme") {
		t.Errorf("markers = %q", markers)
	}

	tasks := resultText(callTool(t, srv, "list_tasks", nil))
	if !strings.Contains(tasks, "TODO") || !strings.Contains(tasks, "tighten pacing") {
		t.Errorf("tasks = %q", tasks)
	}
}

func TestReadFileTool(t *testing.T) {
	srv := testServer(t, map[string]string{"a.md": "raw content\n"})

	text := resultText(callTool(t, srv, "read_file", map[string]interface{}{
		"path": "manuscript/a.md",
	}))
	if text != "raw content\n" {
		t.Errorf("read = %q", text)
	}

	r := callTool(t, srv, "read_file", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing file")
	}
}

func TestRefreshTool(t *testing.T) {
	srv := testServer(t, map[string]string{"a.md": "@Elena.\n"})
	if err := srv.store.Write("manuscript/b.md", []byte("@Marcus joins.\n")); err != nil {
		t.Fatal(err)
	}

	callTool(t, srv, "refresh", nil)
	if _, err := srv.characters.Get("Marcus"); err != nil {
		t.Error("refresh did not pick up the new file")
	}
}

func TestMarkupContractTool(t *testing.T) {
	srv := testServer(t, nil)
	text := resultText(callTool(t, srv, "get_markup_contract", nil))
	if !strings.Contains(text, "@[First Last]") {
		t.Errorf("contract = %q", text)
	}
}
