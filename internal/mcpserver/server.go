// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Scribe tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/calloway/scribe/internal/storage"
	"github.com/calloway/scribe/internal/views"
)

// Server wraps the MCP server with Scribe tools.
type Server struct {
	mcp        *server.MCPServer
	store      storage.Provider
	characters *views.Characters
	structure  *views.Structure
	markers    *views.Markers
	tasks      *views.Tasks
	group      *views.Group
}

// New creates a new MCP server with all Scribe tools registered.
func New(store storage.Provider, characters *views.Characters, structure *views.Structure, markers *views.Markers, tasks *views.Tasks, group *views.Group) *Server {
	s := &Server{
		store:      store,
		characters: characters,
		structure:  structure,
		markers:    markers,
		tasks:      tasks,
		group:      group,
	}

	s.mcp = server.NewMCPServer(
		"Scribe",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_characters",
		mcp.WithDescription("List every character found in the manuscript with mention counts."),
	), s.listCharacters)

	s.mcp.AddTool(mcp.NewTool("get_character",
		mcp.WithDescription("Get one character's card metadata and every mention location."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Canonical character name (case-sensitive)")),
	), s.getCharacter)

	s.mcp.AddTool(mcp.NewTool("rename_character",
		mcp.WithDescription("Rename a character in every content file and its card. "+
			"Mentions use @Name or @[Multi Word] syntax; read the contract first via "+
			"the get_markup_contract tool or the scribe://mention-format resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Current character name")),
		mcp.WithString("new_name", mcp.Required(), mcp.Description("New character name")),
	), s.renameCharacter)

	s.mcp.AddTool(mcp.NewTool("set_character_category",
		mcp.WithDescription("Set the category field on a character's card."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Character name")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category value, e.g. protagonist")),
	), s.setCharacterCategory)

	s.mcp.AddTool(mcp.NewTool("project_outline",
		mcp.WithDescription("Get the manuscript outline tree: acts, chapters, sections, and events."),
	), s.projectOutline)

	s.mcp.AddTool(mcp.NewTool("list_markers",
		mcp.WithDescription("List story markers (#! lines) grouped by category and chapter."),
	), s.listMarkers)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List {TYPE: text} task annotations grouped by type."),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("word_count",
		mcp.WithDescription("Get project word totals: words, estimated pages, and per-file counts."),
	), s.wordCount)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read the raw content of a project file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Project-relative path (e.g. manuscript/chapter-01.md)")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("refresh",
		mcp.WithDescription("Force a full rescan of the manuscript and wait for it to finish."),
	), s.refresh)

	s.mcp.AddTool(mcp.NewTool("get_markup_contract",
		mcp.WithDescription("Returns the Scribe manuscript markup contract. "+
			"Call this before writing content with mentions, markers, or tasks."),
	), s.getMarkupContract)

	// Resource: markup contract.
	s.mcp.AddResource(
		mcp.NewResource("scribe://mention-format", "Manuscript Markup Contract",
			mcp.WithResourceDescription("Mention, marker, and task syntax all content must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMentionFormatResource,
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

func (s *Server) listCharacters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs := s.characters.All()
	if len(recs) == 0 {
		return mcp.NewToolResultText("no characters found"), nil
	}
	var b strings.Builder
	for _, rec := range recs {
		category := ""
		if rec.Meta != nil && rec.Meta.Category != "" {
			category = " [" + rec.Meta.Category + "]"
		}
		fmt.Fprintf(&b, "%s%s: %d mentions in %d files\n", rec.Name, category, rec.Count, rec.FileCount())
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getCharacter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.characters.Get(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	out, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) renameCharacter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newName, err := req.RequireString("new_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.characters.Rename(name, newName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.group.RefreshAll(context.Background())

	msg := fmt.Sprintf("renamed %q to %q: %d files rewritten", name, newName, res.FilesChanged)
	if len(res.FilesFailed) > 0 {
		msg += fmt.Sprintf(", %d files failed: %s", len(res.FilesFailed), strings.Join(res.FilesFailed, ", "))
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) setCharacterCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.characters.SetCategory(name, category); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("category for %q set to %q", name, category)), nil
}

func (s *Server) projectOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree := s.structure.Tree()
	if len(tree) == 0 {
		return mcp.NewToolResultText("no structure found"), nil
	}
	out, _ := json.MarshalIndent(tree, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listMarkers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups := s.markers.Grouped()
	if len(groups) == 0 {
		return mcp.NewToolResultText("no markers found"), nil
	}
	out, _ := json.MarshalIndent(groups, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups := s.tasks.Grouped()
	if len(groups) == 0 {
		return mcp.NewToolResultText("no tasks found"), nil
	}
	out, _ := json.MarshalIndent(groups, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) wordCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.structure.Totals(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) refresh(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.group.RefreshAllWait(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("refreshed"), nil
}

func (s *Server) getMarkupContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MentionFormatContract), nil
}

func (s *Server) readMentionFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "scribe://mention-format",
			MIMEType: "text/markdown",
			Text:     MentionFormatContract,
		},
	}, nil
}
