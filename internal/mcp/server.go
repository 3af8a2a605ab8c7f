package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/binder/internal/config"
)

// KnownGroups lists the tool name prefixes that can be disabled wholesale.
var KnownGroups = []string{"notebook", "entry", "note", "tag", "search", "export", "import", "backup"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"notebook_create": {
		def:     notebookCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotebookCreate },
	},
	"notebook_rename": {
		def:     notebookRenameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotebookRename },
	},
	"notebook_set_status": {
		def:     notebookSetStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotebookSetStatus },
	},
	"notebook_list": {
		def:     notebookListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotebookList },
	},
	"entry_create": {
		def:     entryCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEntryCreate },
	},
	"entry_list": {
		def:     entryListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEntryList },
	},
	"note_create": {
		def:     noteCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteCreate },
	},
	"note_list": {
		def:     noteListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNoteList },
	},
	"tag_ensure": {
		def:     tagEnsureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagEnsure },
	},
	"tag_attach": {
		def:     tagAttachToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagAttach },
	},
	"tag_detach": {
		def:     tagDetachToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagDetach },
	},
	"tag_rename": {
		def:     tagRenameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagRename },
	},
	"tag_merge": {
		def:     tagMergeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagMerge },
	},
	"tag_delete": {
		def:     tagDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagDelete },
	},
	"tag_list": {
		def:     tagListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagList },
	},
	"search_keyword": {
		def:     searchKeywordToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearchKeyword },
	},
	"search_tag": {
		def:     searchTagToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearchTag },
	},
	"export_data": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"import_data": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"backup_create": {
		def:     backupToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackup },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledGroups returns a list of unknown group names from the given list.
func ValidateDisabledGroups(names []string) []string {
	known := make(map[string]bool, len(KnownGroups))
	for _, g := range KnownGroups {
		known[g] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetGroupForTool extracts the group name from a tool name.
// Tool names follow the pattern "group_action" (e.g., "notebook_create" → "notebook").
func GetGroupForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandGroupsToTools returns all tool names belonging to the given groups.
func ExpandGroupsToTools(groups []string) []string {
	if len(groups) == 0 {
		return nil
	}

	groupSet := make(map[string]bool, len(groups))
	for _, g := range groups {
		groupSet[g] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if groupSet[GetGroupForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with binder tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledGroups
// are excluded from registration. Restore has no tool on purpose: it
// replaces the database file and cannot run while the server holds it open.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"binder",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)

	// Build set of disabled tools: first expand groups, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandGroupsToTools(cfg.DisabledGroups) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
