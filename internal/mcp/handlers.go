package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/binder/internal/config"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/ops"
	"github.com/hpungsan/binder/internal/record"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// decode unmarshals MCP request arguments into a typed struct.
// Avoids unsafe type assertions and handles JSON decoding safely.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// Request types for each tool

// NotebookCreateRequest represents the arguments for notebook_create.
type NotebookCreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// NotebookRenameRequest represents the arguments for notebook_rename.
type NotebookRenameRequest struct {
	Name    string `json:"name"`
	NewName string `json:"new_name"`
}

// NotebookSetStatusRequest represents the arguments for notebook_set_status.
type NotebookSetStatusRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// NotebookListRequest represents the arguments for notebook_list.
type NotebookListRequest struct {
	IncludeArchived bool `json:"include_archived,omitempty"`
}

// EntryCreateRequest represents the arguments for entry_create.
type EntryCreateRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content,omitempty"`
	Notebook    *string  `json:"notebook,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// EntryListRequest represents the arguments for entry_list.
type EntryListRequest struct {
	Notebook *string `json:"notebook,omitempty"`
	Tag      *string `json:"tag,omitempty"`
}

// NoteCreateRequest represents the arguments for note_create.
type NoteCreateRequest struct {
	Content     string   `json:"content"`
	EntryID     *int64   `json:"entry_id,omitempty"`
	EntryTitle  string   `json:"entry_title,omitempty"`
	Notebook    *string  `json:"notebook,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// NoteListRequest represents the arguments for note_list.
type NoteListRequest struct {
	EntryID    *int64  `json:"entry_id,omitempty"`
	EntryTitle string  `json:"entry_title,omitempty"`
	Notebook   *string `json:"notebook,omitempty"`
}

// TagEnsureRequest represents the arguments for tag_ensure.
type TagEnsureRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// TagTargetRequest represents the arguments for tag_attach and tag_detach.
type TagTargetRequest struct {
	Tag      string `json:"tag"`
	Notebook string `json:"notebook,omitempty"`
	EntryID  *int64 `json:"entry_id,omitempty"`
	NoteID   *int64 `json:"note_id,omitempty"`
}

// TagRenameRequest represents the arguments for tag_rename.
type TagRenameRequest struct {
	Name    string `json:"name"`
	NewName string `json:"new_name"`
}

// TagMergeRequest represents the arguments for tag_merge.
type TagMergeRequest struct {
	Sources []string `json:"sources"`
	NewTag  string   `json:"new_tag"`
}

// TagDeleteRequest represents the arguments for tag_delete.
type TagDeleteRequest struct {
	Name string `json:"name"`
}

// SearchKeywordRequest represents the arguments for search_keyword.
type SearchKeywordRequest struct {
	Keyword string  `json:"keyword"`
	Scope   string  `json:"scope,omitempty"`
	Tag     *string `json:"tag,omitempty"`
}

// SearchTagRequest represents the arguments for search_tag.
type SearchTagRequest struct {
	Tag string `json:"tag"`
}

// ExportRequest represents the arguments for export_data.
type ExportRequest struct {
	Format    string  `json:"format,omitempty"`
	OutputDir *string `json:"output_dir,omitempty"`
}

// ImportRequest represents the arguments for import_data.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// BackupRequest represents the arguments for backup_create.
type BackupRequest struct {
	OutputDir *string `json:"output_dir,omitempty"`
}

// Handler implementations

// HandleNotebookCreate handles the notebook_create tool call.
func (h *Handlers) HandleNotebookCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NotebookCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateNotebook(ctx, h.db, ops.CreateNotebookInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNotebookRename handles the notebook_rename tool call.
func (h *Handlers) HandleNotebookRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NotebookRenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RenameNotebook(ctx, h.db, ops.RenameNotebookInput{
		Name:    input.Name,
		NewName: input.NewName,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNotebookSetStatus handles the notebook_set_status tool call.
func (h *Handlers) HandleNotebookSetStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NotebookSetStatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetNotebookStatus(ctx, h.db, ops.SetNotebookStatusInput{
		Name:   input.Name,
		Status: record.NotebookStatus(input.Status),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNotebookList handles the notebook_list tool call.
func (h *Handlers) HandleNotebookList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NotebookListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListNotebooks(ctx, h.db, ops.ListNotebooksInput{
		IncludeArchived: input.IncludeArchived,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleEntryCreate handles the entry_create tool call.
func (h *Handlers) HandleEntryCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EntryCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateEntry(ctx, h.db, h.cfg, ops.CreateEntryInput{
		Title:       input.Title,
		Content:     input.Content,
		Notebook:    input.Notebook,
		Tags:        input.Tags,
		Attachments: input.Attachments,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleEntryList handles the entry_list tool call.
func (h *Handlers) HandleEntryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EntryListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListEntries(ctx, h.db, ops.ListEntriesInput{
		Notebook: input.Notebook,
		Tag:      input.Tag,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteCreate handles the note_create tool call.
func (h *Handlers) HandleNoteCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateNote(ctx, h.db, h.cfg, ops.CreateNoteInput{
		Content:     input.Content,
		EntryID:     input.EntryID,
		EntryTitle:  input.EntryTitle,
		Notebook:    input.Notebook,
		Tags:        input.Tags,
		Attachments: input.Attachments,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNoteList handles the note_list tool call.
func (h *Handlers) HandleNoteList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NoteListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListNotes(ctx, h.db, ops.ListNotesInput{
		EntryID:    input.EntryID,
		EntryTitle: input.EntryTitle,
		Notebook:   input.Notebook,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagEnsure handles the tag_ensure tool call.
func (h *Handlers) HandleTagEnsure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagEnsureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.EnsureTag(ctx, h.db, ops.EnsureTagInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagAttach handles the tag_attach tool call.
func (h *Handlers) HandleTagAttach(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagTargetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AttachTag(ctx, h.db, ops.AttachTagInput{
		Tag:      input.Tag,
		Notebook: input.Notebook,
		EntryID:  input.EntryID,
		NoteID:   input.NoteID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagDetach handles the tag_detach tool call.
func (h *Handlers) HandleTagDetach(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagTargetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DetachTag(ctx, h.db, ops.DetachTagInput{
		Tag:      input.Tag,
		Notebook: input.Notebook,
		EntryID:  input.EntryID,
		NoteID:   input.NoteID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagRename handles the tag_rename tool call.
func (h *Handlers) HandleTagRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagRenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RenameTag(ctx, h.db, ops.RenameTagInput{
		Name:    input.Name,
		NewName: input.NewName,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagMerge handles the tag_merge tool call.
func (h *Handlers) HandleTagMerge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagMergeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.MergeTags(ctx, h.db, ops.MergeTagsInput{
		Sources: input.Sources,
		NewTag:  input.NewTag,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagDelete handles the tag_delete tool call.
func (h *Handlers) HandleTagDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteTag(ctx, h.db, ops.DeleteTagInput{
		Name: input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagList handles the tag_list tool call.
func (h *Handlers) HandleTagList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListTags(ctx, h.db, ops.ListTagsInput{})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearchKeyword handles the search_keyword tool call.
func (h *Handlers) HandleSearchKeyword(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchKeywordRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{
		Keyword: input.Keyword,
		Scope:   ops.Scope(input.Scope),
		Tag:     input.Tag,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearchTag handles the search_tag tool call.
func (h *Handlers) HandleSearchTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchTagRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SearchTag(ctx, h.db, ops.SearchTagInput{
		Tag: input.Tag,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the export_data tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Format:    input.Format,
		OutputDir: input.OutputDir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the import_data tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBackup handles the backup_create tool call.
func (h *Handlers) HandleBackup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BackupRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Backup(ctx, h.db, h.cfg, ops.BackupInput{
		OutputDir: input.OutputDir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if binderErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    binderErr.Code,
			"message": binderErr.Message,
			"status":  binderErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if binderErr.Code != errors.ErrInternal && binderErr.Details != nil {
			errorObj["details"] = binderErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
