package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Descriptions are written for the model on the other
// side of the wire: they spell out reference rules (names vs ids, tag
// folding) that the schema alone cannot carry.

var notebookCreateToolDef = mcp.NewTool("notebook_create",
	mcp.WithDescription("Create a notebook. Notebook names are unique and case-sensitive."),
	mcp.WithString("name", mcp.Required(),
		mcp.Description("Notebook name, e.g. 'Garden'. Must not collide with an existing notebook."),
	),
	mcp.WithString("description",
		mcp.Description("Optional free-form description."),
	),
)

var notebookRenameToolDef = mcp.NewTool("notebook_rename",
	mcp.WithDescription("Rename a notebook. Entries keep pointing at it; only the name changes."),
	mcp.WithString("name", mcp.Required(),
		mcp.Description("Current notebook name."),
	),
	mcp.WithString("new_name", mcp.Required(),
		mcp.Description("New notebook name. Must not collide with another notebook."),
	),
)

var notebookSetStatusToolDef = mcp.NewTool("notebook_set_status",
	mcp.WithDescription("Archive or reactivate a notebook. Archived notebooks refuse new entries but stay readable; notes can still be added to their existing entries."),
	mcp.WithString("name", mcp.Required(),
		mcp.Description("Notebook name."),
	),
	mcp.WithString("status", mcp.Required(),
		mcp.Description("Target status."),
		mcp.Enum("active", "archived"),
	),
)

var notebookListToolDef = mcp.NewTool("notebook_list",
	mcp.WithDescription("List notebooks in creation order. Archived notebooks are hidden unless include_archived is set."),
	mcp.WithBoolean("include_archived",
		mcp.Description("Include archived notebooks (default false)."),
	),
)

var entryCreateToolDef = mcp.NewTool("entry_create",
	mcp.WithDescription("Create an entry, optionally inside a notebook. Titles are unique within a notebook; entries without a notebook have no such rule. Tags are created on first use."),
	mcp.WithString("title", mcp.Required(),
		mcp.Description("Entry title."),
	),
	mcp.WithString("content",
		mcp.Description("Entry body, markdown welcome."),
	),
	mcp.WithString("notebook",
		mcp.Description("Notebook name to file the entry under. Omit for an unattached entry."),
	),
	mcp.WithArray("tags",
		mcp.Description("Tag names to attach. Matching is case-insensitive."),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("attachments",
		mcp.Description("Paths of files to copy into managed storage and attach."),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

var entryListToolDef = mcp.NewTool("entry_list",
	mcp.WithDescription("List entries with their tags and attachments, oldest first. Filter by notebook, by tag, or both."),
	mcp.WithString("notebook",
		mcp.Description("Only entries in this notebook."),
	),
	mcp.WithString("tag",
		mcp.Description("Only entries carrying this tag."),
	),
)

var noteCreateToolDef = mcp.NewTool("note_create",
	mcp.WithDescription("Add a note to an entry. Reference the entry by entry_id, or by entry_title (optionally scoped with notebook when the title appears in several places)."),
	mcp.WithString("content", mcp.Required(),
		mcp.Description("Note text."),
	),
	mcp.WithNumber("entry_id",
		mcp.Description("Entry id. Use either this or entry_title, not both."),
	),
	mcp.WithString("entry_title",
		mcp.Description("Entry title. Ambiguous titles are rejected; add notebook to disambiguate."),
	),
	mcp.WithString("notebook",
		mcp.Description("Notebook scope for entry_title."),
	),
	mcp.WithArray("tags",
		mcp.Description("Tag names to attach to the note."),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("attachments",
		mcp.Description("Paths of files to copy into managed storage and attach."),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

var noteListToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List notes, oldest first. Scope to one entry by entry_id or entry_title; omit both to list every note."),
	mcp.WithNumber("entry_id",
		mcp.Description("Entry id. Use either this or entry_title, not both."),
	),
	mcp.WithString("entry_title",
		mcp.Description("Entry title. Ambiguous titles are rejected; add notebook to disambiguate."),
	),
	mcp.WithString("notebook",
		mcp.Description("Notebook scope for entry_title."),
	),
)

var tagEnsureToolDef = mcp.NewTool("tag_ensure",
	mcp.WithDescription("Create a tag, or return the existing one. Tag identity is case-insensitive ('ToDo' and 'todo' are the same tag); the first spelling seen is kept for display."),
	mcp.WithString("name", mcp.Required(),
		mcp.Description("Tag name."),
	),
	mcp.WithString("description",
		mcp.Description("Optional description, only applied when the tag is created."),
	),
)

var tagAttachToolDef = mcp.NewTool("tag_attach",
	mcp.WithDescription("Attach a tag to exactly one target: a notebook (by name), an entry (by id), or a note (by id). The tag is created if it does not exist yet."),
	mcp.WithString("tag", mcp.Required(),
		mcp.Description("Tag name."),
	),
	mcp.WithString("notebook",
		mcp.Description("Notebook name to tag."),
	),
	mcp.WithNumber("entry_id",
		mcp.Description("Entry id to tag."),
	),
	mcp.WithNumber("note_id",
		mcp.Description("Note id to tag."),
	),
)

var tagDetachToolDef = mcp.NewTool("tag_detach",
	mcp.WithDescription("Detach a tag from exactly one target: a notebook (by name), an entry (by id), or a note (by id). Detaching a tag that was not attached reports detached=false."),
	mcp.WithString("tag", mcp.Required(),
		mcp.Description("Tag name. Must exist."),
	),
	mcp.WithString("notebook",
		mcp.Description("Notebook name to untag."),
	),
	mcp.WithNumber("entry_id",
		mcp.Description("Entry id to untag."),
	),
	mcp.WithNumber("note_id",
		mcp.Description("Note id to untag."),
	),
)

var tagRenameToolDef = mcp.NewTool("tag_rename",
	mcp.WithDescription("Rename a tag everywhere it is used. Renaming only the casing updates the display spelling."),
	mcp.WithString("name", mcp.Required(),
		mcp.Description("Current tag name."),
	),
	mcp.WithString("new_name", mcp.Required(),
		mcp.Description("New tag name. Must not collide with a different existing tag."),
	),
)

var tagMergeToolDef = mcp.NewTool("tag_merge",
	mcp.WithDescription("Merge several tags into one: every use of the sources is re-pointed at new_tag and the sources are deleted. new_tag is created if missing and may itself be one of the sources."),
	mcp.WithArray("sources", mcp.Required(),
		mcp.Description("Tags to merge away. All must exist."),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithString("new_tag", mcp.Required(),
		mcp.Description("Destination tag."),
	),
)

var tagDeleteToolDef = mcp.NewTool("tag_delete",
	mcp.WithDescription("Delete a tag and all its attachments to records. The records themselves are untouched."),
	mcp.WithString("name", mcp.Required(),
		mcp.Description("Tag name."),
	),
)

var tagListToolDef = mcp.NewTool("tag_list",
	mcp.WithDescription("List all tags with usage counts, including tags currently attached to nothing."),
)

var searchKeywordToolDef = mcp.NewTool("search_keyword",
	mcp.WithDescription("Case-insensitive substring search over entry titles, entry and note content, and attachment filenames."),
	mcp.WithString("keyword", mcp.Required(),
		mcp.Description("Text to look for. Matched literally, no wildcards."),
	),
	mcp.WithString("scope",
		mcp.Description("What to search (default both)."),
		mcp.Enum("entries", "notes", "both"),
	),
	mcp.WithString("tag",
		mcp.Description("Only return records carrying this tag."),
	),
)

var searchTagToolDef = mcp.NewTool("search_tag",
	mcp.WithDescription("Find every record carrying a tag: notebooks, entries, and notes, grouped by kind."),
	mcp.WithString("tag", mcp.Required(),
		mcp.Description("Tag name."),
	),
)

var exportToolDef = mcp.NewTool("export_data",
	mcp.WithDescription("Write the whole store to a timestamped file. JSON exports round-trip through import_data; HTML exports are a readable snapshot. Attachment files are not copied, only their metadata."),
	mcp.WithString("format",
		mcp.Description("Output format (default json)."),
		mcp.Enum("json", "html"),
	),
	mcp.WithString("output_dir",
		mcp.Description("Directory to write into (default: configured export directory)."),
	),
)

var importToolDef = mcp.NewTool("import_data",
	mcp.WithDescription("Load a JSON export document. In skip mode existing records win and incoming duplicates merge into them; in error mode the first collision aborts with nothing imported."),
	mcp.WithString("path", mcp.Required(),
		mcp.Description("Path to a .json export document."),
	),
	mcp.WithString("mode",
		mcp.Description("Collision behavior (default skip)."),
		mcp.Enum("skip", "error"),
	),
)

var backupToolDef = mcp.NewTool("backup_create",
	mcp.WithDescription("Write a zip archive holding a snapshot of the database plus every attachment file. Restoring from it is a CLI-only operation."),
	mcp.WithString("output_dir",
		mcp.Description("Directory to write into (default: configured backup directory)."),
	),
)
