package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/binder/internal/config"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/ops"
	"github.com/hpungsan/binder/internal/record"
)

// maxStdinBytes bounds entry and note content read from a pipe.
const maxStdinBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "binder",
		Usage:   "Personal record keeper",
		Version: Version,
		Commands: []*cli.Command{
			createNotebookCmd(db),
			renameNotebookCmd(db),
			setNotebookStatusCmd(db),
			listNotebooksCmd(db),
			createEntryCmd(db, cfg),
			listEntriesCmd(db),
			createNoteCmd(db, cfg),
			listNotesCmd(db),
			createTagCmd(db),
			listTagsCmd(db),
			attachTagCmd(db),
			detachTagCmd(db),
			renameTagCmd(db),
			mergeTagsCmd(db),
			deleteTagCmd(db),
			searchCmd(db),
			searchTagCmd(db),
			exportCmd(db, cfg),
			importCmd(db),
			backupCmd(db, cfg),
			restoreCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createNotebookCmd creates the create-notebook command.
func createNotebookCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "create-notebook",
		Usage:     "Create a notebook",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Notebook description"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CreateNotebookInput{
				Name: c.Args().First(),
			}
			if desc := c.String("description"); desc != "" {
				input.Description = &desc
			}

			output, err := ops.CreateNotebook(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// renameNotebookCmd creates the rename-notebook command.
func renameNotebookCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "rename-notebook",
		Usage:     "Rename a notebook",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "new-name", Required: true, Usage: "New notebook name"},
		},
		Action: func(c *cli.Context) error {
			input := ops.RenameNotebookInput{
				Name:    c.Args().First(),
				NewName: c.String("new-name"),
			}

			output, err := ops.RenameNotebook(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// setNotebookStatusCmd creates the set-notebook-status command.
func setNotebookStatusCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "set-notebook-status",
		Usage:     "Archive or reactivate a notebook",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Required: true, Usage: "New status: active|archived"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SetNotebookStatusInput{
				Name:   c.Args().First(),
				Status: record.NotebookStatus(c.String("status")),
			}

			output, err := ops.SetNotebookStatus(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listNotebooksCmd creates the list-notebooks command.
func listNotebooksCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list-notebooks",
		Usage: "List notebooks",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-archived", Usage: "Include archived notebooks"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListNotebooksInput{
				IncludeArchived: c.Bool("include-archived"),
			}

			output, err := ops.ListNotebooks(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// createEntryCmd creates the create-entry command.
func createEntryCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "create-entry",
		Usage:     "Create an entry (content may be piped via stdin)",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "notebook", Aliases: []string{"n"}, Usage: "Notebook to file the entry under"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Entry content (default: read from stdin if piped)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringSliceFlag{Name: "attach", Aliases: []string{"a"}, Usage: "File to attach (repeatable, globs allowed)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CreateEntryInput{
				Title:   c.Args().First(),
				Content: c.String("content"),
			}

			// Read content from stdin if piped and no --content given
			if input.Content == "" && stdinHasData() {
				content, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Content = content
			}

			if notebook := c.String("notebook"); notebook != "" {
				input.Notebook = &notebook
			}
			if tags := c.String("tags"); tags != "" {
				input.Tags = parseList(tags)
			}
			if attach := c.StringSlice("attach"); len(attach) > 0 {
				paths, err := expandAttachments(attach)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Attachments = paths
			}

			output, err := ops.CreateEntry(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listEntriesCmd creates the list-entries command.
func listEntriesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list-entries",
		Usage: "List entries",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "notebook", Aliases: []string{"n"}, Usage: "Filter by notebook"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Filter by tag"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListEntriesInput{}

			if notebook := c.String("notebook"); notebook != "" {
				input.Notebook = &notebook
			}
			if tag := c.String("tag"); tag != "" {
				input.Tag = &tag
			}

			output, err := ops.ListEntries(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// createNoteCmd creates the create-note command.
func createNoteCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "create-note",
		Usage: "Add a note to an entry (content may be piped via stdin)",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "entry-id", Usage: "Target entry id"},
			&cli.StringFlag{Name: "entry-title", Usage: "Target entry title (alternative to --entry-id)"},
			&cli.StringFlag{Name: "notebook", Aliases: []string{"n"}, Usage: "Notebook scope for --entry-title"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Note content (default: read from stdin if piped)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringSliceFlag{Name: "attach", Aliases: []string{"a"}, Usage: "File to attach (repeatable, globs allowed)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CreateNoteInput{
				EntryTitle: c.String("entry-title"),
				Content:    c.String("content"),
			}

			if c.IsSet("entry-id") {
				id := c.Int64("entry-id")
				input.EntryID = &id
			}
			if notebook := c.String("notebook"); notebook != "" {
				input.Notebook = &notebook
			}

			// Read content from stdin if piped and no --content given
			if input.Content == "" && stdinHasData() {
				content, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Content = content
			}

			if tags := c.String("tags"); tags != "" {
				input.Tags = parseList(tags)
			}
			if attach := c.StringSlice("attach"); len(attach) > 0 {
				paths, err := expandAttachments(attach)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Attachments = paths
			}

			output, err := ops.CreateNote(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listNotesCmd creates the list-notes command.
func listNotesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list-notes",
		Usage: "List notes, optionally restricted to one entry",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "entry-id", Usage: "Filter by entry id"},
			&cli.StringFlag{Name: "entry-title", Usage: "Filter by entry title"},
			&cli.StringFlag{Name: "notebook", Aliases: []string{"n"}, Usage: "Notebook scope for --entry-title"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListNotesInput{
				EntryTitle: c.String("entry-title"),
			}

			if c.IsSet("entry-id") {
				id := c.Int64("entry-id")
				input.EntryID = &id
			}
			if notebook := c.String("notebook"); notebook != "" {
				input.Notebook = &notebook
			}

			output, err := ops.ListNotes(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// createTagCmd creates the create-tag command.
func createTagCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "create-tag",
		Usage:     "Create a tag (no-op if it already exists)",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Tag description"},
		},
		Action: func(c *cli.Context) error {
			input := ops.EnsureTagInput{
				Name: c.Args().First(),
			}
			if desc := c.String("description"); desc != "" {
				input.Description = &desc
			}

			output, err := ops.EnsureTag(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listTagsCmd creates the list-tags command.
func listTagsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list-tags",
		Usage: "List tags with usage counts",
		Action: func(c *cli.Context) error {
			output, err := ops.ListTags(c.Context, db, ops.ListTagsInput{})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// attachTagCmd creates the attach-tag command.
func attachTagCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "attach-tag",
		Usage:     "Attach a tag to a notebook, entry, or note",
		ArgsUsage: "<tag>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "notebook", Aliases: []string{"n"}, Usage: "Target notebook name"},
			&cli.Int64Flag{Name: "entry-id", Usage: "Target entry id"},
			&cli.Int64Flag{Name: "note-id", Usage: "Target note id"},
		},
		Action: func(c *cli.Context) error {
			input := ops.AttachTagInput{
				Tag:      c.Args().First(),
				Notebook: c.String("notebook"),
			}

			if c.IsSet("entry-id") {
				id := c.Int64("entry-id")
				input.EntryID = &id
			}
			if c.IsSet("note-id") {
				id := c.Int64("note-id")
				input.NoteID = &id
			}

			output, err := ops.AttachTag(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// detachTagCmd creates the detach-tag command.
func detachTagCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "detach-tag",
		Usage:     "Detach a tag from a notebook, entry, or note",
		ArgsUsage: "<tag>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "notebook", Aliases: []string{"n"}, Usage: "Target notebook name"},
			&cli.Int64Flag{Name: "entry-id", Usage: "Target entry id"},
			&cli.Int64Flag{Name: "note-id", Usage: "Target note id"},
		},
		Action: func(c *cli.Context) error {
			input := ops.DetachTagInput{
				Tag:      c.Args().First(),
				Notebook: c.String("notebook"),
			}

			if c.IsSet("entry-id") {
				id := c.Int64("entry-id")
				input.EntryID = &id
			}
			if c.IsSet("note-id") {
				id := c.Int64("note-id")
				input.NoteID = &id
			}

			output, err := ops.DetachTag(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// renameTagCmd creates the rename-tag command.
func renameTagCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "rename-tag",
		Usage:     "Rename a tag everywhere it is used",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "new-name", Required: true, Usage: "New tag name"},
		},
		Action: func(c *cli.Context) error {
			input := ops.RenameTagInput{
				Name:    c.Args().First(),
				NewName: c.String("new-name"),
			}

			output, err := ops.RenameTag(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// mergeTagsCmd creates the merge-tags command.
func mergeTagsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "merge-tags",
		Usage: "Fold several tags into one",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sources", Required: true, Usage: "Comma-separated tags to merge"},
			&cli.StringFlag{Name: "new-tag", Required: true, Usage: "Tag receiving the associations (created if missing)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.MergeTagsInput{
				Sources: parseList(c.String("sources")),
				NewTag:  c.String("new-tag"),
			}

			output, err := ops.MergeTags(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteTagCmd creates the delete-tag command.
func deleteTagCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete-tag",
		Usage:     "Delete a tag and all of its associations",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			input := ops.DeleteTagInput{
				Name: c.Args().First(),
			}

			output, err := ops.DeleteTag(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search entries and notes by keyword",
		ArgsUsage: "<keyword>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scope", Aliases: []string{"s"}, Value: "both", Usage: "Search scope: entries|notes|both"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Restrict results to a tag"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SearchInput{
				Keyword: c.Args().First(),
				Scope:   ops.Scope(c.String("scope")),
			}

			if tag := c.String("tag"); tag != "" {
				input.Tag = &tag
			}

			output, err := ops.Search(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchTagCmd creates the search-tag command.
func searchTagCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search-tag",
		Usage:     "List everything carrying a tag",
		ArgsUsage: "<tag>",
		Action: func(c *cli.Context) error {
			input := ops.SearchTagInput{
				Tag: c.Args().First(),
			}

			output, err := ops.SearchTag(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all data to a JSON or HTML document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Export format: json|html"},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "Output directory (default: configured export dir)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Format: c.String("format"),
			}

			if dir := c.String("output-dir"); dir != "" {
				input.OutputDir = &dir
			}

			output, err := ops.Export(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import data from a JSON export document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "skip", Usage: "Collision mode: skip|error"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			}

			output, err := ops.Import(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// backupCmd creates the backup command.
func backupCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Write a zip archive of the database and attachments",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "Output directory (default: configured backup dir)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.BackupInput{}

			if dir := c.String("output-dir"); dir != "" {
				input.OutputDir = &dir
			}

			output, err := ops.Backup(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// restoreCmd creates the restore command. It takes no database handle:
// main runs restore before opening the database, because restore
// replaces the database file.
func restoreCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Restore the database and attachments from a backup archive",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Backup archive path"},
		},
		Action: func(c *cli.Context) error {
			input := ops.RestoreInput{
				Path: c.String("path"),
			}

			output, err := ops.Restore(c.Context, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if binderErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", binderErr.Code, binderErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin, refusing input past limit bytes.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin input exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseList splits a comma-separated string into a slice of names.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		n := strings.TrimSpace(p)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// expandAttachments resolves attachment arguments, expanding glob
// patterns against the working directory. A pattern matching nothing is
// an error rather than a silently smaller attachment list.
func expandAttachments(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			paths = append(paths, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid attachment pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("attachment pattern %q matched no files", arg)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
