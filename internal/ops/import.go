package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/hpungsan/binder/internal/db"
	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeSkip  ImportMode = "skip"  // existing records win, incoming duplicates are skipped
	ImportModeError ImportMode = "error" // first collision aborts, nothing is imported
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required, path to a JSON export document
	Mode ImportMode // default: skip
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Mode                ImportMode    `json:"mode"`
	NotebooksImported   int           `json:"notebooks_imported"`
	EntriesImported     int           `json:"entries_imported"`
	NotesImported       int           `json:"notes_imported"`
	TagsImported        int           `json:"tags_imported"`
	AttachmentsImported int           `json:"attachments_imported"`
	Skipped             int           `json:"skipped"`
	Errors              []ImportError `json:"errors"`
}

// ImportError describes one record that could not be imported.
type ImportError struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// importState tracks one import run. Document ids are remapped to store ids
// as rows land, so child records can follow their parents whether the parent
// was inserted or matched an existing row.
type importState struct {
	out         *ImportOutput
	notebookIDs map[int64]int64
	entryIDs    map[int64]int64
	noteIDs     map[int64]int64
	tagIDs      map[int64]int64
}

// errImportAborted signals a collision under ImportModeError. The collision
// itself is reported in the output's Errors list.
var errImportAborted = fmt.Errorf("import aborted")

// Import loads a JSON export document into the store.
//
// Collisions are detected against existing data: notebooks by name, entries
// by title within their notebook, tags by folded name, attachments by id.
// Unattached entries and notes have no uniqueness rule, so only an exact
// match (same parent, content, and creation time) counts as a collision;
// this keeps importing the same document twice from duplicating them.
//
// In skip mode a colliding incoming record is dropped and its children are
// re-pointed at the existing record. In error mode the first collision
// aborts the import and the store is left untouched.
func Import(ctx context.Context, database *sql.DB, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeSkip
	}
	if input.Mode != ImportModeSkip && input.Mode != ImportModeError {
		return nil, errors.NewInvalidRequest("mode must be one of: skip, error")
	}

	path, err := ValidateImportPath(input.Path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}

	var doc record.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid export document: %v", err))
	}
	if doc.SchemaVersion < 1 {
		return nil, errors.NewInvalidRequest("not an export document (missing schema_version)")
	}
	if doc.SchemaVersion > db.CurrentSchemaVersion {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("document schema version %d is newer than supported version %d", doc.SchemaVersion, db.CurrentSchemaVersion))
	}

	st := &importState{
		out:         &ImportOutput{Mode: input.Mode, Errors: []ImportError{}},
		notebookIDs: make(map[int64]int64),
		entryIDs:    make(map[int64]int64),
		noteIDs:     make(map[int64]int64),
		tagIDs:      make(map[int64]int64),
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := importDocument(ctx, tx, &doc, input.Mode, st); err != nil {
		if err == errImportAborted {
			// Rollback leaves the store untouched; report the collision.
			return &ImportOutput{Mode: input.Mode, Errors: st.out.Errors}, nil
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return st.out, nil
}

// skip records a collision or bad record. Under error mode it turns into an
// abort.
func (st *importState) skip(mode ImportMode, e ImportError) error {
	st.out.Errors = append(st.out.Errors, e)
	if mode == ImportModeError {
		return errImportAborted
	}
	st.out.Skipped++
	return nil
}

func importDocument(ctx context.Context, tx *sql.Tx, doc *record.ExportDocument, mode ImportMode, st *importState) error {
	if err := importNotebooks(ctx, tx, doc, mode, st); err != nil {
		return err
	}
	if err := importEntries(ctx, tx, doc, mode, st); err != nil {
		return err
	}
	if err := importNotes(ctx, tx, doc, mode, st); err != nil {
		return err
	}
	if err := importTags(ctx, tx, doc, mode, st); err != nil {
		return err
	}
	if err := importAttachments(ctx, tx, doc, mode, st); err != nil {
		return err
	}
	return importAssociations(ctx, tx, doc, st)
}

func importNotebooks(ctx context.Context, tx *sql.Tx, doc *record.ExportDocument, mode ImportMode, st *importState) error {
	for _, nb := range doc.Notebooks {
		if nb.Name == "" {
			if err := st.skip(mode, ImportError{
				Kind: "notebook", Code: "INVALID_RECORD",
				Message: fmt.Sprintf("notebook %d has no name", nb.ID),
			}); err != nil {
				return err
			}
			continue
		}

		existing, err := db.GetNotebookByName(ctx, tx, nb.Name)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return err
		}
		if existing != nil {
			st.notebookIDs[nb.ID] = existing.ID
			if err := st.skip(mode, ImportError{
				Kind: "notebook", Identifier: nb.Name, Code: "NAME_COLLISION",
				Message: fmt.Sprintf("notebook %q already exists", nb.Name),
			}); err != nil {
				return err
			}
			continue
		}

		status := nb.Status
		if status != record.StatusActive && status != record.StatusArchived {
			status = record.StatusActive
		}
		row := &record.Notebook{
			Name:        nb.Name,
			Description: nb.Description,
			Status:      status,
			CreatedAt:   nb.CreatedAt,
		}
		if err := db.InsertNotebook(ctx, tx, row); err != nil {
			return err
		}
		st.notebookIDs[nb.ID] = row.ID
		st.out.NotebooksImported++
	}
	return nil
}

func importEntries(ctx context.Context, tx *sql.Tx, doc *record.ExportDocument, mode ImportMode, st *importState) error {
	for _, e := range doc.Entries {
		if e.Title == "" {
			if err := st.skip(mode, ImportError{
				Kind: "entry", Code: "INVALID_RECORD",
				Message: fmt.Sprintf("entry %d has no title", e.ID),
			}); err != nil {
				return err
			}
			continue
		}

		var notebookID *int64
		if e.NotebookID != nil {
			mapped, ok := st.notebookIDs[*e.NotebookID]
			if !ok {
				if err := st.skip(mode, ImportError{
					Kind: "entry", Identifier: e.Title, Code: "INVALID_RECORD",
					Message: fmt.Sprintf("entry %q references unknown notebook id %d", e.Title, *e.NotebookID),
				}); err != nil {
					return err
				}
				continue
			}
			notebookID = &mapped

			matches, err := db.FindEntriesByTitle(ctx, tx, e.Title, notebookID)
			if err != nil {
				return err
			}
			if len(matches) > 0 {
				st.entryIDs[e.ID] = matches[0].ID
				if err := st.skip(mode, ImportError{
					Kind: "entry", Identifier: e.Title, Code: "TITLE_COLLISION",
					Message: fmt.Sprintf("entry %q already exists in its notebook", e.Title),
				}); err != nil {
					return err
				}
				continue
			}
		} else {
			match, err := db.GetUnattachedEntryMatch(ctx, tx, e.Title, e.Content, e.CreatedAt)
			if err != nil {
				return err
			}
			if match != nil {
				st.entryIDs[e.ID] = match.ID
				if err := st.skip(mode, ImportError{
					Kind: "entry", Identifier: e.Title, Code: "TITLE_COLLISION",
					Message: fmt.Sprintf("identical unattached entry %q already exists", e.Title),
				}); err != nil {
					return err
				}
				continue
			}
		}

		row := &record.Entry{
			NotebookID: notebookID,
			Title:      e.Title,
			Content:    e.Content,
			CreatedAt:  e.CreatedAt,
		}
		if err := db.InsertEntry(ctx, tx, row); err != nil {
			return err
		}
		st.entryIDs[e.ID] = row.ID
		st.out.EntriesImported++
	}
	return nil
}

func importNotes(ctx context.Context, tx *sql.Tx, doc *record.ExportDocument, mode ImportMode, st *importState) error {
	for _, n := range doc.Notes {
		entryID, ok := st.entryIDs[n.EntryID]
		if !ok {
			if err := st.skip(mode, ImportError{
				Kind: "note", Identifier: strconv.FormatInt(n.ID, 10), Code: "INVALID_RECORD",
				Message: fmt.Sprintf("note %d references unknown entry id %d", n.ID, n.EntryID),
			}); err != nil {
				return err
			}
			continue
		}

		match, err := db.GetNoteMatch(ctx, tx, entryID, n.Content, n.CreatedAt)
		if err != nil {
			return err
		}
		if match != nil {
			st.noteIDs[n.ID] = match.ID
			if err := st.skip(mode, ImportError{
				Kind: "note", Identifier: strconv.FormatInt(n.ID, 10), Code: "NOTE_COLLISION",
				Message: fmt.Sprintf("identical note already exists on entry %d", entryID),
			}); err != nil {
				return err
			}
			continue
		}

		row := &record.Note{
			EntryID:   entryID,
			Content:   n.Content,
			CreatedAt: n.CreatedAt,
		}
		if err := db.InsertNote(ctx, tx, row); err != nil {
			return err
		}
		st.noteIDs[n.ID] = row.ID
		st.out.NotesImported++
	}
	return nil
}

func importTags(ctx context.Context, tx *sql.Tx, doc *record.ExportDocument, mode ImportMode, st *importState) error {
	for _, t := range doc.Tags {
		norm := record.Fold(t.Name)
		if norm == "" {
			if err := st.skip(mode, ImportError{
				Kind: "tag", Code: "INVALID_RECORD",
				Message: fmt.Sprintf("tag %d has no name", t.ID),
			}); err != nil {
				return err
			}
			continue
		}

		existing, err := db.GetTagByNorm(ctx, tx, norm)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return err
		}
		if existing != nil {
			st.tagIDs[t.ID] = existing.ID
			if err := st.skip(mode, ImportError{
				Kind: "tag", Identifier: t.Name, Code: "NAME_COLLISION",
				Message: fmt.Sprintf("tag %q already exists", existing.Name),
			}); err != nil {
				return err
			}
			continue
		}

		tag, _, err := db.EnsureTag(ctx, tx, t.Name, norm, t.Description, t.CreatedAt)
		if err != nil {
			return err
		}
		st.tagIDs[t.ID] = tag.ID
		st.out.TagsImported++
	}
	return nil
}

func importAttachments(ctx context.Context, tx *sql.Tx, doc *record.ExportDocument, mode ImportMode, st *importState) error {
	for _, a := range doc.Attachments {
		row := &record.Attachment{
			ID:               a.ID,
			OriginalFilename: a.OriginalFilename,
			StoragePath:      a.StoragePath,
			CreatedAt:        a.CreatedAt,
		}
		switch {
		case a.EntryID != nil:
			mapped, ok := st.entryIDs[*a.EntryID]
			if !ok {
				if err := st.skip(mode, ImportError{
					Kind: "attachment", Identifier: a.ID, Code: "INVALID_RECORD",
					Message: fmt.Sprintf("attachment %s references unknown entry id %d", a.ID, *a.EntryID),
				}); err != nil {
					return err
				}
				continue
			}
			row.EntryID = &mapped
		case a.NoteID != nil:
			mapped, ok := st.noteIDs[*a.NoteID]
			if !ok {
				if err := st.skip(mode, ImportError{
					Kind: "attachment", Identifier: a.ID, Code: "INVALID_RECORD",
					Message: fmt.Sprintf("attachment %s references unknown note id %d", a.ID, *a.NoteID),
				}); err != nil {
					return err
				}
				continue
			}
			row.NoteID = &mapped
		default:
			if err := st.skip(mode, ImportError{
				Kind: "attachment", Identifier: a.ID, Code: "INVALID_RECORD",
				Message: fmt.Sprintf("attachment %s has no owner", a.ID),
			}); err != nil {
				return err
			}
			continue
		}

		if err := db.InsertAttachment(ctx, tx, row); err != nil {
			if err == db.ErrUniqueConstraint {
				if err := st.skip(mode, ImportError{
					Kind: "attachment", Identifier: a.ID, Code: "ID_COLLISION",
					Message: fmt.Sprintf("attachment %s already exists", a.ID),
				}); err != nil {
					return err
				}
				continue
			}
			return err
		}
		st.out.AttachmentsImported++
	}
	return nil
}

// importAssociations re-links tags. Associations whose endpoints were
// remapped follow the mapping; duplicates fold away in the insert. Dangling
// references are dropped quietly in both modes, they carry no data of their
// own.
func importAssociations(ctx context.Context, tx *sql.Tx, doc *record.ExportDocument, st *importState) error {
	for _, assoc := range doc.Associations {
		tagID, ok := st.tagIDs[assoc.TagID]
		if !ok {
			continue
		}

		var entityID int64
		switch assoc.EntityKind {
		case record.KindNotebook:
			entityID, ok = st.notebookIDs[assoc.EntityID]
		case record.KindEntry:
			entityID, ok = st.entryIDs[assoc.EntityID]
		case record.KindNote:
			entityID, ok = st.noteIDs[assoc.EntityID]
		default:
			ok = false
		}
		if !ok {
			continue
		}

		if _, err := db.AddTagAssociation(ctx, tx, assoc.EntityKind, entityID, tagID); err != nil {
			return err
		}
	}
	return nil
}
