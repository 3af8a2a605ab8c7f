package record

// ExportDocument is the top-level JSON document produced by export and
// consumed by import. Rows mirror the store tables; ids are the exporting
// store's ids and are remapped on import.
type ExportDocument struct {
	SchemaVersion int   `json:"schema_version"`
	ExportedAt    int64 `json:"exported_at"`

	Notebooks    []ExportNotebook   `json:"notebooks"`
	Entries      []ExportEntry      `json:"entries"`
	Notes        []ExportNote       `json:"notes"`
	Tags         []ExportTag        `json:"tags"`
	Associations []TagAssociation   `json:"associations"`
	Attachments  []ExportAttachment `json:"attachments"`
}

// ExportNotebook is a notebook row in the export document.
type ExportNotebook struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Status      NotebookStatus `json:"status"`
	CreatedAt   int64          `json:"created_at"`
}

// ExportEntry is an entry row in the export document. NotebookID refers
// to the document's notebooks, not the importing store.
type ExportEntry struct {
	ID         int64  `json:"id"`
	NotebookID *int64 `json:"notebook_id,omitempty"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
}

// ExportNote is a note row in the export document.
type ExportNote struct {
	ID        int64  `json:"id"`
	EntryID   int64  `json:"entry_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// ExportTag is a tag row in the export document.
type ExportTag struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	NameNorm    string  `json:"name_norm"` // IGNORED on import, recomputed
	Description *string `json:"description,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

// ExportAttachment is an attachment row in the export document. The
// referenced file travels with backups, not exports; import restores the
// row and leaves the file to a separate restore.
type ExportAttachment struct {
	ID               string `json:"id"`
	EntryID          *int64 `json:"entry_id,omitempty"`
	NoteID           *int64 `json:"note_id,omitempty"`
	OriginalFilename string `json:"original_filename"`
	StoragePath      string `json:"storage_path"`
	CreatedAt        int64  `json:"created_at"`
}
