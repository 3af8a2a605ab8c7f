package record

// NotebookStatus is the lifecycle state of a notebook.
type NotebookStatus string

const (
	StatusActive   NotebookStatus = "active"
	StatusArchived NotebookStatus = "archived" // write-locked for new entries
)

// Notebook groups entries under a unique, case-sensitive name.
type Notebook struct {
	ID int64 `json:"id"`

	// Name is unique across all notebooks, compared case-sensitively
	Name string `json:"name"`

	Description *string `json:"description,omitempty"`

	Status NotebookStatus `json:"status"`

	// CreatedAt is the Unix timestamp when the notebook was created
	CreatedAt int64 `json:"created_at"`
}

// Entry is a titled record, optionally owned by a notebook.
type Entry struct {
	ID int64 `json:"id"`

	// NotebookID is nil for unattached entries
	NotebookID *int64 `json:"notebook_id,omitempty"`

	// Notebook is the owning notebook's name, resolved for display
	Notebook *string `json:"notebook,omitempty"`

	// Title is unique within its notebook
	Title string `json:"title"`

	Content string `json:"content"`

	CreatedAt int64 `json:"created_at"`

	Tags []string `json:"tags,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// Note is a dated observation appended under an entry.
type Note struct {
	ID int64 `json:"id"`

	EntryID int64 `json:"entry_id"`

	// EntryTitle is the parent entry's title, resolved for display
	EntryTitle string `json:"entry_title,omitempty"`

	Content string `json:"content"`

	CreatedAt int64 `json:"created_at"`

	Tags []string `json:"tags,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// Tag is a cross-cutting label attachable to notebooks, entries, and notes.
type Tag struct {
	ID int64 `json:"id"`

	// Name is the original casing as first provided
	Name string `json:"name"`

	// NameNorm is the folded form used for uniqueness and lookups
	NameNorm string `json:"name_norm"`

	Description *string `json:"description,omitempty"`

	CreatedAt int64 `json:"created_at"`
}

// Attachment records a file copied into the attachments directory.
// Exactly one of EntryID/NoteID is set.
type Attachment struct {
	// ID is a ULID; generated ids are never reused
	ID string `json:"id"`

	EntryID *int64 `json:"entry_id,omitempty"`
	NoteID  *int64 `json:"note_id,omitempty"`

	// OriginalFilename is the base name of the source file as provided
	OriginalFilename string `json:"original_filename"`

	// StoragePath is the file name inside the attachments directory
	StoragePath string `json:"storage_path"`

	CreatedAt int64 `json:"created_at"`
}

// EntityKind discriminates tag association targets.
type EntityKind string

const (
	KindNotebook EntityKind = "notebook"
	KindEntry    EntityKind = "entry"
	KindNote     EntityKind = "note"
)

// TagAssociation is one row of the entity_tags join table.
type TagAssociation struct {
	EntityKind EntityKind `json:"entity_kind"`
	EntityID   int64      `json:"entity_id"`
	TagID      int64      `json:"tag_id"`
}

// TagUsage pairs a tag with how many associations reference it.
type TagUsage struct {
	Tag
	UsageCount int64 `json:"usage_count"`
}
