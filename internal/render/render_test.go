package render

import (
	"strings"
	"testing"

	"github.com/hpungsan/binder/internal/record"
)

func stringPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}

func testDocument() *record.ExportDocument {
	return &record.ExportDocument{
		SchemaVersion: 1,
		ExportedAt:    1700000000,
		Notebooks: []record.ExportNotebook{
			{ID: 1, Name: "Garden", Description: stringPtr("planting log"), Status: record.StatusActive, CreatedAt: 1700000000},
			{ID: 2, Name: "Old Projects", Status: record.StatusArchived, CreatedAt: 1700000001},
		},
		Entries: []record.ExportEntry{
			{ID: 10, NotebookID: int64Ptr(1), Title: "Tomatoes", Content: "Planted **six** seedlings.", CreatedAt: 1700000100},
			{ID: 11, Title: "Loose thought", Content: "no notebook here", CreatedAt: 1700000200},
		},
		Notes: []record.ExportNote{
			{ID: 20, EntryID: 10, Content: "First fruit ripened.", CreatedAt: 1700000300},
		},
		Tags: []record.ExportTag{
			{ID: 30, Name: "outdoors", NameNorm: "outdoors", CreatedAt: 1700000000},
		},
		Associations: []record.TagAssociation{
			{EntityKind: record.KindEntry, EntityID: 10, TagID: 30},
			{EntityKind: record.KindNote, EntityID: 20, TagID: 30},
		},
		Attachments: []record.ExportAttachment{
			{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", EntryID: int64Ptr(10), OriginalFilename: "seedlings.jpg", StoragePath: "01ARZ3NDEKTSV4RRFFQ69G5FAV.jpg", CreatedAt: 1700000100},
		},
	}
}

func TestExportHTML(t *testing.T) {
	out, err := ExportHTML(testDocument())
	if err != nil {
		t.Fatalf("ExportHTML failed: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		"Garden",
		"planting log",
		"Old Projects",
		"archived",
		"Tomatoes",
		"<strong>six</strong>", // markdown rendered
		"First fruit ripened.",
		"Loose thought",
		"Unfiled entries",
		"outdoors",
		"seedlings.jpg",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestExportHTML_EscapesUserContent(t *testing.T) {
	doc := testDocument()
	doc.Notebooks[0].Name = `<script>alert("x")</script>`
	doc.Entries[0].Content = `raw <script>alert("y")</script> html`

	out, err := ExportHTML(doc)
	if err != nil {
		t.Fatalf("ExportHTML failed: %v", err)
	}
	html := string(out)

	if strings.Contains(html, `<script>alert("x")</script>`) {
		t.Error("notebook name was not escaped")
	}
	// goldmark drops raw HTML blocks rather than passing them through
	if strings.Contains(html, `<script>alert("y")</script>`) {
		t.Error("raw HTML in markdown content was passed through")
	}
}

func TestExportHTML_EmptyDocument(t *testing.T) {
	out, err := ExportHTML(&record.ExportDocument{SchemaVersion: 1, ExportedAt: 1700000000})
	if err != nil {
		t.Fatalf("ExportHTML failed: %v", err)
	}
	if !strings.Contains(string(out), "0 notebooks") {
		t.Error("empty document should render zero counts")
	}
}

func TestFormatTime(t *testing.T) {
	got := formatTime(1700000000)
	want := "2023-11-14 22:13"
	if got != want {
		t.Errorf("formatTime(1700000000) = %q, want %q", got, want)
	}
}
