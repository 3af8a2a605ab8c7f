// Package render turns an export document into a standalone HTML page.
// Entry and note bodies are treated as markdown; everything else is
// escaped text.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/binder/internal/errors"
	"github.com/hpungsan/binder/internal/record"
)

//go:embed export.html.tmpl
var templateFS embed.FS

var exportTemplate = template.Must(
	template.New("export.html.tmpl").Funcs(template.FuncMap{
		"formatTime": formatTime,
		"markdown":   renderMarkdown,
	}).ParseFS(templateFS, "export.html.tmpl"),
)

// exportPage is the template data for a rendered export.
type exportPage struct {
	GeneratedAt     string
	Notebooks       []notebookView
	Unfiled         []entryView
	Tags            []tagView
	NotebookCount   int
	EntryCount      int
	NoteCount       int
	TagCount        int
	AttachmentCount int
}

type notebookView struct {
	Name        string
	Description string
	Archived    bool
	CreatedAt   string
	Tags        []string
	Entries     []entryView
}

type entryView struct {
	Title       string
	CreatedAt   string
	Content     string
	Tags        []string
	Attachments []string
	Notes       []noteView
}

type noteView struct {
	CreatedAt   string
	Content     string
	Tags        []string
	Attachments []string
}

type tagView struct {
	Name        string
	Description string
	Count       int
}

// ExportHTML renders the document as a self-contained HTML page.
func ExportHTML(doc *record.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := exportTemplate.Execute(&buf, buildPage(doc)); err != nil {
		return nil, errors.NewInternal(err)
	}
	return buf.Bytes(), nil
}

// buildPage regroups the flat document rows into the nested shape the
// template walks: notebooks holding entries holding notes, with tag names
// and attachment filenames resolved in place.
func buildPage(doc *record.ExportDocument) *exportPage {
	tagNames := make(map[int64]string, len(doc.Tags))
	for _, t := range doc.Tags {
		tagNames[t.ID] = t.Name
	}

	// kind → entity id → tag names, in document association order
	entityTags := make(map[record.EntityKind]map[int64][]string)
	for _, a := range doc.Associations {
		name, ok := tagNames[a.TagID]
		if !ok {
			continue
		}
		byID := entityTags[a.EntityKind]
		if byID == nil {
			byID = make(map[int64][]string)
			entityTags[a.EntityKind] = byID
		}
		byID[a.EntityID] = append(byID[a.EntityID], name)
	}

	entryFiles := make(map[int64][]string)
	noteFiles := make(map[int64][]string)
	for _, a := range doc.Attachments {
		switch {
		case a.EntryID != nil:
			entryFiles[*a.EntryID] = append(entryFiles[*a.EntryID], a.OriginalFilename)
		case a.NoteID != nil:
			noteFiles[*a.NoteID] = append(noteFiles[*a.NoteID], a.OriginalFilename)
		}
	}

	entryNotes := make(map[int64][]noteView)
	for _, n := range doc.Notes {
		entryNotes[n.EntryID] = append(entryNotes[n.EntryID], noteView{
			CreatedAt:   formatTime(n.CreatedAt),
			Content:     n.Content,
			Tags:        entityTags[record.KindNote][n.ID],
			Attachments: noteFiles[n.ID],
		})
	}

	notebookEntries := make(map[int64][]entryView)
	var unfiled []entryView
	for _, e := range doc.Entries {
		view := entryView{
			Title:       e.Title,
			CreatedAt:   formatTime(e.CreatedAt),
			Content:     e.Content,
			Tags:        entityTags[record.KindEntry][e.ID],
			Attachments: entryFiles[e.ID],
			Notes:       entryNotes[e.ID],
		}
		if e.NotebookID != nil {
			notebookEntries[*e.NotebookID] = append(notebookEntries[*e.NotebookID], view)
		} else {
			unfiled = append(unfiled, view)
		}
	}

	page := &exportPage{
		GeneratedAt:     formatTime(doc.ExportedAt),
		Unfiled:         unfiled,
		NotebookCount:   len(doc.Notebooks),
		EntryCount:      len(doc.Entries),
		NoteCount:       len(doc.Notes),
		TagCount:        len(doc.Tags),
		AttachmentCount: len(doc.Attachments),
	}

	for _, nb := range doc.Notebooks {
		description := ""
		if nb.Description != nil {
			description = *nb.Description
		}
		page.Notebooks = append(page.Notebooks, notebookView{
			Name:        nb.Name,
			Description: description,
			Archived:    nb.Status == record.StatusArchived,
			CreatedAt:   formatTime(nb.CreatedAt),
			Tags:        entityTags[record.KindNotebook][nb.ID],
			Entries:     notebookEntries[nb.ID],
		})
	}

	for _, t := range doc.Tags {
		count := 0
		for _, a := range doc.Associations {
			if a.TagID == t.ID {
				count++
			}
		}
		description := ""
		if t.Description != nil {
			description = *t.Description
		}
		page.Tags = append(page.Tags, tagView{
			Name:        t.Name,
			Description: description,
			Count:       count,
		})
	}

	return page
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is dropped by goldmark's defaults, so user
// content cannot inject markup into the page.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
