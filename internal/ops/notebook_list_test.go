package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/binder/internal/record"
)

func TestListNotebooks(t *testing.T) {
	database, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Garden", "Kitchen", "Old Projects"} {
		if _, err := CreateNotebook(ctx, database, CreateNotebookInput{Name: name}); err != nil {
			t.Fatalf("CreateNotebook(%s) failed: %v", name, err)
		}
	}
	if _, err := SetNotebookStatus(ctx, database, SetNotebookStatusInput{Name: "Old Projects", Status: record.StatusArchived}); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	out, err := ListNotebooks(ctx, database, ListNotebooksInput{})
	if err != nil {
		t.Fatalf("ListNotebooks failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2 (archived hidden)", out.Count)
	}
	// Creation order is preserved
	if out.Notebooks[0].Name != "Garden" || out.Notebooks[1].Name != "Kitchen" {
		t.Errorf("order = [%s, %s], want [Garden, Kitchen]", out.Notebooks[0].Name, out.Notebooks[1].Name)
	}

	out, err = ListNotebooks(ctx, database, ListNotebooksInput{IncludeArchived: true})
	if err != nil {
		t.Fatalf("ListNotebooks include archived failed: %v", err)
	}
	if out.Count != 3 {
		t.Errorf("Count = %d, want 3", out.Count)
	}
}

func TestListNotebooks_Empty(t *testing.T) {
	database, _ := newTestStore(t)

	out, err := ListNotebooks(context.Background(), database, ListNotebooksInput{})
	if err != nil {
		t.Fatalf("ListNotebooks failed: %v", err)
	}
	if out.Notebooks == nil {
		t.Error("Notebooks should be an empty slice, not nil")
	}
	if out.Count != 0 {
		t.Errorf("Count = %d, want 0", out.Count)
	}
}
