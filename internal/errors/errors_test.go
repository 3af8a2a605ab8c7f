package errors

import (
	"fmt"
	"testing"
)

func TestBinderError_Error(t *testing.T) {
	err := &BinderError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "notebook not found: research",
	}

	expected := "NOT_FOUND: notebook not found: research"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("name is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "name is required" {
		t.Errorf("Message = %q, want %q", err.Message, "name is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("notebook", "research")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["kind"] != "notebook" {
		t.Errorf("Details[kind] = %v, want %q", err.Details["kind"], "notebook")
	}
	if err.Details["identifier"] != "research" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "research")
	}
}

func TestNewDuplicateName(t *testing.T) {
	err := NewDuplicateName("notebook", "research")

	if err.Code != ErrDuplicateName {
		t.Errorf("Code = %q, want %q", err.Code, ErrDuplicateName)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["name"] != "research" {
		t.Errorf("Details[name] = %v, want %q", err.Details["name"], "research")
	}
}

func TestNewDuplicateTitle(t *testing.T) {
	err := NewDuplicateTitle("research", "Week 1")

	if err.Code != ErrDuplicateTitle {
		t.Errorf("Code = %q, want %q", err.Code, ErrDuplicateTitle)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["notebook"] != "research" {
		t.Errorf("Details[notebook] = %v, want %q", err.Details["notebook"], "research")
	}
	if err.Details["title"] != "Week 1" {
		t.Errorf("Details[title] = %v, want %q", err.Details["title"], "Week 1")
	}
}

func TestNewAmbiguousReference(t *testing.T) {
	err := NewAmbiguousReference("Week 1", 3)

	if err.Code != ErrAmbiguousReference {
		t.Errorf("Code = %q, want %q", err.Code, ErrAmbiguousReference)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["matches"] != 3 {
		t.Errorf("Details[matches] = %v, want 3", err.Details["matches"])
	}
}

func TestNewNotebookArchived(t *testing.T) {
	err := NewNotebookArchived("old-work")

	if err.Code != ErrNotebookArchived {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotebookArchived)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["name"] != "old-work" {
		t.Errorf("Details[name] = %v, want %q", err.Details["name"], "old-work")
	}
}

func TestNewConstraint(t *testing.T) {
	err := NewConstraint("note requires an existing entry")

	if err.Code != ErrConstraint {
		t.Errorf("Code = %q, want %q", err.Code, ErrConstraint)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		originalErr := fmt.Errorf("database connection failed")
		err := NewInternal(originalErr)

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		// Message should be generic (not leak internal details)
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		// Original error should be stored in Details for logging
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "database connection failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		// Details should be empty but not nil
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("tag", "urgent")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("tag", "urgent")
		if Is(err, ErrDuplicateName) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-BinderError", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for non-BinderError")
		}
	})

	t.Run("wrapped BinderError", func(t *testing.T) {
		inner := NewNotFound("tag", "urgent")
		wrapped := fmt.Errorf("sources[0]: %w", inner)
		if !Is(wrapped, ErrNotFound) {
			t.Error("Is() = false, want true for wrapped BinderError")
		}
		if Is(wrapped, ErrDuplicateName) {
			t.Error("Is() = true, want false for wrong code on wrapped BinderError")
		}
	})
}
