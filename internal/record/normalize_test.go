package record

import (
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple lowercase",
			input: "Machine Learning",
			want:  "machine learning",
		},
		{
			name:  "trim whitespace",
			input: "  urgent  ",
			want:  "urgent",
		},
		{
			name:  "collapse internal whitespace",
			input: "lab    results",
			want:  "lab results",
		},
		{
			name:  "mixed case with extra spaces",
			input: "  Lab   RESULTS  ",
			want:  "lab results",
		},
		{
			name:  "tabs and newlines",
			input: "lab\t\n  results",
			want:  "lab results",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n   ",
			want:  "",
		},
		{
			name:  "unicode characters",
			input: "  RÉSUMÉ   NOTES  ",
			want:  "résumé notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fold(tt.input)
			if got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
