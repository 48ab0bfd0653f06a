package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/playrec/internal/shared"
	th "github.com/desertthunder/playrec/internal/testing"
	"github.com/desertthunder/playrec/internal/viewstate"
)

func submittedView() viewstate.View {
	return viewstate.Project("lofi", viewstate.SignedOut, viewstate.Submitted, viewstate.FallbackResults())
}

func TestRenderers(t *testing.T) {
	t.Run("ToText", func(t *testing.T) {
		data, err := ToText(submittedView())
		if err != nil {
			t.Fatalf("ToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{viewstate.Title, "[Sign In]", "lofi", "1. playlist1", "   - song1", "10. playlist10", "Excellent | Mediocre | Terrible"} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ToText Idle", func(t *testing.T) {
		data, err := ToText(viewstate.Project("", viewstate.SignedIn, viewstate.Idle, nil))
		if err != nil {
			t.Fatalf("ToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "[Sign Out]") {
			t.Errorf("expected Sign Out control, got:\n%s", output)
		}
		if !strings.Contains(output, viewstate.InputLabel) {
			t.Errorf("expected input label, got:\n%s", output)
		}
		if strings.Contains(output, "playlist1") || strings.Contains(output, "1. ") || strings.Contains(output, "Feedback:") {
			t.Errorf("idle view should have no results, got:\n%s", output)
		}
	})

	t.Run("ToMarkdown", func(t *testing.T) {
		data, err := ToMarkdown(submittedView())
		if err != nil {
			t.Fatalf("ToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"# " + viewstate.Title, "**Query**: lofi", "## Recommendations", "### playlist1", "1. song1", "### playlist2", "1. song4"} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown output missing %q", want)
			}
		}
	})

	t.Run("ToMarkdown Empty Query", func(t *testing.T) {
		data, _ := ToMarkdown(viewstate.Project("", viewstate.SignedOut, viewstate.Idle, nil))
		if !strings.Contains(string(data), "_(empty)_") {
			t.Errorf("expected empty query marker, got:\n%s", data)
		}
	})

	t.Run("ToCSV", func(t *testing.T) {
		data, err := ToCSV(submittedView())
		if err != nil {
			t.Fatalf("ToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if lines[0] != "Playlist,Position,Track" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if len(lines) != 1+10*3 {
			t.Errorf("expected 31 lines, got %d", len(lines))
		}
		if lines[1] != "playlist1,1,song1" {
			t.Errorf("unexpected first record %q", lines[1])
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(submittedView())
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		results, ok := decoded["results"].(map[string]any)
		if !ok {
			t.Fatalf("expected results object, got %v", decoded["results"])
		}
		if cards := results["cards"].([]any); len(cards) != 10 {
			t.Errorf("expected 10 cards, got %d", len(cards))
		}
		if !strings.Contains(string(data), `"Terrible"`) {
			t.Error("expected feedback choices by name")
		}
	})

	t.Run("Render", func(t *testing.T) {
		tests := []struct {
			format string
			prefix string
		}{
			{format: "", prefix: viewstate.Title},
			{format: "text", prefix: viewstate.Title},
			{format: "md", prefix: "# "},
			{format: "Markdown", prefix: "# "},
			{format: "csv", prefix: "Playlist,"},
			{format: "json", prefix: "{"},
		}

		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				data, err := Render(submittedView(), tt.format)
				if err != nil {
					t.Fatalf("Render failed: %v", err)
				}
				if !strings.HasPrefix(string(data), tt.prefix) {
					t.Errorf("expected prefix %q, got %q", tt.prefix, string(data)[:20])
				}
			})
		}

		if _, err := Render(submittedView(), "yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Creates Directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "recs.md")

		if err := WriteExport(submittedView(), "markdown", path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "### playlist10") {
			t.Errorf("unexpected export content:\n%s", content)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "recs.txt")
		if err := WriteExport(submittedView(), "xml", path); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
