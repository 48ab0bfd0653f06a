// package formatter renders a recommender view as plain text, Markdown, CSV or JSON for the CLI
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/viewstate"
)

// Format names accepted by [Render].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Formats lists every supported format name.
func Formats() []string {
	return []string{FormatText, FormatMarkdown, FormatCSV, FormatJSON}
}

// Render dispatches to the renderer named by format ("md" is accepted for Markdown).
func Render(view viewstate.View, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return ToText(view)
	case FormatMarkdown, "md":
		return ToMarkdown(view)
	case FormatCSV:
		return ToCSV(view)
	case FormatJSON:
		return ToJSON(view)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidFlag, format, strings.Join(Formats(), ", "))
	}
}

// ToText renders the header, query and result cards as plain text.
func ToText(view viewstate.View) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s [%s]\n", view.Header.Title, view.Header.Control))
	buf.WriteString(fmt.Sprintf("%s %s\n", view.Input.Label, view.Input.Value))

	if view.Results == nil {
		return buf.Bytes(), nil
	}

	buf.WriteString("\n")
	for i, card := range view.Results.Cards {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, card.Name))
		for _, track := range card.Tracks {
			buf.WriteString(fmt.Sprintf("   - %s\n", track))
		}
	}
	buf.WriteString(fmt.Sprintf("\nFeedback: %s\n", joinChoices(view.Results.Feedback, " | ")))

	return buf.Bytes(), nil
}

// ToMarkdown renders the view as a Markdown document with one section per card.
func ToMarkdown(view viewstate.View) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", view.Header.Title))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n\n", view.Header.Status))

	query := view.Input.Value
	if query == "" {
		query = "_(empty)_"
	}
	buf.WriteString(fmt.Sprintf("**Query**: %s\n", query))

	if view.Results == nil {
		return buf.Bytes(), nil
	}

	buf.WriteString("\n## Recommendations\n")
	for _, card := range view.Results.Cards {
		buf.WriteString(fmt.Sprintf("\n### %s\n\n", card.Name))
		for i, track := range card.Tracks {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track))
		}
	}
	buf.WriteString(fmt.Sprintf("\n**Feedback**: %s\n", joinChoices(view.Results.Feedback, " · ")))

	return buf.Bytes(), nil
}

// ToCSV renders one row per shown track with columns: Playlist, Position, Track
func ToCSV(view viewstate.View) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Playlist", "Position", "Track"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	if view.Results != nil {
		for _, card := range view.Results.Cards {
			for i, track := range card.Tracks {
				if err := writer.Write([]string{card.Name, strconv.Itoa(i + 1), track}); err != nil {
					return nil, fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToJSON encodes the full view with indentation.
func ToJSON(view viewstate.View) ([]byte, error) {
	return shared.MarshalJSON(view, true)
}

// WriteExport renders view in format and writes it to path, creating parent directories.
func WriteExport(view viewstate.View, format, path string) error {
	data, err := Render(view, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func joinChoices(choices []viewstate.FeedbackChoice, sep string) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}
