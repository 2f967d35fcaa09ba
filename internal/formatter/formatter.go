// package formatter renders decks, cards and export results as CSV, Markdown, plain text, JSON or terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

// Output formats accepted by [FormatCards].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Formats lists every supported card output format.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

var csvHeader = []string{"Question", "Answer"}

// CardsToCSV converts cards to CSV with a "Question,Answer" header row.
func CardsToCSV(cards []models.Flashcard) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, card := range cards {
		if err := writer.Write([]string{card.Question, card.Answer}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseCardsCSV reads cards written by [CardsToCSV].
//
// The first row is treated as a header and skipped. Rows with fewer than two fields are ignored.
func ParseCardsCSV(r io.Reader) ([]models.Flashcard, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	cards := []models.Flashcard{}
	for i := 0; ; i++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if i == 0 || len(record) < 2 {
			continue
		}
		cards = append(cards, models.Flashcard{Question: record[0], Answer: record[1]})
	}
	return cards, nil
}

// CardsToMarkdown renders a deck as a numbered Markdown document.
func CardsToMarkdown(deck string, cards []models.Flashcard) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", deck))
	buf.WriteString(fmt.Sprintf("**Cards**: %d\n\n", len(cards)))

	for i, card := range cards {
		buf.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, card.Question))
		buf.WriteString(card.Answer)
		buf.WriteString("\n\n")
	}

	return buf.Bytes()
}

// CardsToText renders a deck as plain text.
func CardsToText(deck string, cards []models.Flashcard) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Deck: %s\n", deck))
	buf.WriteString(fmt.Sprintf("Cards: %d\n\n", len(cards)))

	for i, card := range cards {
		buf.WriteString(fmt.Sprintf("%d. Q: %s\n   A: %s\n", i+1, card.Question, card.Answer))
	}

	return buf.Bytes()
}

// FormatCards renders cards in one of [Formats].
func FormatCards(format, deck string, cards []models.Flashcard) ([]byte, error) {
	switch format {
	case FormatCSV:
		return CardsToCSV(cards)
	case FormatMarkdown, "md":
		return CardsToMarkdown(deck, cards), nil
	case FormatText, "text":
		return CardsToText(deck, cards), nil
	case FormatJSON, "":
		if cards == nil {
			cards = []models.Flashcard{}
		}
		return shared.MarshalJSON(cards, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// DecksTable renders decks as a bordered table of display names and card counts.
func DecksTable(decks []models.Deck) string {
	t := newTable("#", "Deck", "Cards")
	for i, d := range decks {
		t.Row(strconv.Itoa(i+1), d.Name, strconv.Itoa(d.TotalCards))
	}
	return t.String()
}

// HistoryTable renders export history records.
func HistoryTable(records []*models.ExportRecord) string {
	t := newTable("Seq", "Deck", "Path", "Size", "Exported")
	for _, r := range records {
		t.Row(
			strconv.Itoa(r.Sequence()),
			r.Deck(),
			r.Path(),
			FormatBytes(r.SizeBytes()),
			r.CreatedAt().Local().Format(time.DateTime),
		)
	}
	return t.String()
}

// FormatBytes formats a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// ManifestEntry is one deck in a bulk export manifest.
type ManifestEntry struct {
	Deck  string   `json:"deck"`
	Files []string `json:"files,omitempty"`
	Error string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	Format          string          `json:"format"`
	TotalDecks      int             `json:"total_decks"`
	Successful      int             `json:"successful_exports"`
	Failed          int             `json:"failed_exports"`
	OutputDirectory string          `json:"output_directory"`
	Entries         []ManifestEntry `json:"decks"`
}

type manifestEntryJSON struct {
	ManifestEntry
	Status string `json:"status"`
}

// WriteBulkExportManifest writes m as indented JSON to path, marking each entry "success" or "failed".
func WriteBulkExportManifest(m Manifest, path string) error {
	entries := make([]manifestEntryJSON, len(m.Entries))
	for i, e := range m.Entries {
		status := "success"
		if e.Error != "" {
			status = "failed"
		}
		entries[i] = manifestEntryJSON{ManifestEntry: e, Status: status}
	}

	out := struct {
		Manifest
		Entries    []manifestEntryJSON `json:"decks"`
		ExportedAt time.Time           `json:"exported_at"`
	}{Manifest: m, Entries: entries, ExportedAt: time.Now().UTC()}

	data, err := shared.MarshalJSON(out, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
