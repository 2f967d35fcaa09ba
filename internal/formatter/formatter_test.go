package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
	th "github.com/desertthunder/ankix/internal/testing"
)

var sampleCards = []models.Flashcard{
	{Question: "What is a cell?", Answer: "The basic unit of life"},
	{Question: `Who said "omnis cellula e cellula"?`, Answer: "Rudolf Virchow, 1855"},
}

func TestExporters(t *testing.T) {
	t.Run("CardsToCSV", func(t *testing.T) {
		data, err := CardsToCSV(sampleCards)
		if err != nil {
			t.Fatalf("CardsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Question,Answer\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `"Who said ""omnis cellula e cellula""?"`) {
			t.Errorf("CSV did not escape quotes, got: %s", output)
		}
		if !strings.Contains(output, `"Rudolf Virchow, 1855"`) {
			t.Errorf("CSV did not quote comma field, got: %s", output)
		}
	})

	t.Run("ParseCardsCSV", func(t *testing.T) {
		t.Run("Round Trip", func(t *testing.T) {
			data, err := CardsToCSV(sampleCards)
			if err != nil {
				t.Fatalf("CardsToCSV failed: %v", err)
			}

			cards, err := ParseCardsCSV(strings.NewReader(string(data)))
			if err != nil {
				t.Fatalf("ParseCardsCSV failed: %v", err)
			}
			if !reflect.DeepEqual(cards, sampleCards) {
				t.Errorf("expected %v, got %v", sampleCards, cards)
			}
		})

		t.Run("Header Only", func(t *testing.T) {
			cards, err := ParseCardsCSV(strings.NewReader("Question,Answer\n"))
			if err != nil {
				t.Fatalf("ParseCardsCSV failed: %v", err)
			}
			if cards == nil || len(cards) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", cards)
			}
		})

		t.Run("Short Rows Skipped", func(t *testing.T) {
			cards, err := ParseCardsCSV(strings.NewReader("Question,Answer\nlonely\nQ,A\n"))
			if err != nil {
				t.Fatalf("ParseCardsCSV failed: %v", err)
			}
			if len(cards) != 1 || cards[0].Question != "Q" {
				t.Errorf("expected one card, got %v", cards)
			}
		})

		t.Run("Malformed", func(t *testing.T) {
			if _, err := ParseCardsCSV(strings.NewReader("Question,Answer\n\"unterminated,x\n")); err == nil {
				t.Error("expected error for malformed CSV")
			}
		})
	})

	t.Run("CardsToMarkdown", func(t *testing.T) {
		output := string(CardsToMarkdown("biology", sampleCards))

		if !strings.Contains(output, "# biology") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Cards**: 2") {
			t.Errorf("Markdown missing card count")
		}
		if !strings.Contains(output, "## 1. What is a cell?") {
			t.Errorf("Markdown missing first question")
		}
	})

	t.Run("CardsToText", func(t *testing.T) {
		output := string(CardsToText("biology", sampleCards))

		if !strings.Contains(output, "Deck: biology") {
			t.Errorf("Text missing deck name")
		}
		if !strings.Contains(output, "2. Q: Who said") {
			t.Errorf("Text missing numbered question, got: %s", output)
		}
		if !strings.Contains(output, "A: The basic unit of life") {
			t.Errorf("Text missing answer")
		}
	})

	t.Run("FormatCards", func(t *testing.T) {
		t.Run("JSON", func(t *testing.T) {
			data, err := FormatCards(FormatJSON, "biology", nil)
			if err != nil {
				t.Fatalf("FormatCards failed: %v", err)
			}
			if strings.TrimSpace(string(data)) != "[]" {
				t.Errorf("expected empty JSON array, got %s", data)
			}
		})

		t.Run("Every Format", func(t *testing.T) {
			for _, f := range Formats {
				data, err := FormatCards(f, "biology", sampleCards)
				if err != nil {
					t.Errorf("FormatCards(%s) failed: %v", f, err)
				}
				if len(data) == 0 {
					t.Errorf("FormatCards(%s) returned no data", f)
				}
			}
		})

		t.Run("Unknown", func(t *testing.T) {
			_, err := FormatCards("yaml", "biology", sampleCards)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("DecksTable", func(t *testing.T) {
		output := DecksTable([]models.Deck{{Name: "biology", TotalCards: 12}, {Name: "history", TotalCards: 0}})

		for _, want := range []string{"Deck", "Cards", "biology", "12", "history"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("HistoryTable", func(t *testing.T) {
		r := models.NewExportRecord("biology", "/tmp/biology.apkg", 2048, "application/octet-stream")
		r.SetSequence(7)

		output := HistoryTable([]*models.ExportRecord{r})
		for _, want := range []string{"biology", "/tmp/biology.apkg", "2.0 KiB", "7"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("FormatBytes", func(t *testing.T) {
		tc := []struct {
			in   int64
			want string
		}{
			{0, "0 B"},
			{1023, "1023 B"},
			{1024, "1.0 KiB"},
			{1536, "1.5 KiB"},
			{5 * 1024 * 1024, "5.0 MiB"},
		}
		for _, tt := range tc {
			if got := FormatBytes(tt.in); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
			}
		}
	})

	t.Run("WriteBulkExportManifest", func(t *testing.T) {
		t.Run("SuccessfulExport", func(t *testing.T) {
			manifestPath := filepath.Join(t.TempDir(), "manifest.json")
			m := Manifest{
				Format:          "apkg",
				TotalDecks:      2,
				Successful:      2,
				OutputDirectory: "exports",
				Entries: []ManifestEntry{
					{Deck: "biology", Files: []string{"exports/biology.apkg"}},
					{Deck: "history", Files: []string{"exports/history.apkg"}},
				},
			}

			if err := WriteBulkExportManifest(m, manifestPath); err != nil {
				t.Fatalf("WriteBulkExportManifest failed: %v", err)
			}

			th.AssertFileExists(t, manifestPath)
			content := th.MustReadFile(t, manifestPath)

			var decoded struct {
				Format     string `json:"format"`
				TotalDecks int    `json:"total_decks"`
				Successful int    `json:"successful_exports"`
				Decks      []struct {
					Deck   string `json:"deck"`
					Status string `json:"status"`
				} `json:"decks"`
			}
			if err := json.Unmarshal([]byte(content), &decoded); err != nil {
				t.Fatalf("manifest is not JSON: %v", err)
			}
			if decoded.Format != "apkg" || decoded.TotalDecks != 2 || decoded.Successful != 2 {
				t.Errorf("unexpected manifest header %+v", decoded)
			}
			if len(decoded.Decks) != 2 || decoded.Decks[0].Status != "success" {
				t.Errorf("unexpected manifest entries %+v", decoded.Decks)
			}
		})

		t.Run("WithFailedExports", func(t *testing.T) {
			manifestPath := filepath.Join(t.TempDir(), "manifest_with_failures.json")
			m := Manifest{
				TotalDecks: 2,
				Successful: 1,
				Failed:     1,
				Entries: []ManifestEntry{
					{Deck: "biology", Files: []string{"biology.apkg"}},
					{Deck: "history", Error: "package export failed: empty package"},
				},
			}

			if err := WriteBulkExportManifest(m, manifestPath); err != nil {
				t.Fatalf("WriteBulkExportManifest failed: %v", err)
			}

			content := th.MustReadFile(t, manifestPath)
			if !strings.Contains(content, `"failed_exports": 1`) {
				t.Errorf("Manifest missing failed_exports count")
			}
			if !strings.Contains(content, `"status": "failed"`) {
				t.Errorf("Manifest missing failed status")
			}
			if !strings.Contains(content, "empty package") {
				t.Errorf("Manifest missing error message")
			}
		})

		t.Run("Unwritable Path", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing", "manifest.json")
			if err := WriteBulkExportManifest(Manifest{}, path); err == nil {
				t.Error("expected error for missing directory")
			}
		})
	})
}
