package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/desertthunder/ankix/internal/formatter"
	"github.com/desertthunder/ankix/internal/models"
)

const maxUploadSize = 64 << 20 // 64MB

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// deckParam returns the unescaped base name of the deckName route parameter.
func deckParam(r *http.Request) string {
	raw := chi.URLParam(r, "deckName")
	if name, err := url.PathUnescape(raw); err == nil {
		raw = name
	}
	return path.Base(raw)
}

func (b *Backend) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		httpError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	received := make(map[string][]byte, len(files))
	for _, fh := range files {
		name := path.Base(fh.Filename)
		if !strings.EqualFold(path.Ext(name), ".pdf") {
			httpError(w, http.StatusBadRequest, "File %s is not a PDF", name)
			return
		}

		f, err := fh.Open()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to read %s: %v", name, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to read %s: %v", name, err)
			return
		}
		received[name] = data
	}

	names := make([]string, 0, len(received))
	b.mu.Lock()
	for name, data := range received {
		b.uploads[name] = data
		names = append(names, name)
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Successfully uploaded %d files", len(names)),
		"files":   names,
	})
}

func (b *Backend) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Files) == 0 {
		httpError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, name := range req.Files {
		if _, ok := b.uploads[path.Base(name)]; !ok {
			httpError(w, http.StatusBadRequest, "File not found: %s", name)
			return
		}
	}

	j := buildJob(uuid.NewString(), req, b.uploads)
	b.jobs[j.id] = j
	b.logger.Info("processing started", "job", j.id, "files", len(req.Files), "cards", len(j.cards))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Processing started", "jobId": j.id})
}

func (b *Backend) handleStatus(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	j, ok := b.jobs[chi.URLParam(r, "jobId")]
	if !ok {
		httpError(w, http.StatusNotFound, "Job not found")
		return
	}

	status := j.advance(b.step)
	if status.Status == "completed" && !j.stored {
		b.decks[j.deck] = j.cards
		j.stored = true
	}

	writeJSON(w, http.StatusOK, status)
}

func (b *Backend) handleListDecks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"decks": b.Decks()})
}

func (b *Backend) handleGetCards(w http.ResponseWriter, r *http.Request) {
	cards, ok := b.Cards(deckParam(r))
	if !ok {
		httpError(w, http.StatusNotFound, "CSV file not found")
		return
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

func (b *Backend) handleSaveCards(w http.ResponseWriter, r *http.Request) {
	var cards []models.Flashcard
	if err := json.NewDecoder(r.Body).Decode(&cards); err != nil {
		httpError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.Seed(deckParam(r), cards)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cards updated successfully"})
}

// handleExport serves a zip archive holding the deck as deck.csv.
func (b *Backend) handleExport(w http.ResponseWriter, r *http.Request) {
	deck := deckParam(r)
	cards, ok := b.Cards(deck)
	if !ok {
		httpError(w, http.StatusNotFound, "Deck %s not found", deck)
		return
	}

	data, err := packageDeck(cards)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to generate Anki deck: %v", err)
		return
	}

	w.Header().Set("Content-Description", "File Transfer")
	w.Header().Set("Content-Transfer-Encoding", "binary")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", models.PackageFilename(deck)))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func packageDeck(cards []models.Flashcard) ([]byte, error) {
	csvData, err := formatter.CardsToCSV(cards)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("deck.csv")
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(csvData); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
