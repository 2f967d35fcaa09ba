package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ankix/internal/formatter"
	"github.com/desertthunder/ankix/internal/models"
	tu "github.com/desertthunder/ankix/internal/testing"
)

func newBackend(t *testing.T, step float64) (*Backend, *httptest.Server) {
	t.Helper()
	b := New(Options{Step: step})
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}

func upload(t *testing.T, srv *httptest.Server, files map[string][]byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		part.Write(data)
	}
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	return resp
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	data, _ := json.Marshal(v)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func poll(t *testing.T, srv *httptest.Server, jobID string) statusResponse {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/process/" + jobID)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	return decode[statusResponse](t, resp)
}

func TestBackend(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		_, srv := newBackend(t, 0)
		resp, err := http.Get(srv.URL + "/api/health")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if body := decode[map[string]string](t, resp); body["status"] != "ok" {
			t.Errorf("expected ok, got %v", body)
		}
	})

	t.Run("Request ID Logged", func(t *testing.T) {
		var logs bytes.Buffer
		b := New(Options{Logger: log.New(&logs)})

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		b.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(logs.String(), "abc-123") {
			t.Errorf("expected request id in logs, got %q", logs.String())
		}
	})

	t.Run("Upload", func(t *testing.T) {
		t.Run("Rejects Non PDF", func(t *testing.T) {
			_, srv := newBackend(t, 0)
			resp := upload(t, srv, map[string][]byte{"notes.txt": []byte("hello")})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
			if body := decode[map[string]string](t, resp); !strings.Contains(body["error"], "not a PDF") {
				t.Errorf("unexpected error %v", body)
			}
		})

		t.Run("Rejects Empty Form", func(t *testing.T) {
			_, srv := newBackend(t, 0)
			resp := upload(t, srv, map[string][]byte{})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	})

	t.Run("Process", func(t *testing.T) {
		t.Run("Unknown File", func(t *testing.T) {
			_, srv := newBackend(t, 0)
			resp := postJSON(t, srv.URL+"/api/process", processRequest{Files: []string{"missing.pdf"}})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})

		t.Run("Full Lifecycle", func(t *testing.T) {
			b, srv := newBackend(t, 50)

			resp := upload(t, srv, map[string][]byte{"biology.pdf": tu.MinimalPDF(3, "Cells")})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("upload failed with %d", resp.StatusCode)
			}
			resp.Body.Close()

			resp = postJSON(t, srv.URL+"/api/process", processRequest{Files: []string{"biology.pdf"}, IncludeTopicCards: true, CardsPerTopic: 2})
			started := decode[map[string]string](t, resp)
			jobID := started["jobId"]
			if jobID == "" {
				t.Fatalf("expected job id, got %v", started)
			}

			want := []string{"pending", "processing", "completed"}
			var last statusResponse
			for i, status := range want {
				last = poll(t, srv, jobID)
				if last.Status != status {
					t.Fatalf("poll %d: expected %s, got %+v", i+1, status, last)
				}
			}

			if last.DeckName != "biology" || last.Filename != "biology.pdf" || last.Progress != 100 {
				t.Errorf("unexpected completion payload %+v", last)
			}
			// one topic card plus two page cards
			if last.TotalCards != 3 {
				t.Errorf("expected 3 cards, got %d", last.TotalCards)
			}

			cards, ok := b.Cards("biology")
			if !ok || len(cards) != 3 {
				t.Fatalf("expected stored deck with 3 cards, got %v", cards)
			}
			if !strings.Contains(cards[1].Question, "page 1 of biology") {
				t.Errorf("unexpected page card %+v", cards[1])
			}
		})

		t.Run("Unparseable PDF Fails", func(t *testing.T) {
			_, srv := newBackend(t, 100)

			upload(t, srv, map[string][]byte{"broken.pdf": []byte("%PDF-1.4 not really")}).Body.Close()
			resp := postJSON(t, srv.URL+"/api/process", processRequest{Files: []string{"broken.pdf"}})
			jobID := decode[map[string]string](t, resp)["jobId"]

			st := poll(t, srv, jobID)
			if st.Status != "failed" || st.Error == "" {
				t.Errorf("expected failed status with error, got %+v", st)
			}
		})

		t.Run("Unknown Job", func(t *testing.T) {
			_, srv := newBackend(t, 0)
			resp, err := http.Get(srv.URL + "/api/process/nope")
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
		})
	})

	t.Run("Cards", func(t *testing.T) {
		t.Run("Save Then Load", func(t *testing.T) {
			_, srv := newBackend(t, 0)
			cards := []models.Flashcard{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}}
			data, _ := json.Marshal(cards)

			req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/cards/csv/cell%20biology", bytes.NewReader(data))
			resp, err := http.DefaultClient.Do(req)
			if err != nil || resp.StatusCode != http.StatusOK {
				t.Fatalf("save failed: %v %v", err, resp)
			}
			resp.Body.Close()

			resp, err = http.Get(srv.URL + "/api/cards/csv/cell%20biology")
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			got := decode[struct {
				Cards []models.Flashcard `json:"cards"`
			}](t, resp)
			if len(got.Cards) != 2 || got.Cards[1].Answer != "A2" {
				t.Errorf("unexpected cards %+v", got.Cards)
			}
		})

		t.Run("Empty Deck Returns Array", func(t *testing.T) {
			b, srv := newBackend(t, 0)
			b.Seed("history", nil)

			resp, err := http.Get(srv.URL + "/api/cards/csv/history")
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if strings.TrimSpace(string(body)) != `{"cards":[]}` {
				t.Errorf("expected empty array, got %s", body)
			}
		})

		t.Run("Missing Deck", func(t *testing.T) {
			_, srv := newBackend(t, 0)
			resp, err := http.Get(srv.URL + "/api/cards/csv/nope")
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
		})

		t.Run("List", func(t *testing.T) {
			b, srv := newBackend(t, 0)
			b.Seed("zoology", []models.Flashcard{{Question: "Q", Answer: "A"}})
			b.Seed("biology", nil)

			resp, err := http.Get(srv.URL + "/api/cards/list")
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			got := decode[struct {
				Decks []models.Deck `json:"decks"`
			}](t, resp)
			if len(got.Decks) != 2 || got.Decks[0].Name != "biology" || got.Decks[1].TotalCards != 1 {
				t.Errorf("unexpected decks %+v", got.Decks)
			}
		})
	})

	t.Run("Export", func(t *testing.T) {
		t.Run("Zip With Deck CSV", func(t *testing.T) {
			b, srv := newBackend(t, 0)
			b.Seed("biology", []models.Flashcard{{Question: "Q1", Answer: "A1"}})

			resp, err := http.Get(srv.URL + "/api/cards/apkg/biology")
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if ct := resp.Header.Get("Content-Type"); ct != "application/octet-stream" {
				t.Errorf("expected octet-stream, got %s", ct)
			}
			if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "biology.apkg") {
				t.Errorf("unexpected disposition %s", cd)
			}

			data, _ := io.ReadAll(resp.Body)
			zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				t.Fatalf("expected zip archive: %v", err)
			}
			if len(zr.File) != 1 || zr.File[0].Name != "deck.csv" {
				t.Fatalf("unexpected archive contents")
			}
			f, _ := zr.File[0].Open()
			cards, err := formatter.ParseCardsCSV(f)
			f.Close()
			if err != nil || len(cards) != 1 || cards[0].Question != "Q1" {
				t.Errorf("unexpected packaged cards %v (%v)", cards, err)
			}
		})

		t.Run("Missing Deck", func(t *testing.T) {
			_, srv := newBackend(t, 0)
			resp, err := http.Get(srv.URL + "/api/cards/apkg/nope")
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
		})
	})

	t.Run("SeedDir", func(t *testing.T) {
		dir := t.TempDir()
		os.WriteFile(filepath.Join(dir, "chemistry.csv"), []byte("Question,Answer\nH2O?,Water\n"), 0644)
		os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644)

		b := New(Options{})
		n, err := b.SeedDir(dir)
		if err != nil {
			t.Fatalf("SeedDir failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 deck, got %d", n)
		}
		if cards, ok := b.Cards("chemistry"); !ok || cards[0].Answer != "Water" {
			t.Errorf("unexpected seeded deck %v", cards)
		}
	})

	t.Run("Serve Stops On Cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- Serve(ctx, "127.0.0.1:0", New(Options{}).Handler(), log.New(io.Discard)) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})
}

func TestPDFPages(t *testing.T) {
	t.Run("Counts Pages", func(t *testing.T) {
		pages, err := pdfPages(tu.MinimalPDF(4, "Mitosis"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(pages) != 4 {
			t.Errorf("expected 4 pages, got %d", len(pages))
		}
	})

	t.Run("Rejects Garbage", func(t *testing.T) {
		if _, err := pdfPages([]byte("hello")); err == nil {
			t.Error("expected error for non-pdf data")
		}
		if _, err := pdfPages(nil); err == nil {
			t.Error("expected error for empty data")
		}
	})

	t.Run("Summarize", func(t *testing.T) {
		if got := summarize("  a\n\tb  c "); got != "a b c" {
			t.Errorf("unexpected summary %q", got)
		}
		long := strings.Repeat("x", maxAnswerLength+10)
		if got := summarize(long); len([]rune(got)) != maxAnswerLength+1 {
			t.Errorf("expected truncation, got %d runes", len([]rune(got)))
		}
	})
}
