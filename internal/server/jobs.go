package server

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/desertthunder/ankix/internal/models"
)

const maxAnswerLength = 240

// statusResponse mirrors the payload of GET /api/process/{jobId}.
type statusResponse struct {
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
	TotalCards int     `json:"totalCards,omitempty"`
	DeckName   string  `json:"deckName,omitempty"`
	Filename   string  `json:"filename,omitempty"`
}

// job is one processing request. Cards are derived up front; polls only reveal progress.
type job struct {
	id       string
	deck     string
	filename string
	cards    []models.Flashcard
	err      string
	polls    int
	stored   bool
}

// advance records a poll and returns the status the client should see.
func (j *job) advance(step float64) statusResponse {
	j.polls++

	if j.err != "" {
		return statusResponse{Status: "failed", Progress: 0, Error: j.err}
	}
	if j.polls == 1 {
		return statusResponse{Status: "pending", Progress: 0, Message: "Waiting to start"}
	}

	progress := float64(j.polls-1) * step
	if progress < 100 {
		return statusResponse{
			Status:   "processing",
			Progress: progress,
			Message:  fmt.Sprintf("Generating cards from %s", j.filename),
		}
	}

	return statusResponse{
		Status:     "completed",
		Progress:   100,
		Message:    "Cards generated",
		TotalCards: len(j.cards),
		DeckName:   j.deck,
		Filename:   j.filename,
	}
}

type processRequest struct {
	Files             []string `json:"files"`
	IncludeTopicCards bool     `json:"includeTopicCards"`
	CardsPerTopic     int      `json:"cardsPerTopic"`
}

// buildJob derives a deck from uploaded PDFs. The deck is named after the first file.
// A file that cannot be parsed produces a job that reports failure on its first poll.
func buildJob(id string, req processRequest, uploads map[string][]byte) *job {
	first := path.Base(req.Files[0])
	j := &job{id: id, filename: first, deck: models.StripExt(first)}

	perFile := req.CardsPerTopic
	if perFile <= 0 {
		perFile = 5
	}

	for _, name := range req.Files {
		name = path.Base(name)
		pages, err := pdfPages(uploads[name])
		if err != nil {
			j.err = fmt.Sprintf("failed to process %s: %v", name, err)
			j.cards = nil
			return j
		}

		if req.IncludeTopicCards {
			j.cards = append(j.cards, models.Flashcard{
				Question: fmt.Sprintf("What topics does %s cover?", models.StripExt(name)),
				Answer:   fmt.Sprintf("%d pages of material", len(pages)),
			})
		}

		for i, text := range pages {
			if i >= perFile {
				break
			}
			j.cards = append(j.cards, pageCard(models.StripExt(name), i+1, text))
		}
	}

	return j
}

func pageCard(doc string, page int, text string) models.Flashcard {
	answer := summarize(text)
	if answer == "" {
		answer = fmt.Sprintf("Page %d of %s has no extractable text.", page, doc)
	}
	return models.Flashcard{
		Question: fmt.Sprintf("What is covered on page %d of %s?", page, doc),
		Answer:   answer,
	}
}

// summarize collapses whitespace and truncates to maxAnswerLength runes.
func summarize(text string) string {
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	s := strings.Join(fields, " ")
	if r := []rune(s); len(r) > maxAnswerLength {
		return string(r[:maxAnswerLength]) + "…"
	}
	return s
}

// pdfPages returns the plain text of every page; pages whose text cannot be extracted are empty.
func pdfPages(data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("file was not uploaded")
	}

	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a pdf: %w", err)
	}

	n := reader.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages = make([]string, n)
	for i := 1; i <= n; i++ {
		pages[i-1] = pageText(reader.Page(i))
	}
	return pages, nil
}

func pageText(p pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
