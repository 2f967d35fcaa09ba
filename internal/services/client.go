package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

const (
	defaultBaseURL     string = "http://localhost:8081"
	octetStream        string = "application/octet-stream"
	requestIDHeader    string = "X-Request-ID"
	maxErrorBodyLength int64  = 4096
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var _ Service = (*Client)(nil)

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL      string
	HTTPClient   *http.Client
	Logger       *log.Logger
	FallbackDeck string // deck id for completed jobs that name no deck; empty disables the fallback
}

// Client implements [Service] over HTTP.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *log.Logger
	fallbackDeck string
}

// NewClient creates a backend client. A zero BaseURL points at the local development backend.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Client{
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		fallbackDeck: opts.FallbackDeck,
	}
}

// NewHTTPClient builds the HTTP client used by [Client].
//
// When token is set every request carries it as a bearer token through an [oauth2.StaticTokenSource].
func NewHTTPClient(ctx context.Context, token string, timeout time.Duration) *http.Client {
	if token == "" {
		return &http.Client{Timeout: timeout}
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, src)
	client.Timeout = timeout
	return client
}

// BaseURL returns the backend address without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(requestIDHeader, shared.GenerateID())
	return req, nil
}

// do executes req and returns the response when the status is 2xx.
//
// Transport failures wrap [shared.ErrNetwork]; other statuses wrap [shared.ErrProtocol].
func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.logger.Debug("api request", "method", req.Method, "path", req.URL.Path, "request_id", req.Header.Get(requestIDHeader))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", shared.ErrNetwork, req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		err := fmt.Errorf("%w: %s %s: status %d", shared.ErrProtocol, req.Method, req.URL.Path, resp.StatusCode)
		if detail := errorDetail(resp.Body); detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return nil, &statusError{code: resp.StatusCode, err: err}
	}

	return resp, nil
}

// statusError is a non-2xx response.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

// deckError adds [shared.ErrDeckNotFound] to err when the backend answered 404 for deck.
func deckError(err error, deck string) error {
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %w", shared.ErrDeckNotFound, deck, err)
	}
	return err
}

// errorDetail extracts a message from FastAPI-style {"detail"} or {"error"} bodies.
func errorDetail(r io.Reader) string {
	var body struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBodyLength)).Decode(&body); err != nil {
		return ""
	}
	if s, ok := body.Detail.(string); ok && s != "" {
		return s
	}
	return body.Error
}

// doJSON sends in (when non-nil) as JSON and decodes the response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", shared.ErrNetwork, err)
		}
		return fmt.Errorf("%w: failed to decode %s response: %w", shared.ErrProtocol, endpoint, err)
	}
	return nil
}

func escapedPath(prefix, segment string) string {
	return prefix + url.PathEscape(segment)
}

// Upload sends each file as a repeated "files" multipart field to POST /api/upload.
func (c *Client) Upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: no files selected", shared.ErrUserInput)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range paths {
		if err := addFormFile(mw, p); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Info("uploaded files", "count", len(paths))
	return nil
}

func addFormFile(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrUserInput, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// StartProcessing calls POST /api/process and returns the new job id.
func (c *Client) StartProcessing(ctx context.Context, pr ProcessRequest) (string, error) {
	if err := validate.Struct(pr); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUserInput, err)
	}

	var resp ProcessResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/process", pr, &resp); err != nil {
		return "", err
	}
	if err := validate.Struct(resp); err != nil {
		return "", fmt.Errorf("%w: process response: %v", shared.ErrValidation, err)
	}
	return resp.JobID, nil
}

// JobStatus calls GET /api/process/{jobId} and decodes the payload.
func (c *Client) JobStatus(ctx context.Context, jobID string) (models.JobStatus, error) {
	var p StatusPayload
	if err := c.doJSON(ctx, http.MethodGet, escapedPath("/api/process/", jobID), nil, &p); err != nil {
		return nil, err
	}

	if p.Status == statusCompleted && p.Error == "" {
		if id, fb := p.DeckID(c.fallbackDeck); fb && id != "" {
			c.logger.Warn("completed job named no deck, using fallback", "job", jobID, "deck", id)
		}
	}

	return DecodeStatus(p, c.fallbackDeck)
}

// ListDecks calls GET /api/cards/list.
func (c *Client) ListDecks(ctx context.Context) ([]models.Deck, error) {
	var list DeckList
	if err := c.doJSON(ctx, http.MethodGet, "/api/cards/list", nil, &list); err != nil {
		return nil, err
	}
	if list.Decks == nil {
		return nil, fmt.Errorf("%w: deck list has no decks field", shared.ErrValidation)
	}
	if err := validate.Struct(list); err != nil {
		return nil, fmt.Errorf("%w: deck list: %v", shared.ErrValidation, err)
	}
	return list.Decks, nil
}

// GetCards calls GET /api/cards/csv/{deckName}.
//
// A 404 wraps [shared.ErrDeckNotFound]. A body without a cards field is a validation error; a cards field that is not an array
// of cards is a protocol error.
func (c *Client) GetCards(ctx context.Context, deck string) ([]models.Flashcard, error) {
	var body struct {
		Cards json.RawMessage `json:"cards"`
	}
	if err := c.doJSON(ctx, http.MethodGet, escapedPath("/api/cards/csv/", deck), nil, &body); err != nil {
		return nil, deckError(err, deck)
	}

	raw := bytes.TrimSpace(body.Cards)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: response for deck %q has no cards", shared.ErrValidation, deck)
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("%w: cards for deck %q is not an array", shared.ErrProtocol, deck)
	}

	cards := []models.Flashcard{}
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("%w: malformed cards for deck %q: %w", shared.ErrProtocol, deck, err)
	}
	return cards, nil
}

// SaveCards calls PUT /api/cards/csv/{deckName} with the full card array. A nil slice is sent as [].
func (c *Client) SaveCards(ctx context.Context, deck string, cards []models.Flashcard) error {
	if cards == nil {
		cards = []models.Flashcard{}
	}
	if err := c.doJSON(ctx, http.MethodPut, escapedPath("/api/cards/csv/", deck), cards, nil); err != nil {
		return err
	}
	c.logger.Debug("saved cards", "deck", deck, "count", len(cards))
	return nil
}

// ExportPackage calls GET /api/cards/apkg/{deckName}.
//
// A 404 also wraps [shared.ErrDeckNotFound].
// The response must be application/octet-stream with a non-empty body; anything else
// wraps [shared.ErrExportFailed] and returns no data.
func (c *Client) ExportPackage(ctx context.Context, deck string) (*models.Package, error) {
	req, err := c.newRequest(ctx, http.MethodGet, escapedPath("/api/cards/apkg/", deck), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", octetStream)

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrExportFailed, deckError(err, deck))
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil || mediaType != octetStream {
		return nil, fmt.Errorf("%w: %w: unexpected content type %q", shared.ErrExportFailed, shared.ErrProtocol, ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: failed to read package: %w", shared.ErrExportFailed, shared.ErrNetwork, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w: empty package", shared.ErrExportFailed, shared.ErrValidation)
	}

	return &models.Package{
		Deck:        deck,
		Filename:    models.PackageFilename(deck),
		ContentType: mediaType,
		Data:        data,
	}, nil
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) error {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceDown, err)
	}
	if resp.Status != "ok" {
		return fmt.Errorf("%w: status %q", shared.ErrServiceDown, resp.Status)
	}
	return nil
}
