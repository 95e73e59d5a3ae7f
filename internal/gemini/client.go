package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// File states reported by the service. Transitions are owned entirely by the
// remote side; the client only polls and observes.
const (
	StateProcessing = "PROCESSING"
	StateActive     = "ACTIVE"
	StateFailed     = "FAILED"
)

// File is the service's handle for an uploaded file.
type File struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	State       string `json:"state"`
}

// Client talks to the Gemini REST API: file listing, resumable uploads,
// readiness polling, and content generation. No state is kept between calls.
type Client struct {
	apiKey       string
	model        string
	baseURL      string
	pollInterval time.Duration
	reuseUploads bool
	hc           *http.Client
	log          *zap.SugaredLogger
}

type Option func(*Client)

// WithBaseURL overrides the service endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the transport used for non-generate calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithPollInterval sets the readiness polling interval (default 3s).
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithReuseUploads toggles reuse of an already-ACTIVE remote file with the
// same display name instead of re-uploading (default on).
func WithReuseUploads(reuse bool) Option {
	return func(c *Client) { c.reuseUploads = reuse }
}

func NewClient(apiKey, model string, log *zap.SugaredLogger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key required (set GEMINI_API_KEY or pass --api-key)")
	}
	c := &Client{
		apiKey:       apiKey,
		model:        model,
		baseURL:      defaultBaseURL,
		pollInterval: 3 * time.Second,
		reuseUploads: true,
		hc:           &http.Client{Timeout: 60 * time.Second},
		log:          log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type listFilesResp struct {
	Files []File `json:"files"`
}

// FindExisting returns the first ACTIVE file with the given display name, or
// nil when there is none. The service lists newest first, so on duplicate
// display names the most recently created upload wins.
func (c *Client) FindExisting(ctx context.Context, displayName string) (*File, error) {
	url := fmt.Sprintf("%s/v1beta/files?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, &TransportError{Op: "list files", Status: resp.StatusCode, Body: string(b)}
	}
	var lr listFilesResp
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("gemini list files: decode: %w", err)
	}
	for _, f := range lr.Files {
		if f.DisplayName == displayName && f.State == StateActive {
			found := f
			return &found, nil
		}
	}
	return nil, nil
}

type uploadResp struct {
	File File `json:"file"`
}

// Upload sends a local file to the service with the two-phase resumable
// protocol: announce size/type/name, then transfer the bytes to the URL the
// service hands back. With reuse enabled, an ACTIVE file with the same
// display name short-circuits the upload entirely.
func (c *Client) Upload(ctx context.Context, path, displayName, mimeType string) (*File, error) {
	if c.reuseUploads {
		existing, err := c.FindExisting(ctx, displayName)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			c.log.Infof("using existing upload: %s", existing.Name)
			return existing, nil
		}
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	c.log.Infof("uploading %s (%.1f MB)", filepath.Base(path), float64(size)/(1024*1024))

	// Phase 1: initiate.
	meta, err := json.Marshal(map[string]any{
		"file": map[string]any{"display_name": displayName},
	})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/upload/v1beta/files?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(meta))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.FormatInt(size, 10))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	initBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "initiate upload", Status: resp.StatusCode, Body: string(initBody)}
	}
	uploadURL := resp.Header.Get("X-Goog-Upload-URL")
	if uploadURL == "" {
		return nil, &ShapeError{Op: "initiate upload", Raw: "no X-Goog-Upload-URL header in response"}
	}

	// Phase 2: transfer bytes.
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, f)
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	req.Header.Set("X-Goog-Upload-Command", "upload, finalize")
	req.Header.Set("X-Goog-Upload-Offset", "0")

	// Uploads can be large; no client-side timeout beyond ctx.
	hc := &http.Client{}
	resp, err = hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "upload", Status: resp.StatusCode, Body: string(body)}
	}
	var ur uploadResp
	if err := json.Unmarshal(body, &ur); err != nil || ur.File.URI == "" {
		return nil, &ShapeError{Op: "upload", Raw: string(body)}
	}
	return &ur.File, nil
}

// AwaitReady polls the service until the file leaves PROCESSING. FAILED is
// terminal. Callers bound the wait through ctx.
func (c *Client) AwaitReady(ctx context.Context, file *File) (*File, error) {
	id := strings.TrimPrefix(file.Name, "files/")
	url := fmt.Sprintf("%s/v1beta/files/%s?key=%s", c.baseURL, id, c.apiKey)

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, err
		}
		var cur File
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, &TransportError{Op: "poll file", Status: resp.StatusCode, Body: string(body)}
		}
		if err := json.Unmarshal(body, &cur); err != nil {
			return nil, &ShapeError{Op: "poll file", Raw: string(body)}
		}

		switch cur.State {
		case StateActive:
			return &cur, nil
		case StateFailed:
			return nil, &ProcessingError{Name: cur.Name}
		}

		c.log.Infof("processing... (state: %s)", cur.State)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// MimeType maps a chunk file extension to the MIME type announced on
// upload. Unknown extensions fall back to audio/wav.
func MimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mp3"
	case ".m4a":
		return "audio/m4a"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".aac":
		return "audio/aac"
	default:
		return "audio/wav"
	}
}
