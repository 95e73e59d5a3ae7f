package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GenerateRequest is one generateContent call: a text prompt, an optional
// uploaded file reference, and the sampling/budget knobs for this call type.
type GenerateRequest struct {
	Prompt          string
	File            *File  // optional
	MimeType        string // required when File is set
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

type generatePayload struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	FileData *fileData `json:"file_data,omitempty"`
	Text     string    `json:"text,omitempty"`
}

type fileData struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResp struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate issues one generation call and returns the produced text. A
// non-success status is a TransportError; a success response without a text
// part is a ShapeError.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var parts []part
	if req.File != nil {
		parts = append(parts, part{FileData: &fileData{MimeType: req.MimeType, FileURI: req.File.URI}})
	}
	parts = append(parts, part{Text: req.Prompt})

	payload, err := json.Marshal(generatePayload{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	hc := &http.Client{Timeout: req.Timeout}
	resp, err := hc.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{Op: "generate", Status: resp.StatusCode, Body: string(body)}
	}

	var gr generateResp
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", &ShapeError{Op: "generate", Raw: string(body)}
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", &ShapeError{Op: "generate", Raw: string(body)}
	}
	text := gr.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", &ShapeError{Op: "generate", Raw: string(body)}
	}
	return text, nil
}
