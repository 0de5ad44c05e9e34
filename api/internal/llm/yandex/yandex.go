// Package yandex reads text from images with Yandex Cloud Vision OCR.
// It serves only the image port.
package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/util"
)

const recognizeURL = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"

type Engine struct {
	tokens   *tokenSource
	folderID string
	url      string
	httpc    *http.Client

	Langs []string
	Model string
}

func New(oauth2Token, folderID string) *Engine {
	httpc := &http.Client{Timeout: 60 * time.Second}
	return &Engine{
		tokens:   newTokenSource(oauth2Token, httpc),
		folderID: folderID,
		url:      recognizeURL,
		httpc:    httpc,
		Langs:    []string{"it", "en"},
		Model:    "page",
	}
}

func (e *Engine) Name() string { return "yandex" }

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`      // "JPEG" | "PNG" | "PDF"
	LanguageCodes []string `json:"languageCodes,omitempty"` // ["it","en"]
	Model         string   `json:"model,omitempty"`         // "page" | "handwritten"
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
	} `json:"result,omitempty"`
}

// ReadImage ignores instruction: the OCR service has no prompt.
func (e *Engine) ReadImage(ctx context.Context, image []byte, mime, _ string) (string, error) {
	payload, err := json.Marshal(request{
		Content:       base64.StdEncoding.EncodeToString(image),
		MimeType:      ocrMime(util.PickMIME(mime, image)),
		LanguageCodes: e.Langs,
		Model:         e.Model,
	})
	if err != nil {
		return "", err
	}

	resp, err := e.do(ctx, payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// one retry with a fresh IAM token
		resp.Body.Close()
		e.tokens.reset()
		if resp, err = e.do(ctx, payload); err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("yandex ocr: %w", llm.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("yandex ocr %d: %s", resp.StatusCode, string(x))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("yandex ocr: decode: %w", err)
	}
	if out.Result == nil || out.Result.TextAnnotation == nil {
		return "", fmt.Errorf("yandex ocr: %w", llm.ErrEmptyResponse)
	}
	ta := out.Result.TextAnnotation
	if t := strings.TrimSpace(ta.FullText); t != "" {
		return t, nil
	}
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("yandex ocr: %w", llm.ErrEmptyResponse)
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Engine) do(ctx context.Context, payload []byte) (*http.Response, error) {
	token, err := e.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-folder-id", e.folderID)
	return e.httpc.Do(req)
}

func ocrMime(mime string) string {
	switch {
	case strings.Contains(mime, "png"):
		return "PNG"
	case strings.Contains(mime, "pdf"):
		return "PDF"
	default:
		return "JPEG"
	}
}
