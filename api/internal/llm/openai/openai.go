package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/util"
)

const defaultBaseURL = "https://api.openai.com"

type Engine struct {
	APIKey          string
	Model           string
	VisionModel     string
	TranscribeModel string
	BaseURL         string
	httpc           *http.Client
}

func New(key, model string) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   16,
	}
	return &Engine{
		APIKey:          key,
		Model:           model,
		VisionModel:     "gpt-4o",
		TranscribeModel: "whisper-1",
		BaseURL:         defaultBaseURL,
		httpc:           &http.Client{Timeout: 180 * time.Second, Transport: tr},
	}
}

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts or tests).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) endpoint(path string) string {
	base := strings.TrimRight(e.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + path
}

// Synthesize sends a system + user chat completion.
func (e *Engine) Synthesize(ctx context.Context, persona, prompt string, temperature float32) (string, error) {
	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": persona},
			map[string]any{"role": "user", "content": prompt},
		},
		"temperature": temperature,
	}
	return e.chat(ctx, "synthesis", body)
}

// ReadImage asks the vision model to transcribe the image following instruction.
func (e *Engine) ReadImage(ctx context.Context, image []byte, mime, instruction string) (string, error) {
	dataURL := util.MakeDataURL(util.PickMIME(mime, image), base64.StdEncoding.EncodeToString(image))
	model := e.VisionModel
	if model == "" {
		model = e.Model
	}
	body := map[string]any{
		"model": model,
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": instruction},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
				},
			},
		},
		"max_tokens":  2000,
		"temperature": 0,
	}
	out, err := e.chat(ctx, "ocr", body)
	if err != nil {
		return "", err
	}
	return util.StripCodeFences(out), nil
}

func (e *Engine) chat(ctx context.Context, op string, body map[string]any) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is empty")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint("/v1/chat/completions"), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := statusError(op, resp); err != nil {
		return "", err
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openai %s: decode: %w", op, err)
	}
	if len(raw.Choices) == 0 || strings.TrimSpace(raw.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai %s: %w", op, llm.ErrEmptyResponse)
	}
	return strings.TrimSpace(raw.Choices[0].Message.Content), nil
}

// Transcribe uploads audio to the transcription endpoint as multipart/form-data.
func (e *Engine) Transcribe(ctx context.Context, audio io.Reader, filename, lang string) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is empty")
	}
	if filename == "" {
		filename = "audio.wav"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			fw, err := mw.CreateFormFile("file", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(fw, audio); err != nil {
				return err
			}
			if err := mw.WriteField("model", e.TranscribeModel); err != nil {
				return err
			}
			if lang != "" {
				if err := mw.WriteField("language", lang); err != nil {
					return err
				}
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint("/v1/audio/transcriptions"), pr)
	if err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	defer resp.Body.Close()
	if err := statusError("transcription", resp); err != nil {
		return "", err
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai transcription: decode: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}

func statusError(op string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("openai %s: %w: %s", op, llm.ErrRateLimited, strings.TrimSpace(string(x)))
	}
	return fmt.Errorf("openai %s %d: %s", op, resp.StatusCode, strings.TrimSpace(string(x)))
}
