package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Transcriber turns a voice note into text. lang is an ISO-639-1 hint ("it").
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, lang string) (string, error)
}

// Reader extracts text from an image following instruction.
type Reader interface {
	ReadImage(ctx context.Context, image []byte, mime, instruction string) (string, error)
}

// Synthesizer returns a single reply for persona + prompt.
type Synthesizer interface {
	Synthesize(ctx context.Context, persona, prompt string, temperature float32) (string, error)
}

// Engine is a provider able to serve every port.
type Engine interface {
	Name() string
	GetModel() string
	Transcriber
	Reader
	Synthesizer
}

var (
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrRateLimited   = errors.New("llm: rate limited")
	ErrNotConfigured = errors.New("llm: provider not configured")
	ErrUnsupported   = errors.New("llm: operation not supported by provider")
)

type Engines struct {
	OpenAI   Engine
	Gemini   Engine
	Deepseek Engine
	// Yandex only reads images.
	Yandex Reader
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(llmName)) {
	case "gpt", "openai":
		eng = e.OpenAI
	case "gemini":
		eng = e.Gemini
	case "deepseek":
		eng = e.Deepseek
	default:
		return nil, fmt.Errorf("unknown llm_name %q; use 'gpt', 'gemini' or 'deepseek'", llmName)
	}
	if eng == nil {
		return nil, fmt.Errorf("%s: %w", llmName, ErrNotConfigured)
	}
	return eng, nil
}

// GetReader also accepts OCR-only providers.
func (e *Engines) GetReader(name string) (Reader, error) {
	if strings.EqualFold(strings.TrimSpace(name), "yandex") {
		if e.Yandex == nil {
			return nil, fmt.Errorf("%s: %w", name, ErrNotConfigured)
		}
		return e.Yandex, nil
	}
	return e.GetEngine(name)
}
