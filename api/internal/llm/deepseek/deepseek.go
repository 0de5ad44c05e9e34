// Package deepseek talks to the DeepSeek chat API, which is wire-compatible
// with OpenAI chat completions but reads neither images nor audio.
package deepseek

import (
	"context"
	"fmt"
	"io"

	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/llm/openai"
)

const baseURL = "https://api.deepseek.com"

type Engine struct {
	*openai.Engine
}

func New(key, model string) *Engine {
	oe := openai.New(key, model)
	oe.BaseURL = baseURL
	return &Engine{Engine: oe}
}

func (e *Engine) Name() string { return "deepseek" }

func (e *Engine) ReadImage(context.Context, []byte, string, string) (string, error) {
	return "", fmt.Errorf("deepseek: image reading: %w", llm.ErrUnsupported)
}

func (e *Engine) Transcribe(context.Context, io.Reader, string, string) (string, error) {
	return "", fmt.Errorf("deepseek: transcription: %w", llm.ErrUnsupported)
}
