package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Synthesize(ctx context.Context, persona, prompt string, temperature float32) (string, error) {
	return e.generate(ctx, "synthesis", func(m *genai.GenerativeModel) []genai.Part {
		m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(temperature)}
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(persona)}}
		return []genai.Part{genai.Text(prompt)}
	})
}

func (e *Engine) ReadImage(ctx context.Context, image []byte, mime, instruction string) (string, error) {
	out, err := e.generate(ctx, "ocr", func(m *genai.GenerativeModel) []genai.Part {
		m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0)}
		return []genai.Part{
			genai.Text(instruction),
			genai.Blob{MIMEType: util.PickMIME(mime, image), Data: image},
		}
	})
	if err != nil {
		return "", err
	}
	return util.StripCodeFences(out), nil
}

// Transcribe sends the audio inline; Gemini accepts audio blobs up to the request size limit.
func (e *Engine) Transcribe(ctx context.Context, audio io.Reader, filename, lang string) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", fmt.Errorf("gemini transcription: read audio: %w", err)
	}
	instruction := "Trascrivi fedelmente questo messaggio vocale. Rispondi solo con la trascrizione, senza commenti."
	if lang != "" && lang != "it" {
		instruction = fmt.Sprintf("Transcribe this voice message verbatim (language: %s). Reply with the transcript only.", lang)
	}
	return e.generate(ctx, "transcription", func(m *genai.GenerativeModel) []genai.Part {
		m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0)}
		return []genai.Part{
			genai.Text(instruction),
			genai.Blob{MIMEType: audioMIME(filename, data), Data: data},
		}
	})
}

func (e *Engine) generate(ctx context.Context, op string, build func(m *genai.GenerativeModel) []genai.Part) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	parts := build(m)

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", op, err)
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return "", fmt.Errorf("gemini %s: %w", op, llm.ErrEmptyResponse)
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func audioMIME(filename string, data []byte) string {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".mp3"):
		return "audio/mp3"
	case strings.HasSuffix(name, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(name, ".ogg"), strings.HasSuffix(name, ".oga"):
		return "audio/ogg"
	case strings.HasSuffix(name, ".webm"):
		return "audio/webm"
	case strings.HasSuffix(name, ".m4a"), strings.HasSuffix(name, ".aac"):
		return "audio/aac"
	}
	if mt := util.SniffMimeHTTP(data); strings.HasPrefix(mt, "audio/") {
		return mt
	}
	return "audio/wav"
}

func ptrFloat32(v float32) *float32 { return &v }
