package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"problem-reporter/api/internal/config"
	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/llm/deepseek"
	"problem-reporter/api/internal/llm/openai"
	"problem-reporter/api/internal/llm/yandex"
)

func TestEnginesOnlyForConfiguredKeys(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAIAPIKey = "sk-test"
	cfg.OpenAIBaseURL = "http://localhost:9999"

	engs := Engines(&cfg)
	require.NotNil(t, engs.OpenAI)
	assert.Nil(t, engs.Gemini)
	oe := engs.OpenAI.(*openai.Engine)
	assert.Equal(t, "gpt-4", oe.Model)
	assert.Equal(t, "gpt-4o", oe.VisionModel)
	assert.Equal(t, "whisper-1", oe.TranscribeModel)
	assert.Equal(t, "http://localhost:9999", oe.BaseURL)
}

func TestPortsRequireConfiguredProvider(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAIAPIKey = "sk-test"
	cfg.OCRProvider = "gemini"

	_, err := Ports(&cfg, Engines(&cfg))
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	cfg.OCRProvider = "gpt"
	ports, err := Ports(&cfg, Engines(&cfg))
	require.NoError(t, err)
	assert.NotNil(t, ports.Synth)
}

func TestPortsMixProviders(t *testing.T) {
	cfg := config.Default()
	cfg.OpenAIAPIKey = "sk-test"
	cfg.DeepseekAPIKey = "ds"
	cfg.YCOAuthToken, cfg.YCFolderID = "oauth", "folder"
	cfg.OCRProvider = "yandex"
	cfg.SynthesisProvider = "deepseek"
	require.NoError(t, cfg.Validate())

	ports, err := Ports(&cfg, Engines(&cfg))
	require.NoError(t, err)
	assert.IsType(t, &yandex.Engine{}, ports.OCR)
	assert.IsType(t, &deepseek.Engine{}, ports.Synth)
	assert.IsType(t, &openai.Engine{}, ports.STT)
}

func TestNewPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.GeminiAPIKey = "g-test"
	cfg.STTProvider, cfg.OCRProvider, cfg.SynthesisProvider = "gemini", "gemini", "gemini"
	cfg.ScratchDir = t.TempDir()

	p, err := NewPipeline(&cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, p)
}
