package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		configPathEnv, "PORT", "OPENAI_API_KEY", "OPENAI_MODEL", "GEMINI_API_KEY", "GEMINI_MODEL",
		"SYNTHESIS_PROVIDER", "OCR_PROVIDER", "STT_PROVIDER", "SYNTHESIS_TEMPERATURE",
		"MAX_UPLOAD_BYTES", "MAX_CONCURRENT_EXTRACTIONS", "OCR_CACHE_SIZE",
		"DEEPSEEK_API_KEY", "DEEPSEEK_MODEL", "YC_OAUTH_TOKEN", "YC_FOLDER_ID",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, float32(0.3), cfg.Temperature)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "gpt", cfg.SynthesisProvider)
	assert.Equal(t, "whisper-1", cfg.OpenAITranscribeModel)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "reporter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
geminiApiKey: g-key
synthesisProvider: gemini
ocrProvider: gemini
sttProvider: gemini
maxConcurrentExtractions: 2
`), 0o600))
	t.Setenv(configPathEnv, path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini", cfg.SynthesisProvider)
	assert.Equal(t, 2, cfg.MaxConcurrentExtractions)
}

func TestLoadRejectsMissingKeys(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("GEMINI_API_KEY", "g-key")
	// default providers are gpt
	_, err = Load()
	assert.ErrorContains(t, err, "requires OPENAI_API_KEY")
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SYNTHESIS_TEMPERATURE", "tiepido")
	_, err := Load()
	assert.ErrorContains(t, err, "SYNTHESIS_TEMPERATURE")
}

func TestLoadZeroTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SYNTHESIS_TEMPERATURE", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Temperature)
}

func TestValidateUnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.OpenAIAPIKey = "sk"
	cfg.OCRProvider = "tesseract"
	assert.ErrorContains(t, cfg.Validate(), "unknown provider")
}

func TestValidatePortSpecificProviders(t *testing.T) {
	cfg := Default()
	cfg.OpenAIAPIKey = "sk"

	cfg.OCRProvider = "yandex"
	assert.ErrorContains(t, cfg.Validate(), "requires YC_OAUTH_TOKEN and YC_FOLDER_ID")
	cfg.YCOAuthToken, cfg.YCFolderID = "oauth", "folder"
	assert.NoError(t, cfg.Validate())

	cfg.SynthesisProvider = "deepseek"
	assert.ErrorContains(t, cfg.Validate(), "requires DEEPSEEK_API_KEY")
	cfg.DeepseekAPIKey = "ds"
	assert.NoError(t, cfg.Validate())

	// yandex cannot synthesize, deepseek cannot transcribe
	cfg.SynthesisProvider = "yandex"
	assert.ErrorContains(t, cfg.Validate(), "SYNTHESIS_PROVIDER: unknown provider")
	cfg.SynthesisProvider = "gpt"
	cfg.STTProvider = "deepseek"
	assert.ErrorContains(t, cfg.Validate(), "STT_PROVIDER: unknown provider")
}
