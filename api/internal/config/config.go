package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "REPORTER_CONFIG"

type Config struct {
	Port string `yaml:"port"`

	OpenAIAPIKey          string `yaml:"openaiApiKey"`
	OpenAIModel           string `yaml:"openaiModel"`
	OpenAIVisionModel     string `yaml:"openaiVisionModel"`
	OpenAITranscribeModel string `yaml:"openaiTranscribeModel"`
	OpenAIBaseURL         string `yaml:"openaiBaseUrl"`
	GeminiAPIKey          string `yaml:"geminiApiKey"`
	GeminiModel           string `yaml:"geminiModel"`
	DeepseekAPIKey        string `yaml:"deepseekApiKey"`
	DeepseekModel         string `yaml:"deepseekModel"`
	YCOAuthToken          string `yaml:"ycOauthToken"`
	YCFolderID            string `yaml:"ycFolderId"`

	// Provider per port: "gpt" | "gemini", plus "deepseek" for synthesis and "yandex" for OCR.
	SynthesisProvider string `yaml:"synthesisProvider"`
	OCRProvider       string `yaml:"ocrProvider"`
	STTProvider       string `yaml:"sttProvider"`

	Temperature              float32 `yaml:"temperature"`
	MaxUploadBytes           int64   `yaml:"maxUploadBytes"`
	MaxConcurrentExtractions int     `yaml:"maxConcurrentExtractions"`
	OCRCacheSize             int     `yaml:"ocrCacheSize"`
	ScratchDir               string  `yaml:"scratchDir"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	TelegramBotToken string `yaml:"telegramBotToken"`
	WebhookURL       string `yaml:"webhookUrl"`
}

func Default() Config {
	return Config{
		Port:                     "3001",
		OpenAIModel:              "gpt-4",
		OpenAIVisionModel:        "gpt-4o",
		OpenAITranscribeModel:    "whisper-1",
		OpenAIBaseURL:            "https://api.openai.com",
		GeminiModel:              "gemini-2.5-flash",
		DeepseekModel:            "deepseek-chat",
		SynthesisProvider:        "gpt",
		OCRProvider:              "gpt",
		STTProvider:              "gpt",
		Temperature:              0.3,
		MaxUploadBytes:           50 << 20,
		MaxConcurrentExtractions: 4,
		OCRCacheSize:             256,
		ScratchDir:               filepath.Join(os.TempDir(), "reporter"),
		LogLevel:                 "info",
		LogFormat:                "json",
	}
}

// Load reads .env (if present), then the YAML file named by REPORTER_CONFIG,
// then applies environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(configPathEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setStr(&c.Port, "PORT")
	setStr(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setStr(&c.OpenAIModel, "OPENAI_MODEL")
	setStr(&c.OpenAIVisionModel, "OPENAI_VISION_MODEL")
	setStr(&c.OpenAITranscribeModel, "OPENAI_TRANSCRIBE_MODEL")
	setStr(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setStr(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setStr(&c.GeminiModel, "GEMINI_MODEL")
	setStr(&c.DeepseekAPIKey, "DEEPSEEK_API_KEY")
	setStr(&c.DeepseekModel, "DEEPSEEK_MODEL")
	setStr(&c.YCOAuthToken, "YC_OAUTH_TOKEN")
	setStr(&c.YCFolderID, "YC_FOLDER_ID")
	setStr(&c.SynthesisProvider, "SYNTHESIS_PROVIDER")
	setStr(&c.OCRProvider, "OCR_PROVIDER")
	setStr(&c.STTProvider, "STT_PROVIDER")
	setStr(&c.ScratchDir, "SCRATCH_DIR")
	setStr(&c.LogLevel, "LOG_LEVEL")
	setStr(&c.LogFormat, "LOG_FORMAT")
	setStr(&c.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setStr(&c.WebhookURL, "WEBHOOK_URL")

	if v := getEnv("SYNTHESIS_TEMPERATURE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("config: SYNTHESIS_TEMPERATURE: %w", err)
		}
		c.Temperature = float32(f)
	}
	if v := getEnv("MAX_UPLOAD_BYTES", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	if v := getEnv("MAX_CONCURRENT_EXTRACTIONS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MAX_CONCURRENT_EXTRACTIONS: %w", err)
		}
		c.MaxConcurrentExtractions = n
	}
	if v := getEnv("OCR_CACHE_SIZE", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: OCR_CACHE_SIZE: %w", err)
		}
		c.OCRCacheSize = n
	}
	return nil
}

// Validate checks that every selected provider has its credentials.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" && c.GeminiAPIKey == "" && c.DeepseekAPIKey == "" && c.YCOAuthToken == "" {
		return errors.New("config: set OPENAI_API_KEY, GEMINI_API_KEY, DEEPSEEK_API_KEY or YC_OAUTH_TOKEN")
	}
	ports := []struct {
		name, provider string
		extra          string
	}{
		{"STT_PROVIDER", c.STTProvider, ""},
		{"OCR_PROVIDER", c.OCRProvider, "yandex"},
		{"SYNTHESIS_PROVIDER", c.SynthesisProvider, "deepseek"},
	}
	for _, p := range ports {
		if err := c.checkProvider(p.name, p.provider, p.extra); err != nil {
			return err
		}
	}
	if c.MaxConcurrentExtractions < 1 {
		c.MaxConcurrentExtractions = 1
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be > 0")
	}
	return nil
}

// checkProvider validates one port; extra names a provider only that port accepts.
func (c *Config) checkProvider(port, provider, extra string) error {
	name := strings.ToLower(strings.TrimSpace(provider))
	switch {
	case name == "gpt" || name == "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("config: %s=%s requires OPENAI_API_KEY", port, provider)
		}
	case name == "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config: %s=%s requires GEMINI_API_KEY", port, provider)
		}
	case name == "deepseek" && name == extra:
		if c.DeepseekAPIKey == "" {
			return fmt.Errorf("config: %s=%s requires DEEPSEEK_API_KEY", port, provider)
		}
	case name == "yandex" && name == extra:
		if c.YCOAuthToken == "" || c.YCFolderID == "" {
			return fmt.Errorf("config: %s=%s requires YC_OAUTH_TOKEN and YC_FOLDER_ID", port, provider)
		}
	default:
		return fmt.Errorf("config: %s: unknown provider %q", port, provider)
	}
	return nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func setStr(dst *string, k string) {
	if v := getEnv(k, ""); v != "" {
		*dst = v
	}
}
