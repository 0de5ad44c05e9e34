// Package app wires configuration into the pipeline shared by every binary.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"problem-reporter/api/internal/config"
	"problem-reporter/api/internal/extract"
	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/llm/deepseek"
	"problem-reporter/api/internal/llm/gemini"
	"problem-reporter/api/internal/llm/openai"
	"problem-reporter/api/internal/llm/yandex"
	"problem-reporter/api/internal/pipeline"
)

// Engines builds one engine per configured provider key.
func Engines(cfg *config.Config) *llm.Engines {
	engs := &llm.Engines{}
	if cfg.OpenAIAPIKey != "" {
		oe := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		oe.VisionModel = cfg.OpenAIVisionModel
		oe.TranscribeModel = cfg.OpenAITranscribeModel
		if cfg.OpenAIBaseURL != "" {
			oe.BaseURL = cfg.OpenAIBaseURL
		}
		engs.OpenAI = oe
	}
	if cfg.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.DeepseekAPIKey != "" {
		engs.Deepseek = deepseek.New(cfg.DeepseekAPIKey, cfg.DeepseekModel)
	}
	if cfg.YCOAuthToken != "" && cfg.YCFolderID != "" {
		engs.Yandex = yandex.New(cfg.YCOAuthToken, cfg.YCFolderID)
	}
	return engs
}

// Ports resolves the provider chosen for each port.
func Ports(cfg *config.Config, engs *llm.Engines) (pipeline.Ports, error) {
	stt, err := engs.GetEngine(cfg.STTProvider)
	if err != nil {
		return pipeline.Ports{}, fmt.Errorf("stt: %w", err)
	}
	ocr, err := engs.GetReader(cfg.OCRProvider)
	if err != nil {
		return pipeline.Ports{}, fmt.Errorf("ocr: %w", err)
	}
	synth, err := engs.GetEngine(cfg.SynthesisProvider)
	if err != nil {
		return pipeline.Ports{}, fmt.Errorf("synthesis: %w", err)
	}
	return pipeline.Ports{STT: stt, OCR: ocr, Synth: synth}, nil
}

func NewPipeline(cfg *config.Config, log *zap.Logger) (*pipeline.Pipeline, error) {
	ports, err := Ports(cfg, Engines(cfg))
	if err != nil {
		return nil, err
	}
	cache, err := extract.NewOCRCache(cfg.OCRCacheSize)
	if err != nil {
		return nil, fmt.Errorf("ocr cache: %w", err)
	}
	log.Info("pipeline ready",
		zap.String("stt", cfg.STTProvider),
		zap.String("ocr", cfg.OCRProvider),
		zap.String("synthesis", cfg.SynthesisProvider),
		zap.Int("max_concurrent_extractions", cfg.MaxConcurrentExtractions))
	return pipeline.New(ports, pipeline.Options{
		Temperature: cfg.Temperature,
		Extract: extract.Options{
			ScratchDir:    cfg.ScratchDir,
			MaxConcurrent: cfg.MaxConcurrentExtractions,
			Cache:         cache,
		},
	}, log), nil
}
