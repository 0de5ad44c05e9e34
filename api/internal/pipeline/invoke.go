package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/pipeline/types"
)

// DefaultTemperature keeps replies close to deterministic.
const DefaultTemperature float32 = 0.3

const (
	reportPersona = "Sei un assistente esperto nell'analisi di problemi tecnici e professionali. " +
		"Rispondi sempre in italiano e fornisci analisi dettagliate e professionali, " +
		"esaustive per un operatore tecnico e complete di ogni passaggio."
	modificationPersona = "Sei un assistente esperto nella modifica di fogli di calcolo e documenti aziendali. " +
		"Rispondi sempre in italiano con un linguaggio professionale e tecnico, " +
		"applica solo le modifiche richieste e restituisci sempre il contenuto completo."
)

// Persona returns the system instruction used for mode.
func Persona(mode types.Mode) string {
	if mode.IsReport() {
		return reportPersona
	}
	return modificationPersona
}

// Invoker makes the single synthesis call of a submission.
type Invoker struct {
	Synth       llm.Synthesizer
	Temperature float32
	Log         *zap.Logger
}

// Invoke never fails upward: ok=false means the caller must use the mode default.
func (iv *Invoker) Invoke(ctx context.Context, mode types.Mode, prompt string) (string, bool) {
	log := iv.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("stage", "synthesis"), zap.Stringer("mode", mode))

	if iv.Synth == nil {
		log.Warn("synthesis unavailable", zap.Error(llm.ErrNotConfigured))
		return "", false
	}

	started := time.Now()
	reply, err := iv.Synth.Synthesize(ctx, Persona(mode), prompt, iv.Temperature)
	if err != nil {
		log.Warn("synthesis failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return "", false
	}
	if strings.TrimSpace(reply) == "" {
		log.Warn("synthesis failed", zap.Error(llm.ErrEmptyResponse))
		return "", false
	}
	log.Debug("synthesis done", zap.Int("reply_len", len(reply)), zap.Duration("elapsed", time.Since(started)))
	return reply, true
}
