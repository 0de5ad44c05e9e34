package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"problem-reporter/api/internal/extract"
	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/pipeline/types"
)

// Ports are the external services, built once in main and shared by every run.
type Ports struct {
	STT   llm.Transcriber
	OCR   llm.Reader
	Synth llm.Synthesizer
}

type Options struct {
	Temperature float32
	Extract     extract.Options
}

// Pipeline turns one Submission into one Artifact. It holds no per-submission state.
type Pipeline struct {
	extractor *extract.Extractor
	invoker   *Invoker
	log       *zap.Logger
	now       func() time.Time
}

func New(ports Ports, opts Options, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		extractor: extract.New(ports.STT, ports.OCR, opts.Extract, log),
		invoker:   &Invoker{Synth: ports.Synth, Temperature: opts.Temperature, Log: log},
		log:       log,
		now:       time.Now,
	}
}

// Run executes extract, classify, prompt, synthesize, parse and render.
// Only ctx cancellation and ErrRender are returned as errors.
func (p *Pipeline) Run(ctx context.Context, sub types.Submission) (types.Artifact, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	base := p.log.With(zap.String("submission", sub.ID))
	started := time.Now()

	ev, err := p.extractor.Extract(ctx, sub)
	if err != nil {
		return nil, err
	}

	mode := Classify(ev)
	log := base.With(zap.Stringer("mode", mode))
	log.Info("submission classified",
		zap.Bool("audio", sub.HasAudio()),
		zap.Int("attachments", len(sub.Attachments)),
		zap.Int("images", len(ev.Images)))

	prompt := BuildPrompt(mode, ev)
	iv := *p.invoker
	iv.Log = base
	reply, ok := iv.Invoke(ctx, mode, prompt)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var art types.Artifact
	if mode.IsReport() {
		out, parsed := ParseReport(reply)
		if ok && !parsed {
			log.Warn("unparseable reply, using default report", zap.String("stage", "parse"))
		}
		art = RenderReport(ev, out, p.now())
	} else {
		out, parsed := ParseModification(reply, mode.Target, ev)
		if ok && !parsed {
			log.Warn("unparseable reply, keeping original content", zap.String("stage", "parse"))
		}
		fm, err := RenderModification(mode, ev, out, p.now())
		if err != nil {
			log.Error("render failed", zap.String("stage", "render"), zap.Error(err))
			return nil, err
		}
		art = fm
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("submission done", zap.String("artifact", art.ArtifactType()), zap.Duration("elapsed", time.Since(started)))
	return art, nil
}
