package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"problem-reporter/api/internal/llm"
	"problem-reporter/api/internal/office"
	"problem-reporter/api/internal/pipeline/types"
)

// Sentinels embedded in place of text when a modality cannot be read.
const (
	AudioFailed    = "[Errore nella trascrizione audio]"
	ImageFailed    = "[Errore nell'estrazione del testo dall'immagine]"
	DocumentFailed = "[Errore nella lettura del documento]"
)

const (
	transcriptLang = "it"

	imageInstruction = "Estrai tutto il testo visibile in questa immagine. " +
		"Se l'immagine contiene una tabella, riportala come testo semplice mantenendo righe e colonne, " +
		"separando le colonne con \" | \" e le righe con un a capo. " +
		"Rispondi solo con il testo estratto, senza commenti."
)

type Options struct {
	ScratchDir string
	// MaxConcurrent bounds simultaneous extractor calls; 1 serializes them.
	MaxConcurrent int
	Cache         *OCRCache
}

// Extractor turns raw submission bytes into ExtractedEvidence.
type Extractor struct {
	stt  llm.Transcriber
	ocr  llm.Reader
	opts Options
	log  *zap.Logger
}

func New(stt llm.Transcriber, ocr llm.Reader, opts Options, log *zap.Logger) *Extractor {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.ScratchDir == "" {
		opts.ScratchDir = os.TempDir()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{stt: stt, ocr: ocr, opts: opts, log: log}
}

// Extract runs every extractor concurrently. Per-file failures are replaced by
// sentinels; the only error returned is the context's.
func (x *Extractor) Extract(ctx context.Context, sub types.Submission) (types.ExtractedEvidence, error) {
	log := x.log.With(zap.String("submission", sub.ID))

	var (
		transcript string
		images     = make([]*types.ImageText, len(sub.Attachments))
		sheets     = make([][][]string, len(sub.Attachments))
		docs       = make([]*string, len(sub.Attachments))
		files      = make([]types.FileSummary, len(sub.Attachments))
	)

	var g errgroup.Group
	g.SetLimit(x.opts.MaxConcurrent)

	if sub.HasAudio() {
		g.Go(func() error {
			transcript = x.Audio(ctx, sub.Audio, sub.AudioName, log)
			return nil
		})
	}

	seenDoc := false
	for i, a := range sub.Attachments {
		files[i] = Summarize(a)
		switch kindOf(a) {
		case kindImage:
			g.Go(func() error {
				images[i] = &types.ImageText{Filename: a.Filename, ExtractedText: x.Image(ctx, a, log)}
				return nil
			})
		case kindSpreadsheet:
			g.Go(func() error {
				if rows, ok := x.Spreadsheet(a, log); ok {
					sheets[i] = rows
				}
				return nil
			})
		case kindDocument:
			if seenDoc {
				log.Info("additional document ignored for modification",
					zap.String("stage", "extract.document"), zap.String("file", a.Filename))
				continue
			}
			seenDoc = true
			g.Go(func() error {
				text := x.Document(a, log)
				docs[i] = &text
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return types.ExtractedEvidence{}, err
	}

	ev := types.ExtractedEvidence{
		Transcript: transcript,
		Images:     []types.ImageText{},
		Files:      files,
	}
	for i, a := range sub.Attachments {
		if images[i] != nil {
			ev.Images = append(ev.Images, *images[i])
		}
		if sheets[i] != nil {
			if ev.Spreadsheet == nil {
				ev.Spreadsheet = &types.SpreadsheetCapture{Filename: a.Filename, Rows: sheets[i]}
			} else {
				log.Info("additional spreadsheet ignored for modification",
					zap.String("stage", "extract.spreadsheet"), zap.String("file", a.Filename))
			}
		}
		if docs[i] != nil {
			ev.Document = &types.DocumentCapture{Filename: a.Filename, Text: *docs[i]}
		}
	}
	return ev, nil
}

// Audio stages the voice note in the scratch dir, transcribes it and removes the
// scratch file before returning, whatever the outcome.
func (x *Extractor) Audio(ctx context.Context, data []byte, name string, log *zap.Logger) string {
	log = log.With(zap.String("stage", "extract.audio"), zap.String("file", name))
	text, err := x.transcribe(ctx, data, name)
	if err != nil {
		log.Warn("audio transcription failed", zap.Error(err))
		return AudioFailed
	}
	return text
}

func (x *Extractor) transcribe(ctx context.Context, data []byte, name string) (string, error) {
	if x.stt == nil {
		return "", llm.ErrNotConfigured
	}
	if err := os.MkdirAll(x.opts.ScratchDir, 0o700); err != nil {
		return "", fmt.Errorf("scratch dir: %w", err)
	}
	tmp, err := os.CreateTemp(x.opts.ScratchDir, "audio_*"+Extension(name))
	if err != nil {
		return "", fmt.Errorf("scratch file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("scratch write: %w", err)
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("scratch seek: %w", err)
	}
	defer tmp.Close()

	if name == "" {
		name = "audio.wav"
	}
	return x.stt.Transcribe(ctx, tmp, name, transcriptLang)
}

// Image returns the text read from one image, or ImageFailed.
func (x *Extractor) Image(ctx context.Context, a types.Attachment, log *zap.Logger) string {
	log = log.With(zap.String("stage", "extract.image"), zap.String("file", a.Filename))
	if text, ok := x.opts.Cache.Get(a.Data); ok {
		log.Debug("ocr cache hit")
		return text
	}
	if x.ocr == nil {
		log.Warn("image extraction failed", zap.Error(llm.ErrNotConfigured))
		return ImageFailed
	}
	text, err := x.ocr.ReadImage(ctx, a.Data, a.MimeType, imageInstruction)
	if err != nil {
		log.Warn("image extraction failed", zap.Error(err))
		return ImageFailed
	}
	text = strings.TrimSpace(text)
	x.opts.Cache.Add(a.Data, text)
	return text
}

// Spreadsheet decodes the first sheet. ok=false means the file is not captured.
func (x *Extractor) Spreadsheet(a types.Attachment, log *zap.Logger) ([][]string, bool) {
	rows, err := office.DecodeXLSX(a.Data)
	if err != nil {
		log.Warn("spreadsheet decode failed; file not used for modification",
			zap.String("stage", "extract.spreadsheet"), zap.String("file", a.Filename), zap.Error(err))
		return nil, false
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, true
}

// Document returns the plain text of a .docx, or DocumentFailed.
func (x *Extractor) Document(a types.Attachment, log *zap.Logger) string {
	text, err := office.DocxText(a.Data)
	if err != nil {
		log.Warn("document decode failed",
			zap.String("stage", "extract.document"), zap.String("file", a.Filename), zap.Error(err))
		return DocumentFailed
	}
	return text
}
