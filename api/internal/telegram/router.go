package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"problem-reporter/api/internal/pipeline/types"
)

// BotAPI is the part of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Runner interface {
	Run(ctx context.Context, sub types.Submission) (types.Artifact, error)
}

type Router struct {
	Bot    BotAPI
	Runner Runner
	Log    *zap.Logger

	MaxFileBytes int64
	Timeout      time.Duration
	HTTPClient   *http.Client

	sessions sessions
}

func NewRouter(bot BotAPI, runner Runner, maxFileBytes int64, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{Bot: bot, Runner: runner, Log: log, MaxFileBytes: maxFileBytes, Timeout: 180 * time.Second}
	r.sessions.now = time.Now
	return r
}

const (
	textStart = "Inviami una nota vocale con la descrizione del problema e, se serve, foto e documenti.\n" +
		"Se alleghi un foglio Excel o un documento Word descrivi le modifiche da applicare.\n\n" +
		"Comandi:\n/invia elabora quanto inviato\n/annulla scarta tutto\n/stato mostra cosa hai inviato"
	textEmpty      = "Non hai ancora inviato nulla. Manda una nota vocale o dei file, poi /invia."
	textCancelled  = "Ok, ho scartato quanto inviato."
	textNothing    = "Non c'era nulla da scartare."
	textWorking    = "Elaborazione in corso…"
	textFailed     = "Errore durante l'elaborazione del report"
	textTooLarge   = "File troppo grande: il limite è di %d MB."
	textDownload   = "Non sono riuscito a scaricare il file, riprova."
	textUnknownCmd = "Comando sconosciuto. Usa /start per l'elenco."
	textHint       = "Per descrivere il problema usa una nota vocale, poi /invia."
)

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.handleCommand(ctx, cid, msg.Command())
		return
	}
	if in, ok := fileOf(msg); ok {
		r.acceptFile(ctx, cid, in)
		return
	}
	if msg.Text != "" {
		r.send(cid, textHint)
	}
}

func (r *Router) handleCommand(ctx context.Context, cid int64, cmd string) {
	switch cmd {
	case "start", "help":
		r.send(cid, textStart)
	case "health":
		r.send(cid, "✅ OK")
	case "stato":
		audio, n := r.sessions.status(cid)
		voice := "no"
		if audio {
			voice = "sì"
		}
		r.send(cid, fmt.Sprintf("Nota vocale: %s\nFile allegati: %d", voice, n))
	case "annulla":
		if r.sessions.clear(cid) {
			r.send(cid, textCancelled)
		} else {
			r.send(cid, textNothing)
		}
	case "invia":
		r.submit(ctx, cid)
	default:
		r.send(cid, textUnknownCmd)
	}
}

func (r *Router) acceptFile(ctx context.Context, cid int64, in incoming) {
	log := r.Log.With(zap.Int64("chat", cid), zap.String("stage", "telegram.download"), zap.String("file", in.name))
	data, err := r.fetch(ctx, in)
	switch {
	case errors.Is(err, errFileTooLarge):
		r.send(cid, fmt.Sprintf(textTooLarge, r.MaxFileBytes>>20))
		return
	case err != nil:
		log.Warn("download failed", zap.Error(err))
		r.send(cid, textDownload)
		return
	}

	if in.audio {
		if r.sessions.setAudio(cid, in.name, data) {
			r.send(cid, "Nota vocale sostituita. Invia altri file oppure /invia.")
		} else {
			r.send(cid, "Nota vocale ricevuta. Invia altri file oppure /invia.")
		}
		return
	}
	n := r.sessions.addAttachment(cid, in.attachment(data))
	if n == 1 {
		r.send(cid, "File ricevuto. Puoi inviarne altri, poi /invia.")
	}
}

func (r *Router) submit(ctx context.Context, cid int64) {
	sub, ok := r.sessions.take(cid)
	if !ok {
		r.send(cid, textEmpty)
		return
	}
	r.send(cid, textWorking)

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	art, err := r.Runner.Run(ctx, sub)
	if err != nil {
		r.Log.Error("submission failed", zap.Int64("chat", cid), zap.String("stage", "telegram"), zap.Error(err))
		r.send(cid, textFailed)
		return
	}
	r.deliver(cid, art)
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.Log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}
