package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"problem-reporter/api/internal/app"
	"problem-reporter/api/internal/config"
	"problem-reporter/api/internal/httpserver"
	"problem-reporter/api/internal/logging"
	"problem-reporter/api/internal/telegram"
	"problem-reporter/api/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}

	p, err := app.NewPipeline(cfg, logger)
	if err != nil {
		logger.Fatal("pipeline", zap.Error(err))
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("telegram", zap.Error(err))
	}
	bot.Debug = false

	r := telegram.NewRouter(bot, p, cfg.MaxUploadBytes, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(ctx, addr, mux, bot, r, webhookURL, logger)
		return
	}
	startPollingMode(ctx, addr, mux, bot, r, logger)
}

// ---------------- Modes -----------------

// webhookHandler queues decoded updates; once ctx is done it answers 503
// instead of waiting on a consumer that has exited.
func webhookHandler(ctx context.Context, decode func(*http.Request) (*tgbotapi.Update, error), updates chan<- tgbotapi.Update, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		upd, err := decode(req)
		if err != nil {
			log.Warn("bad webhook update", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		select {
		case updates <- *upd:
		case <-ctx.Done():
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
		case <-req.Context().Done():
		}
	}
}

func startWebhookMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, log *zap.Logger) {
	path := "/webhook/" + util.SHA256Hex([]byte(bot.Token))[:16]
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal("webhook", zap.Error(err))
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal("set webhook", zap.Error(err))
	}

	updates := make(chan tgbotapi.Update, bot.Buffer)
	mux.Handle(path, webhookHandler(ctx, bot.HandleUpdate, updates, log))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				r.HandleUpdate(ctx, upd)
			}
		}
	}()

	log.Info("webhook mode", zap.String("path", path))
	if err := httpserver.Run(ctx, addr, mux, log); err != nil {
		log.Fatal("http server", zap.Error(err))
	}
}

func startPollingMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router, log *zap.Logger) {
	go func() {
		if err := httpserver.Run(ctx, addr, mux, log); err != nil {
			log.Error("health server", zap.Error(err))
		}
	}()

	log.Info("polling mode")
	runPolling(ctx, bot, log, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, log *zap.Logger, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("polling stopped")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.Warn("polling error", zap.Error(err), zap.Duration("retry_in", d))
			select {
			case <-ctx.Done():
				return
			case <-time.After(d):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			time.Sleep(200 * time.Millisecond)
		}
	}
}
