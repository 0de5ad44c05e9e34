package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"problem-reporter/api/internal/pipeline/types"
)

// Runner executes one submission end to end.
type Runner interface {
	Run(ctx context.Context, sub types.Submission) (types.Artifact, error)
}

type Options struct {
	// MaxUploadBytes is the per-file limit; larger files are rejected with 413.
	MaxUploadBytes int64
	// MaxFiles bounds the number of file parts in one request.
	MaxFiles int
	Timeout  time.Duration
}

type Handle struct {
	runner Runner
	log    *zap.Logger
	opts   Options
	now    func() time.Time
}

func New(runner Runner, opts Options, log *zap.Logger) *Handle {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 180 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{runner: runner, log: log, opts: opts, now: time.Now}
}

// Register mounts every endpoint on mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/process-report", h.ProcessReport)
	mux.HandleFunc("/api/generate-pdf", h.GeneratePDF)
	mux.HandleFunc("/api/download-modified-file", h.DownloadModifiedFile)
	mux.HandleFunc("/api/health", h.Health)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// requestTimeout honours X-Request-Timeout (seconds) or ?timeoutSec=.
func (h *Handle) requestTimeout(r *http.Request) time.Duration {
	ts := r.Header.Get("X-Request-Timeout")
	if ts == "" {
		ts = r.URL.Query().Get("timeoutSec")
	}
	if v, _ := strconv.Atoi(ts); v > 0 {
		return time.Duration(v) * time.Second
	}
	return h.opts.Timeout
}

func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": h.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
