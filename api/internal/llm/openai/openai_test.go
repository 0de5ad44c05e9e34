package openai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"problem-reporter/api/internal/llm"
)

func newTestEngine(t *testing.T, h http.HandlerFunc) *Engine {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	e := New("sk-test", "gpt-4").WithHTTPClient(srv.Client())
	e.BaseURL = srv.URL
	return e
}

func TestSynthesize(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4", body.Model)
		assert.InDelta(t, 0.3, body.Temperature, 1e-6)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "persona", body.Messages[0].Content)
		assert.Equal(t, "prompt", body.Messages[1].Content)

		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"  {\"ok\":true}  "}}]}`)
	})

	out, err := e.Synthesize(t.Context(), "persona", "prompt", 0.3)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestSynthesizeErrors(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"slow down"}`, http.StatusTooManyRequests)
		})
		_, err := e.Synthesize(t.Context(), "p", "q", 0.3)
		assert.ErrorIs(t, err, llm.ErrRateLimited)
	})
	t.Run("empty choices", func(t *testing.T) {
		e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"choices":[]}`)
		})
		_, err := e.Synthesize(t.Context(), "p", "q", 0.3)
		assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	})
	t.Run("server error", func(t *testing.T) {
		e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		_, err := e.Synthesize(t.Context(), "p", "q", 0.3)
		assert.ErrorContains(t, err, "500")
	})
	t.Run("missing key", func(t *testing.T) {
		_, err := New("", "gpt-4").Synthesize(t.Context(), "p", "q", 0.3)
		assert.Error(t, err)
	})
}

func TestReadImage(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"model":"gpt-4o"`)
		assert.Contains(t, string(raw), "data:image/png;base64,")
		assert.Contains(t, string(raw), "leggi")
		_, _ = io.WriteString(w, "{\"choices\":[{\"message\":{\"content\":\"```\\nA | B\\n```\"}}]}")
	})

	out, err := e.ReadImage(t.Context(), png, "", "leggi")
	require.NoError(t, err)
	assert.Equal(t, "A | B", out)
}

func TestTranscribe(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "it", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "nota.webm", hdr.Filename)
		assert.Equal(t, "RIFF-audio", string(data))

		_, _ = io.WriteString(w, `{"text":" il motore si blocca "}`)
	})

	out, err := e.Transcribe(t.Context(), strings.NewReader("RIFF-audio"), "nota.webm", "it")
	require.NoError(t, err)
	assert.Equal(t, "il motore si blocca", out)
}

func TestTranscribeServerError(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "bad audio", http.StatusBadRequest)
	})
	_, err := e.Transcribe(t.Context(), strings.NewReader("x"), "", "it")
	assert.ErrorContains(t, err, "400")
}
