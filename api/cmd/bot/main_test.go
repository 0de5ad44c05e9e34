package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelayFromError(t *testing.T) {
	assert.Zero(t, retryDelayFromError(nil))
	assert.Equal(t, 7*time.Second, retryDelayFromError(errors.New("Too Many Requests: retry after 7")))
	assert.Equal(t, 3*time.Second, retryDelayFromError(errors.New("too many requests")))
	assert.Equal(t, 2*time.Second, retryDelayFromError(timeoutErr{}))
	assert.Equal(t, time.Second, retryDelayFromError(errors.New("bad gateway")))
}

func decodeStub(req *http.Request) (*tgbotapi.Update, error) {
	if req.Method != http.MethodPost {
		return nil, errors.New("POST only")
	}
	return &tgbotapi.Update{UpdateID: 42}, nil
}

func TestWebhookHandlerQueuesUpdate(t *testing.T) {
	updates := make(chan tgbotapi.Update, 1)
	h := webhookHandler(t.Context(), decodeStub, updates, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/x", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, updates, 1)
	assert.Equal(t, 42, (<-updates).UpdateID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookHandlerAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	updates := make(chan tgbotapi.Update)
	h := webhookHandler(ctx, decodeStub, updates, zap.NewNop())

	done := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/x", strings.NewReader("{}")))
		done <- rec.Code
	}()
	select {
	case code := <-done:
		assert.Equal(t, http.StatusServiceUnavailable, code)
	case <-time.After(2 * time.Second):
		t.Fatal("handler blocked after shutdown")
	}
}
