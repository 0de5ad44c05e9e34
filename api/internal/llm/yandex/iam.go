package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	iamURL = "https://iam.api.cloud.yandex.net/iam/v1/tokens"

	// Used when the exchange response carries no expiresAt.
	fallbackTokenTTL = 11 * time.Hour
	refreshMargin    = time.Minute
)

// tokenSource trades the OAuth token for IAM tokens and keeps the current one
// until shortly before it expires.
type tokenSource struct {
	oauth string
	url   string
	httpc *http.Client
	now   func() time.Time

	mu      sync.Mutex
	current string
	until   time.Time
}

func newTokenSource(oauth string, httpc *http.Client) *tokenSource {
	return &tokenSource{oauth: oauth, url: iamURL, httpc: httpc, now: time.Now}
}

type iamExchange struct {
	IamToken  string    `json:"iamToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != "" && s.now().Add(refreshMargin).Before(s.until) {
		return s.current, nil
	}
	ex, err := s.exchange(ctx)
	if err != nil {
		return "", err
	}
	s.current = ex.IamToken
	s.until = ex.ExpiresAt
	if s.until.IsZero() {
		s.until = s.now().Add(fallbackTokenTTL)
	}
	return s.current, nil
}

func (s *tokenSource) exchange(ctx context.Context) (iamExchange, error) {
	var ex iamExchange
	body, _ := json.Marshal(map[string]string{"yandexPassportOauthToken": s.oauth})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return ex, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return ex, fmt.Errorf("yandex iam: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ex, fmt.Errorf("yandex iam: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	if err := json.NewDecoder(resp.Body).Decode(&ex); err != nil {
		return ex, fmt.Errorf("yandex iam: decode: %w", err)
	}
	if ex.IamToken == "" {
		return ex, fmt.Errorf("yandex iam: empty token")
	}
	return ex, nil
}

// reset drops the cached token so the next call exchanges again.
func (s *tokenSource) reset() {
	s.mu.Lock()
	s.current = ""
	s.mu.Unlock()
}
