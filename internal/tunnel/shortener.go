package tunnel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Shortener wraps the is.gd simple-format API. Shortening is best effort;
// callers fall back to the long URL on any failure.
type Shortener struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func NewShortener(baseURL string, logger *slog.Logger) *Shortener {
	return &Shortener{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		logger:  logger.With("component", "shortener"),
	}
}

func (s *Shortener) Shorten(ctx context.Context, longURL string) (string, error) {
	endpoint := fmt.Sprintf("%s?format=simple&url=%s", s.baseURL, url.QueryEscape(longURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}

	short := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(short, "http") {
		return "", fmt.Errorf("shortener returned status %d: %s", resp.StatusCode, short)
	}
	return short, nil
}
