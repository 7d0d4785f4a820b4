// Package adapters implements the sync.Adapter contract for the supported
// external community services and loads the configured adapter registry.
package adapters

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"aegis/internal/domain/sync"
)

const (
	defaultRequestTimeout = 15 * time.Second
	maxResponseSize       = 1 << 20 // 1MB

	passwordLength  = 20
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// restClient wraps the per-service HTTP plumbing shared by all adapters:
// bearer auth, JSON codec and the mapping from HTTP status to failure kind.
type restClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newRESTClient(baseURL, token string, timeout time.Duration) *restClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &restClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *restClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return sync.Validation(fmt.Errorf("failed to marshal request body: %w", err))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return sync.Validation(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sync.Transient(fmt.Errorf("request to %s failed: %w", path, err))
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, path); err != nil {
		return err
	}

	if out != nil {
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return sync.Transient(fmt.Errorf("failed to read response from %s: %w", path, err))
		}
		if err := json.Unmarshal(data, out); err != nil {
			return sync.Unrecoverable(fmt.Errorf("failed to decode response from %s: %w", path, err))
		}
	}
	return nil
}

// classifyStatus maps HTTP status codes to the failure kinds the dispatcher
// routes on. 404 means the remote account no longer exists under this
// identity; auth failures are configuration problems no retry will fix.
func classifyStatus(status int, path string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return sync.IdentityMismatch(fmt.Errorf("remote resource %s not found (status %d)", path, status))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return sync.Unrecoverable(fmt.Errorf("authorization failed for %s (status %d)", path, status))
	case status == http.StatusTooManyRequests || status >= 500:
		return sync.Transientf("service returned status %d for %s", status, path)
	case status == http.StatusConflict:
		return sync.Validation(fmt.Errorf("conflict on %s (status %d)", path, status))
	default:
		return sync.Unrecoverable(fmt.Errorf("unexpected status %d for %s", status, path))
	}
}

// generatePassword builds a random initial password for a provisioned remote
// account. The plaintext is handed to the user exactly once via
// notification; it is never persisted locally.
func generatePassword() (string, error) {
	out := make([]byte, passwordLength)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
