// Package verification checks Cloudflare Turnstile challenge responses.
package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const siteverifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Verifier validates a challenge token issued to a client at ip.
type Verifier interface {
	Verify(ctx context.Context, token, ip string) (bool, error)
}

// TurnstileVerifier calls the Cloudflare siteverify endpoint.
type TurnstileVerifier struct {
	SecretKey  string
	HttpClient *http.Client
	BaseURL    string
}

func NewTurnstile(secretKey string) *TurnstileVerifier {
	return &TurnstileVerifier{
		SecretKey:  secretKey,
		HttpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    siteverifyURL,
	}
}

type siteverifyRequest struct {
	Secret         string `json:"secret"`
	Response       string `json:"response"`
	RemoteIp       string `json:"remoteip"`
	IdempotencyKey string `json:"idempotency_key"`
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether the challenge passed. A false return with nil error
// means Cloudflare rejected the token; errors mean the check itself failed.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, ip string) (bool, error) {
	payload, err := json.Marshal(siteverifyRequest{
		Secret:         v.SecretKey,
		Response:       token,
		RemoteIp:       ip,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal siteverify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.HttpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("siteverify unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode siteverify response: %w", err)
	}
	return result.Success, nil
}
