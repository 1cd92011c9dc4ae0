// Package queue hands jobs off to the worker endpoint through an HTTP queue
// service. Requests are signed with an HMAC over the body so the worker can
// reject anything the queue did not deliver.
package queue

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cesargomez89/yearspin/internal/constants"
)

// Sign computes the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type Publisher struct {
	httpClient *http.Client
	queueURL   string
	secret     string
}

func NewPublisher(queueURL, secret string) *Publisher {
	return &Publisher{
		queueURL: queueURL,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: constants.QueueHTTPTimeout,
		},
	}
}

// Publish enqueues payload for asynchronous delivery to the worker.
func (p *Publisher) Publish(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.queueURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.SignatureHeader, Sign(p.secret, body))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("queue returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// VerifySignature rejects requests whose body does not carry a valid
// signature. The body is re-buffered so downstream handlers can read it.
func VerifySignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "failed to read body", http.StatusBadRequest)
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			got := r.Header.Get(constants.SignatureHeader)
			want := Sign(secret, body)
			if got == "" || !hmac.Equal([]byte(got), []byte(want)) {
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
