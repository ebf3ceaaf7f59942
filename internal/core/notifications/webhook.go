package notifications

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Sender delivers webhook notifications. A circuit breaker sits in front of
// the HTTP call so a dead endpoint trips open instead of eating a timeout on
// every job.
type Sender struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	secret  string
}

func NewSender(secret string) *Sender {
	return &Sender{
		// Don't let slow receivers block us!
		client: &http.Client{Timeout: 5 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "webhook",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
		secret: secret,
	}
}

// Send posts the JSON payload to the receiver's URL, signing the body so the
// receiver can verify it came from us.
func (s *Sender) Send(url string, payload []byte) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.post(url, payload)
	})
	return err
}

func (s *Sender) post(url string, payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "BackendLedger-Webhook/1.0")
	req.Header.Set("X-Ledger-Signature", s.sign(payload))

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("receiver returned error: %d", resp.StatusCode)
}

func (s *Sender) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
