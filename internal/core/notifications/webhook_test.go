package notifications

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderDeliversSignedPayload(t *testing.T) {
	payload := []byte(`{"event":"transfer.completed"}`)

	var gotBody []byte
	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get("X-Ledger-Signature")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewSender("test-secret")
	require.NoError(t, sender.Send(srv.URL, payload))

	assert.Equal(t, payload, gotBody)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(payload)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
}

func TestSenderRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewSender("test-secret")
	err := sender.Send(srv.URL, []byte(`{}`))
	assert.Error(t, err)
}

func TestSenderBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sender := NewSender("test-secret")
	for i := 0; i < 6; i++ {
		require.Error(t, sender.Send(srv.URL, []byte(`{}`)))
	}

	// The breaker is open now: requests are refused without hitting the wire.
	err := sender.Send(srv.URL, []byte(`{}`))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
