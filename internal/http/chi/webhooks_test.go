package chi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ralborta/cucuru-bridge/webhook/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hexDigest(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func base64Digest(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestPostWebhook_AuthDisabled(t *testing.T) {
	h := newTestRouter(t, "http://upstream.invalid", nil, auth.Settings{})

	t.Run("accepts unconditionally", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(`{"id":"evt_1","type":"collection.received"}`))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("malformed JSON is tolerated, not rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(`{definitely not json`))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("redeliveries are acknowledged independently", func(t *testing.T) {
		body := `{"id":"evt_same","type":"settlement.received"}`
		for attempt := 0; attempt < 2; attempt++ {
			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/settlement_received", strings.NewReader(body))
			req.Header.Set("X-Webhook-Attempt", "1")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"received":true}`, w.Body.String())
		}
	})
}

func TestPostWebhook_HeaderAuth(t *testing.T) {
	h := newTestRouter(t, "http://upstream.invalid", nil, auth.Settings{
		HeaderName:  "X-Cucuru-Token",
		HeaderValue: "token-value",
	})

	t.Run("matching header is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/collection_received", strings.NewReader(`{"id":"evt_1"}`))
		req.Header.Set("X-Cucuru-Token", "token-value")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header is a 401 with the header-variant body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/collection_received", strings.NewReader(`{"id":"evt_1"}`))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp webhookErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.OK)
		assert.Equal(t, "invalid_inbound_header", resp.Error)
	})
}

func TestPostWebhook_SignatureAuth(t *testing.T) {
	const secret = "webhook-secret"
	h := newTestRouter(t, "http://upstream.invalid", nil, auth.Settings{Secret: secret})

	body := `{"id":"evt_9","type":"collection.received","data":{"amount":12300}}`

	t.Run("hex signature is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(body))
		req.Header.Set(auth.DefaultSignatureHeader, hexDigest(secret, body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("base64 signature is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(body))
		req.Header.Set(auth.DefaultSignatureHeader, base64Digest(secret, body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("tampered body is a 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(body+" "))
		req.Header.Set(auth.DefaultSignatureHeader, hexDigest(secret, body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp webhookErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_webhook_auth", resp.Error)
	})

	t.Run("missing signature header is a 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_webhook_auth")
	})
}

func TestPostWebhook_BothMechanisms(t *testing.T) {
	const secret = "webhook-secret"
	h := newTestRouter(t, "http://upstream.invalid", nil, auth.Settings{
		HeaderName:  "X-Cucuru-Token",
		HeaderValue: "token-value",
		Secret:      secret,
	})

	body := `{"id":"evt_11"}`

	t.Run("both must pass", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(body))
		req.Header.Set("X-Cucuru-Token", "token-value")
		req.Header.Set(auth.DefaultSignatureHeader, hexDigest(secret, body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("header mismatch wins over a valid signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(body))
		req.Header.Set("X-Cucuru-Token", "wrong")
		req.Header.Set(auth.DefaultSignatureHeader, hexDigest(secret, body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_inbound_header")
	})

	t.Run("valid header without a signature is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/cucuru", strings.NewReader(body))
		req.Header.Set("X-Cucuru-Token", "token-value")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_webhook_auth")
	})
}
