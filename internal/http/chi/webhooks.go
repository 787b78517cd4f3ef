package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ralborta/cucuru-bridge/metrics"
	"github.com/ralborta/cucuru-bridge/webhook"
	"github.com/ralborta/cucuru-bridge/webhook/auth"
)

// webhookAttemptHeader carries the provider's redelivery counter.
// Observability only; missing or garbled values count as 0.
const webhookAttemptHeader = "X-Webhook-Attempt"

// webhookErrorResponse is the 401 body for a rejected delivery.
type webhookErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

/* postWebhook authenticates a provider callback before the payload is
 * acted upon. Rejections never inspect or forward the payload, and the
 * reason is not logged in detail to avoid leaking secret material.
 */
func postWebhook(gate webhook.UseCase, verifier *auth.Verifier, kind string, recorder *metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The exact raw bytes are what the signature covers
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := verifier.Verify(r.Header, body); err != nil {
			recorder.WebhookReceived(r.Context(), kind, metrics.OutcomeRejected)

			code := "invalid_webhook_auth"
			if errors.Is(err, auth.ErrHeaderMismatch) {
				code = "invalid_inbound_header"
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(webhookErrorResponse{
				OK:    false,
				Error: code,
			})
			return
		}

		attempt, err := strconv.Atoi(r.Header.Get(webhookAttemptHeader))
		if err != nil {
			attempt = 0
		}

		ack, err := gate.Receive(r.Context(), kind, webhook.ParseEvent(body), attempt)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		recorder.WebhookReceived(r.Context(), kind, metrics.OutcomeAccepted)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(ack); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
