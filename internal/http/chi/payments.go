package chi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ralborta/cucuru-bridge/config"
	"github.com/ralborta/cucuru-bridge/metrics"
	"github.com/ralborta/cucuru-bridge/routes"
	"github.com/ralborta/cucuru-bridge/upstream"
)

// errorResponse is the envelope for any upstream failure.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// registerWebhookRequest mirrors the provider's webhook endpoint resource.
type registerWebhookRequest struct {
	URL    string         `json:"url,omitempty"`
	Header *webhookHeader `json:"header,omitempty"`
}

type webhookHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

/* proxyRoute translates a caller request into an authenticated upstream
 * call and relays the result transparently. The body is caller-supplied
 * and not schema-checked; the provider's own validation answers for it.
 */
func proxyRoute(client *upstream.Client, route *routes.Route, recorder *metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		relayUpstream(w, r, client, route, body, recorder)
	})
}

/* registerWebhook fills in the bridge's own inbound expectations before
 * forwarding: a missing url defaults to this bridge's public webhook
 * entry point, and a missing header is filled from the configured
 * inbound pair so the provider starts sending the header the gate
 * checks for.
 */
func registerWebhook(client *upstream.Client, route *routes.Route, cfg *config.Config, recorder *metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		var req registerWebhookRequest
		if len(raw) > 0 {
			// Lenient: an unparsable body behaves like an empty one
			_ = json.Unmarshal(raw, &req)
		}
		if req.URL == "" && cfg.PublicBaseURL != "" {
			req.URL = strings.TrimSuffix(cfg.PublicBaseURL, "/") + "/api/webhooks/cucuru"
		}
		if req.Header == nil && cfg.InboundHeaderName != "" {
			req.Header = &webhookHeader{
				Name:  cfg.InboundHeaderName,
				Value: cfg.InboundHeaderValue,
			}
		}

		body, err := json.Marshal(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		relayUpstream(w, r, client, route, body, recorder)
	})
}

func relayUpstream(w http.ResponseWriter, r *http.Request, client *upstream.Client, route *routes.Route, body []byte, recorder *metrics.Recorder) {
	path := route.UpstreamPath
	for _, param := range route.PathParams() {
		path = strings.Replace(path, "{"+param+"}", url.PathEscape(chi.URLParam(r, param)), 1)
	}

	query := url.Values{}
	for _, key := range route.QueryParams {
		if v := r.URL.Query().Get(key); v != "" {
			query.Set(key, v)
		}
	}

	result, err := client.Do(r.Context(), upstream.Call{
		Method:  route.Method,
		Path:    path,
		Query:   query,
		Body:    body,
		Timeout: route.Timeout.Duration(),
	})

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		// The provider was never reached: no status to pass through
		recorder.UpstreamRequest(r.Context(), route.Name, metrics.OutcomeError)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorResponse{
			Error:  "upstream_error",
			Detail: err.Error(),
		})
		return
	}

	if !result.Success() {
		recorder.UpstreamRequest(r.Context(), route.Name, metrics.OutcomeUpstreamError)
		w.WriteHeader(result.StatusCode)
		json.NewEncoder(w).Encode(errorResponse{
			Error:  "upstream_error",
			Detail: string(result.Body),
		})
		return
	}

	recorder.UpstreamRequest(r.Context(), route.Name, metrics.OutcomeOK)
	w.WriteHeader(result.StatusCode)
	w.Write(result.Body)
}
