package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/ralborta/cucuru-bridge/config"
	"github.com/ralborta/cucuru-bridge/metrics"
	"github.com/ralborta/cucuru-bridge/routes"
	"github.com/ralborta/cucuru-bridge/upstream"
	"github.com/ralborta/cucuru-bridge/webhook"
	"github.com/ralborta/cucuru-bridge/webhook/auth"
)

const serviceName = "cucuru-bridge"

// healthResponse reports liveness and which inbound-auth mechanisms are
// configured. Never their values.
type healthResponse struct {
	OK         bool   `json:"ok"`
	Service    string `json:"service"`
	TS         string `json:"ts"`
	HeaderAuth bool   `json:"header_auth"`
	HMACAuth   bool   `json:"hmac_auth"`
}

// Handlers sets up the bridge's routes: the table-driven proxy surface,
// the inbound webhook gate and the operational endpoints.
func Handlers(ctx context.Context, cfg *config.Config, client *upstream.Client, table *routes.Loader, gate webhook.UseCase, verifier *auth.Verifier, recorder *metrics.Recorder) *chi.Mux {
	logger := httplog.NewLogger(serviceName, httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Method(http.MethodGet, "/health", getHealth(verifier))
	r.Method(http.MethodGet, "/metrics", recorder.Handler())

	// Outbound proxy surface, one handler per table entry
	for _, route := range table.List() {
		var h http.Handler
		if route.Name == routes.RegisterWebhookEndpoint {
			h = registerWebhook(client, route, cfg, recorder)
		} else {
			h = proxyRoute(client, route, recorder)
		}
		r.Method(route.Method, route.LocalPath, h)
	}

	// Inbound gate entry points; naming differs per deployment flavor,
	// behavior does not
	r.Method(http.MethodPost, "/api/webhooks/collection_received", postWebhook(gate, verifier, "collection_received", recorder))
	r.Method(http.MethodPost, "/api/webhooks/settlement_received", postWebhook(gate, verifier, "settlement_received", recorder))
	r.Method(http.MethodPost, "/api/webhooks/cucuru", postWebhook(gate, verifier, "cucuru", recorder))

	return r
}

func getHealth(verifier *auth.Verifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(healthResponse{
			OK:         true,
			Service:    serviceName,
			TS:         time.Now().UTC().Format(time.RFC3339),
			HeaderAuth: verifier.HeaderAuthEnabled(),
			HMACAuth:   verifier.SignatureAuthEnabled(),
		})
	})
}
