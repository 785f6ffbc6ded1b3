// Package relay forwards inbound webhook payloads to the configured runner
// endpoint. It exists so the booking runner can sit on a private network
// while a public automation platform (form provider, Zapier-style hook)
// still reaches it through one authenticated edge.
package relay

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mkershaw/bookpilot/pkg/config"
	"github.com/mkershaw/bookpilot/pkg/log"
)

// SecretHeader carries the shared secret on both the inbound and the
// forwarded request.
const SecretHeader = "X-Relay-Secret"

const maxBodyBytes = 1 << 20

type Relay struct {
	cfg    config.Config
	logger log.Logger
	client *http.Client
}

func New(cfg config.Config, logger log.Logger) *Relay {
	if logger == nil {
		logger = log.Nop()
	}
	return &Relay{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Relay) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/webhook", r.handleWebhook).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return router
}

func (r *Relay) ListenAndServe() error {
	r.logger.Info().Str("addr", r.cfg.ListenAddr).Str("runner", r.cfg.RunnerURL).Msg("webhook relay listening")
	return http.ListenAndServe(r.cfg.ListenAddr, r.Router())
}

func (r *Relay) authorized(req *http.Request) bool {
	if r.cfg.WebhookSecret == "" {
		return false
	}
	provided := req.Header.Get(SecretHeader)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(r.cfg.WebhookSecret)) == 1
}

func (r *Relay) handleWebhook(w http.ResponseWriter, req *http.Request) {
	if !r.authorized(req) {
		r.logger.Warn().Str("remote", req.RemoteAddr).Msg("webhook rejected: bad shared secret")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "payload must be JSON", http.StatusBadRequest)
		return
	}

	forward, err := http.NewRequestWithContext(req.Context(), http.MethodPost, r.cfg.RunnerURL, bytes.NewReader(body))
	if err != nil {
		r.logger.Error().Err(err).Msg("building forward request")
		http.Error(w, "relay error", http.StatusInternalServerError)
		return
	}
	forward.Header.Set("Content-Type", "application/json")
	forward.Header.Set(SecretHeader, r.cfg.WebhookSecret)

	resp, err := r.client.Do(forward)
	if err != nil {
		r.logger.Error().Err(err).Str("runner", r.cfg.RunnerURL).Msg("forwarding to runner failed")
		http.Error(w, "runner unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	r.logger.Info().Int("status", resp.StatusCode).Msg("forwarded webhook to runner")
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}
