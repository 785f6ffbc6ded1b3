package relay_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkershaw/bookpilot/internal/relay"
	"github.com/mkershaw/bookpilot/pkg/config"
	"github.com/mkershaw/bookpilot/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "relay-secret-for-tests"

func newRelay(runnerURL string) *relay.Relay {
	return relay.New(config.Config{
		RunnerURL:     runnerURL,
		WebhookSecret: testSecret,
	}, log.Nop())
}

func postWebhook(t *testing.T, handler http.Handler, secret, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(relay.SecretHeader, secret)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestWebhookForwardsToRunner(t *testing.T) {
	var got struct {
		body   string
		secret string
		ctype  string
	}
	runner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		got.body = string(body)
		got.secret = req.Header.Get(relay.SecretHeader)
		got.ctype = req.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "run accepted")
	}))
	defer runner.Close()

	rr := postWebhook(t, newRelay(runner.URL).Router(), testSecret, `{"carpet_cleaning":true}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "run accepted", rr.Body.String())
	assert.Equal(t, `{"carpet_cleaning":true}`, got.body)
	assert.Equal(t, testSecret, got.secret, "the shared secret is re-attached on the forwarded request")
	assert.Equal(t, "application/json", got.ctype)
}

func TestWebhookMirrorsDownstreamStatus(t *testing.T) {
	runner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "run failed at step book_service")
	}))
	defer runner.Close()

	rr := postWebhook(t, newRelay(runner.URL).Router(), testSecret, `{}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "book_service")
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	called := false
	runner := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer runner.Close()
	handler := newRelay(runner.URL).Router()

	assert.Equal(t, http.StatusUnauthorized, postWebhook(t, handler, "wrong", `{}`).Code)
	assert.Equal(t, http.StatusUnauthorized, postWebhook(t, handler, "", `{}`).Code)
	assert.False(t, called, "unauthorized requests never reach the runner")
}

func TestWebhookRejectsAllWhenSecretUnconfigured(t *testing.T) {
	r := relay.New(config.Config{RunnerURL: "http://localhost:0"}, log.Nop())

	rr := postWebhook(t, r.Router(), "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWebhookRejectsNonJSON(t *testing.T) {
	rr := postWebhook(t, newRelay("http://localhost:0").Router(), testSecret, "not json at all")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebhookRunnerUnreachable(t *testing.T) {
	// A closed server gives a connect error immediately.
	runner := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	runner.Close()

	rr := postWebhook(t, newRelay(runner.URL).Router(), testSecret, `{}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	newRelay("http://localhost:0").Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
