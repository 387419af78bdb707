package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"matifood/internal/catalog"
	"matifood/internal/config"
	"matifood/internal/http/handlers"
	applog "matifood/internal/log"
	"matifood/internal/mail"
)

type stubVerifier struct{ err error }

func (s stubVerifier) Verify(context.Context, string, string) error { return s.err }

type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (o *outbox) Send(_ context.Context, m mail.Message) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return "", o.err
	}
	o.msgs = append(o.msgs, m)
	return "queued", nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

type testEnv struct {
	app    *fiber.App
	deps   *handlers.Deps
	outbox *outbox
	list   *mail.MemoryList
}

func testConfig(mode string) config.Config {
	return config.Config{
		Mode:        mode,
		TemplateDir: "../../web/templates",
		StaticDir:   "../../web/static",
		BodyLimit:   1 << 20,
		BackendURL:  "http://localhost:8080",
		Recaptcha: config.RecaptchaConfig{
			SiteKey:   "test-site-key",
			ScriptURL: "https://www.google.com/recaptcha/api.js?render=explicit",
		},
		Mail: config.MailConfig{Inbox: "hello@matifood.com"},
	}
}

// newTestEnv builds the real app with a stub verifier and an in-memory outbox.
func newTestEnv(t *testing.T, cfg config.Config, v stubVerifier) *testEnv {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	box := &outbox{}
	list := mail.NewMemoryList()
	deps := handlers.NewDepsWith(cfg, cat, handlers.Services{
		Verifier:    v,
		Relay:       mail.NewRelay(box, nil, cfg.Mail.Inbox, cat.Brand().Name),
		Subscribers: list,
	}, nil)
	return &testEnv{app: handlers.NewApp(deps), deps: deps, outbox: box, list: list}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func jsonReq(method, target, body string) *http.Request {
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeDetail(t *testing.T, body string) string {
	t.Helper()
	var out struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return out.Detail
}

// captureLogs routes the request logger to an observer for the duration of fn.
func captureLogs(t *testing.T, fn func()) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := applog.SetLogger(zap.New(core))
	defer restore()
	fn()
	return logs
}
