package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"aircast/internal/aqi"
	"aircast/internal/cache"
	"aircast/internal/chatbot"
	"aircast/internal/personalize"
	"aircast/internal/storage"
)

// scriptedProvider backs the AI chain in handler tests.
type scriptedProvider struct {
	text string
	err  error
}

func (p *scriptedProvider) Name() string { return "scripted" }
func (p *scriptedProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.text, p.err
}

// fakeInstant stands in for the alert scheduler.
type fakeInstant struct {
	sample *aqi.Sample
	err    error
	gotID  uint
}

func (f *fakeInstant) RunInstant(ctx context.Context, userID uint) (*aqi.Sample, error) {
	f.gotID = userID
	return f.sample, f.err
}

type testEnv struct {
	router  http.Handler
	store   storage.Store
	aqi     *aqi.Client
	instant *fakeInstant
}

// newTestEnv wires a server around a temp-file store. The providers
// back both the personalization engine and the chatbot.
func newTestEnv(t *testing.T, providers ...personalize.Provider) *testEnv {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	chat := cache.New(time.Minute, 16)
	t.Cleanup(chat.Stop)

	aqiClient := aqi.NewClient("test-key", nil)
	chain := personalize.NewChain(providers...)
	engine := personalize.NewEngine(chain, nil)
	bot := chatbot.NewBot(chain, aqiClient, chat)
	instant := &fakeInstant{}

	s := New(store, aqiClient, engine, bot, instant)
	return &testEnv{router: s.Router(), store: store, aqi: aqiClient, instant: instant}
}

// do performs a request and decodes the JSON envelope.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, decoded
}

func (e *testEnv) signup(t *testing.T, email string) uint {
	t.Helper()
	status, resp := e.do(t, http.MethodPost, "/auth/signup", map[string]interface{}{
		"email":    email,
		"password": "secret123",
		"name":     "Test User",
		"city":     "Lahore",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup returned %d: %v", status, resp)
	}
	user := resp["user"].(map[string]interface{})
	return uint(user["id"].(float64))
}

func errorText(resp map[string]interface{}) string {
	s, _ := resp["error"].(string)
	return s
}
