package personalize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "aircast/internal/errors"
)

func TestGeminiProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing key query param, got %q", r.URL.RawQuery)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"stay indoors"}]}}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("test-key")
	p.SetBaseURL(srv.URL)

	text, err := p.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "stay indoors" {
		t.Errorf("text = %q", text)
	}
}

func TestGeminiProvider_NoKey(t *testing.T) {
	p := NewGeminiProvider("")
	if _, err := p.Generate(context.Background(), "prompt"); !apperrors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestGeminiProvider_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("k")
	p.SetBaseURL(srv.URL)
	if _, err := p.Generate(context.Background(), "prompt"); !apperrors.Is(err, apperrors.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestGroqProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"limit exercise"}}]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("test-key")
	p.SetBaseURL(srv.URL)

	text, err := p.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "limit exercise" {
		t.Errorf("text = %q", text)
	}
}

func TestGroqProvider_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewGroqProvider("k")
	p.SetBaseURL(srv.URL)
	_, err := p.Generate(context.Background(), "prompt")
	if !apperrors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestGroqProvider_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	p := NewGroqProvider("k")
	p.SetBaseURL(srv.URL)
	if _, err := p.Generate(context.Background(), "prompt"); !apperrors.Is(err, apperrors.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}
