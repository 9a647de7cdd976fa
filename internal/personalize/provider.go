package personalize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	apperrors "aircast/internal/errors"
)

// Provider generates free text for a prompt. Implementations wrap one
// upstream AI API each.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chain tries providers in order and returns the first success.
// When every provider fails it reports a miss, not an error; callers
// substitute rule-based content.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Generate returns (text, true) from the first provider that answers,
// or ("", false) when none do.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, bool) {
	for _, p := range c.providers {
		text, err := p.Generate(ctx, prompt)
		if err != nil {
			log.Printf("personalize: provider %s failed: %v", p.Name(), err)
			continue
		}
		if text != "" {
			return text, true
		}
	}
	return "", false
}

const providerTimeout = 20 * time.Second

// ---- Gemini ----

const geminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// GeminiProvider calls Google's Generative Language API.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:     apiKey,
		baseURL:    geminiURL,
		httpClient: &http.Client{Timeout: providerTimeout},
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", apperrors.Wrap(apperrors.ErrConfig, "gemini API key not set")
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"?key="+p.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := doJSON(p.httpClient, req)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed gemini response: %v", apperrors.ErrUpstream, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty gemini response", apperrors.ErrUpstream)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// ---- Groq ----

const groqURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqProvider calls Groq's OpenAI-compatible chat API.
type GroqProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewGroqProvider(apiKey string) *GroqProvider {
	return &GroqProvider{
		apiKey:     apiKey,
		baseURL:    groqURL,
		model:      "llama-3.1-8b-instant",
		httpClient: &http.Client{Timeout: providerTimeout},
	}
}

func (p *GroqProvider) Name() string { return "groq" }

func (p *GroqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", apperrors.Wrap(apperrors.ErrConfig, "groq API key not set")
	}

	reqBody := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	body, err := doJSON(p.httpClient, req)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed groq response: %v", apperrors.ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty groq response", apperrors.ErrUpstream)
	}
	return parsed.Choices[0].Message.Content, nil
}

// doJSON executes the request and returns the body for 2xx responses.
func doJSON(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: provider returned %d", apperrors.ErrUpstream, resp.StatusCode)
	}
	return body, nil
}

// SetBaseURL points the provider at a test server.
func (p *GeminiProvider) SetBaseURL(u string) { p.baseURL = u }

// SetBaseURL points the provider at a test server.
func (p *GroqProvider) SetBaseURL(u string) { p.baseURL = u }
