package chatbot

import (
	"context"
	"strings"
	"testing"
	"time"

	"aircast/internal/aqi"
	"aircast/internal/cache"
	apperrors "aircast/internal/errors"
	"aircast/internal/personalize"
)

// echoProvider replies with a marker and records the prompts it saw.
type echoProvider struct {
	prompts []string
	err     error
}

func (p *echoProvider) Name() string { return "echo" }
func (p *echoProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	return "echo reply", nil
}

type fixedFetcher struct {
	sample *aqi.Sample
	calls  int
}

func (f *fixedFetcher) FetchCity(ctx context.Context, city string, lat, lon float64) (*aqi.Sample, error) {
	f.calls++
	return f.sample, nil
}

func newTestBot(t *testing.T, provider personalize.Provider, fetcher Fetcher) *Bot {
	t.Helper()
	history := cache.New(time.Minute, 16)
	t.Cleanup(history.Stop)
	chain := personalize.NewChain()
	if provider != nil {
		chain = personalize.NewChain(provider)
	}
	return NewBot(chain, fetcher, history)
}

func TestReply_NewConversation(t *testing.T) {
	bot := newTestBot(t, &echoProvider{}, nil)

	answer, id, err := bot.Reply(context.Background(), "", "", "hello")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if answer != "echo reply" {
		t.Errorf("answer = %q", answer)
	}
	if id == "" {
		t.Error("no conversation id assigned")
	}
}

func TestReply_EmptyMessage(t *testing.T) {
	bot := newTestBot(t, &echoProvider{}, nil)
	if _, _, err := bot.Reply(context.Background(), "", "", "   "); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestReply_NoProvider(t *testing.T) {
	bot := newTestBot(t, nil, nil)
	_, id, err := bot.Reply(context.Background(), "", "", "hello")
	if !apperrors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if id == "" {
		t.Error("conversation id should still be assigned on failure")
	}
}

// TestReply_HistoryCarriesForward: a follow-up in the same
// conversation includes the earlier exchange in the prompt.
func TestReply_HistoryCarriesForward(t *testing.T) {
	provider := &echoProvider{}
	bot := newTestBot(t, provider, nil)

	_, id, err := bot.Reply(context.Background(), "", "", "first question")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := bot.Reply(context.Background(), id, "", "second question"); err != nil {
		t.Fatal(err)
	}

	last := provider.prompts[len(provider.prompts)-1]
	if !strings.Contains(last, "first question") || !strings.Contains(last, "echo reply") {
		t.Errorf("follow-up prompt missing history:\n%s", last)
	}
}

func TestReply_HistoryBounded(t *testing.T) {
	provider := &echoProvider{}
	bot := newTestBot(t, provider, nil)

	_, id, _ := bot.Reply(context.Background(), "", "", "question 0")
	for i := 1; i < 15; i++ {
		bot.Reply(context.Background(), id, "", "filler question")
	}
	bot.Reply(context.Background(), id, "", "latest question")

	last := provider.prompts[len(provider.prompts)-1]
	if strings.Contains(last, "question 0") {
		t.Error("oldest turn should have been trimmed from the prompt")
	}
	if !strings.Contains(last, "latest question") {
		t.Error("current message missing from prompt")
	}
}

func TestReply_FoldsCityAQI(t *testing.T) {
	provider := &echoProvider{}
	fetcher := &fixedFetcher{sample: &aqi.Sample{AQI: 5, FetchedAt: time.Now()}}
	bot := newTestBot(t, provider, fetcher)

	if _, _, err := bot.Reply(context.Background(), "", "Lahore", "how bad is it?"); err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetcher called %d times", fetcher.calls)
	}
	if !strings.Contains(provider.prompts[0], "Lahore") || !strings.Contains(provider.prompts[0], "5") {
		t.Errorf("prompt missing city context:\n%s", provider.prompts[0])
	}
}

func TestReply_UnknownCitySkipsFetch(t *testing.T) {
	fetcher := &fixedFetcher{sample: &aqi.Sample{AQI: 5}}
	bot := newTestBot(t, &echoProvider{}, fetcher)

	if _, _, err := bot.Reply(context.Background(), "", "Atlantis", "hello"); err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 0 {
		t.Error("unknown city should not trigger a fetch")
	}
}
