// Package chatbot answers free-form air-quality questions using the
// personalization provider chain, keeping short-lived conversation
// history in a bounded TTL cache.
package chatbot

import (
	"context"
	"fmt"
	"strings"

	"aircast/internal/aqi"
	"aircast/internal/cache"
	"aircast/internal/cities"
	apperrors "aircast/internal/errors"
	"aircast/internal/personalize"

	"github.com/google/uuid"
)

const maxHistoryTurns = 10

type turn struct {
	Role string // "user" or "assistant"
	Text string
}

// Fetcher is the slice of the AQI client the bot needs for context.
type Fetcher interface {
	FetchCity(ctx context.Context, city string, lat, lon float64) (*aqi.Sample, error)
}

// Bot holds the provider chain and the conversation store.
type Bot struct {
	chain   *personalize.Chain
	fetcher Fetcher
	history *cache.TTLCache
}

func NewBot(chain *personalize.Chain, fetcher Fetcher, history *cache.TTLCache) *Bot {
	return &Bot{chain: chain, fetcher: fetcher, history: history}
}

// Reply answers a message. An empty conversationID starts a new
// conversation; the (possibly new) id is returned with the answer.
// When city is known, the current AQI is folded into the prompt.
func (b *Bot) Reply(ctx context.Context, conversationID, city, message string) (string, string, error) {
	if strings.TrimSpace(message) == "" {
		return "", "", apperrors.Wrap(apperrors.ErrValidation, "message is required")
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	var turns []turn
	if v, ok := b.history.Get(conversationID); ok {
		turns = v.([]turn)
	}

	prompt := b.buildPrompt(ctx, city, message, turns)
	answer, ok := b.chain.Generate(ctx, prompt)
	if !ok {
		return "", conversationID, apperrors.Wrap(apperrors.ErrUpstream, "no AI provider available")
	}

	turns = append(turns, turn{Role: "user", Text: message}, turn{Role: "assistant", Text: answer})
	if len(turns) > 2*maxHistoryTurns {
		turns = turns[len(turns)-2*maxHistoryTurns:]
	}
	b.history.Set(conversationID, turns)

	return answer, conversationID, nil
}

func (b *Bot) buildPrompt(ctx context.Context, city, message string, turns []turn) string {
	var sb strings.Builder
	sb.WriteString("You are an air-quality assistant. Answer briefly and practically.\n")

	if city != "" && b.fetcher != nil {
		if c, ok := cities.Lookup(city); ok {
			if sample, err := b.fetcher.FetchCity(ctx, c.Name, c.Lat, c.Lon); err == nil {
				fmt.Fprintf(&sb, "Current air quality index in %s is %d on a 1-5 scale.\n", c.Name, sample.AQI)
			}
		}
	}

	for _, t := range turns {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Text)
	}
	fmt.Fprintf(&sb, "user: %s\nassistant:", message)
	return sb.String()
}
