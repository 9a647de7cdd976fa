package personalize

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"aircast/internal/cache"
	"aircast/internal/models"
)

// Sources reported alongside generated content.
const (
	SourceAI    = "ai"
	SourceRules = "rules"
)

// Engine combines the AI provider chain, the rule tables and a 1-hour
// TTL cache keyed by the profile/AQI fingerprint.
type Engine struct {
	chain *Chain
	cache *cache.TTLCache
}

// NewEngine builds an engine around an injected chain and cache. Pass
// a nil cache to disable caching (tests).
func NewEngine(chain *Chain, c *cache.TTLCache) *Engine {
	return &Engine{chain: chain, cache: c}
}

// cacheKey fingerprints the inputs that influence generated content.
// Conditions are sorted so set order doesn't fragment the cache.
func cacheKey(profile *models.HealthProfile, aqi int, kind string) string {
	age, activity := "", ""
	var conds []string
	if profile != nil {
		age = profile.AgeGroup
		activity = activityBucket(profile.ActivityLevel)
		conds = append(conds, profile.HealthConditions...)
		sort.Strings(conds)
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d|%s", age, strings.Join(conds, ","), activity, clampAQI(aqi), kind)
	return fmt.Sprintf("p:%x", h.Sum64())
}

func activityBucket(level string) string {
	switch level {
	case models.ActivityMostlyIndoors, "":
		return "indoors"
	case models.ActivityVeryActive:
		return "active"
	default:
		return "moderate"
	}
}

// Recommendations returns up to 8 advice strings for the profile at
// the given AQI, with the source that produced them. Order of
// preference: cache, AI chain, rule tables.
func (e *Engine) Recommendations(ctx context.Context, profile *models.HealthProfile, aqi int) ([]string, string) {
	key := cacheKey(profile, aqi, "recs")
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			cached := v.(cachedContent)
			return cached.items, cached.source
		}
	}

	if e.chain != nil {
		if text, ok := e.chain.Generate(ctx, recommendationPrompt(profile, aqi)); ok {
			items := parseList(text)
			if len(items) > 0 {
				if len(items) > maxRecommendations {
					items = items[:maxRecommendations]
				}
				e.put(key, cachedContent{items: items, source: SourceAI})
				return items, SourceAI
			}
		}
	}

	items := RuleRecommendations(profile, aqi)
	e.put(key, cachedContent{items: items, source: SourceRules})
	return items, SourceRules
}

// Insight returns a short personalized paragraph for alert emails, or
// ok=false when no provider answered. There is no rule fallback for
// prose; emails simply omit the section.
func (e *Engine) Insight(ctx context.Context, profile *models.HealthProfile, aqi int) (string, bool) {
	key := cacheKey(profile, aqi, "insight")
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			cached := v.(cachedContent)
			return cached.text, true
		}
	}
	if e.chain == nil {
		return "", false
	}
	text, ok := e.chain.Generate(ctx, insightPrompt(profile, aqi))
	if !ok || strings.TrimSpace(text) == "" {
		return "", false
	}
	e.put(key, cachedContent{text: text})
	return text, true
}

type cachedContent struct {
	items  []string
	text   string
	source string
}

func (e *Engine) put(key string, v cachedContent) {
	if e.cache != nil {
		e.cache.Set(key, v)
	}
}

func recommendationPrompt(profile *models.HealthProfile, aqi int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The current air quality index is %d on a 1-5 scale (1 good, 5 very poor). ", clampAQI(aqi))
	describeProfile(&b, profile)
	b.WriteString("Give up to 8 short, practical health recommendations as a plain list, one per line, no numbering preamble.")
	return b.String()
}

func insightPrompt(profile *models.HealthProfile, aqi int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The current air quality index is %d on a 1-5 scale. ", clampAQI(aqi))
	describeProfile(&b, profile)
	b.WriteString("Write one short friendly paragraph (2-3 sentences) explaining what this means for them today. You may use simple markdown emphasis.")
	return b.String()
}

func describeProfile(b *strings.Builder, profile *models.HealthProfile) {
	if profile == nil {
		b.WriteString("The reader has no health profile on record. ")
		return
	}
	if profile.AgeGroup != "" {
		fmt.Fprintf(b, "The reader's age group is %s. ", profile.AgeGroup)
	}
	if len(profile.HealthConditions) > 0 {
		fmt.Fprintf(b, "They have these conditions: %s. ", strings.Join(profile.HealthConditions, ", "))
	}
	if profile.ActivityLevel != "" {
		fmt.Fprintf(b, "Their activity level is %s. ", profile.ActivityLevel)
	}
}

// parseList splits AI output into clean list items, stripping common
// bullet and numbering prefixes.
func parseList(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		for len(line) > 2 && line[0] >= '0' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') {
			line = strings.TrimSpace(line[2:])
		}
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
