// Package personalize produces health recommendations for a user and
// an AQI level, preferring generated content from AI providers and
// falling back to deterministic rule tables.
package personalize

import (
	"aircast/internal/models"
)

// generalByAQI is always consulted, keyed by the 1..5 index.
var generalByAQI = map[int][]string{
	1: {
		"Air quality is good, enjoy outdoor activities",
		"Open your windows to ventilate your home",
	},
	2: {
		"Air quality is fair, sensitive groups should watch for symptoms",
		"Consider shorter outdoor sessions during midday",
	},
	3: {
		"Limit prolonged outdoor exertion",
		"Keep windows closed during peak traffic hours",
		"Consider wearing a mask outdoors if sensitive",
	},
	4: {
		"Avoid outdoor exercise today",
		"Wear an N95 mask if you must go outside",
		"Run an air purifier indoors if available",
	},
	5: {
		"Stay indoors as much as possible",
		"Seal windows and doors against outside air",
		"Seek medical help if you experience breathing difficulty",
	},
}

// conditionTables apply from AQI 2 upwards for users who reported the
// matching health condition.
var conditionTables = map[string][]string{
	"asthma": {
		"Keep your reliever inhaler within reach",
		"Avoid areas with heavy traffic",
	},
	"heart_disease": {
		"Avoid strenuous activity and monitor your heart rate",
		"Take prescribed medication on schedule",
	},
	"copd": {
		"Use your prescribed oxygen or inhaler as directed",
		"Avoid smoke and dusty environments entirely",
	},
	"allergies": {
		"Shower and change clothes after being outdoors",
		"Keep antihistamines on hand",
	},
	"diabetes": {
		"Stay hydrated; pollution can compound cardiovascular strain",
	},
	"pregnancy": {
		"Minimize time near busy roads",
		"Discuss air-quality precautions with your doctor",
	},
}

// elderlyTips apply to the 60_plus age group.
var elderlyTips = []string{
	"Schedule outdoor errands for early morning when air is cleaner",
	"Keep rescue medication accessible at home",
}

// activityTips apply to anyone not mostly indoors.
var activityTips = []string{
	"Move workouts indoors when the index is elevated",
	"Check the index before planning outdoor exercise",
}

const maxRecommendations = 8

// clampAQI forces out-of-table values onto the moderate tier.
func clampAQI(aqi int) int {
	if aqi < 1 || aqi > 5 {
		return 3
	}
	return aqi
}

// RuleRecommendations builds the deterministic fallback list:
// general tips for the AQI tier, condition tips from AQI 2 up,
// elderly tips for 60_plus, and activity tips for anyone not mostly
// indoors. Duplicates are dropped keeping first-seen order and the
// result is capped at 8 entries.
func RuleRecommendations(profile *models.HealthProfile, aqi int) []string {
	aqi = clampAQI(aqi)

	var out []string
	seen := make(map[string]bool)
	add := func(tips []string) {
		for _, tip := range tips {
			if len(out) >= maxRecommendations {
				return
			}
			if seen[tip] {
				continue
			}
			seen[tip] = true
			out = append(out, tip)
		}
	}

	add(generalByAQI[aqi])

	if profile != nil {
		if aqi >= 2 {
			for _, cond := range profile.HealthConditions {
				add(conditionTables[cond])
			}
		}
		if profile.AgeGroup == models.Age60Plus {
			add(elderlyTips)
		}
		if profile.ActivityLevel != "" && profile.ActivityLevel != models.ActivityMostlyIndoors {
			add(activityTips)
		}
	}

	return out
}
