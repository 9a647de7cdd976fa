package personalize

import (
	"testing"

	"aircast/internal/models"
)

func TestRuleRecommendations_GeneralOnly(t *testing.T) {
	recs := RuleRecommendations(nil, 1)
	if len(recs) == 0 {
		t.Fatal("expected general tips for AQI 1")
	}
	for _, want := range generalByAQI[1] {
		if !contains(recs, want) {
			t.Errorf("missing general tip %q", want)
		}
	}
}

func TestRuleRecommendations_ConditionsGatedByAQI(t *testing.T) {
	profile := &models.HealthProfile{HealthConditions: []string{"asthma"}}

	// At AQI 1 the condition tables stay out.
	for _, rec := range RuleRecommendations(profile, 1) {
		if contains(conditionTables["asthma"], rec) {
			t.Errorf("condition tip %q appeared at AQI 1", rec)
		}
	}

	// From AQI 2 up they apply.
	recs := RuleRecommendations(profile, 2)
	if !contains(recs, conditionTables["asthma"][0]) {
		t.Errorf("asthma tips missing at AQI 2: %v", recs)
	}
}

func TestRuleRecommendations_ElderlyGate(t *testing.T) {
	young := &models.HealthProfile{AgeGroup: models.Age18To40}
	if contains(RuleRecommendations(young, 3), elderlyTips[0]) {
		t.Error("elderly tips applied to 18_40")
	}

	elderly := &models.HealthProfile{AgeGroup: models.Age60Plus}
	if !contains(RuleRecommendations(elderly, 3), elderlyTips[0]) {
		t.Error("elderly tips missing for 60_plus")
	}
}

func TestRuleRecommendations_ActivityGate(t *testing.T) {
	indoors := &models.HealthProfile{ActivityLevel: models.ActivityMostlyIndoors}
	if contains(RuleRecommendations(indoors, 3), activityTips[0]) {
		t.Error("activity tips applied to mostly_indoors")
	}

	active := &models.HealthProfile{ActivityLevel: models.ActivityVeryActive}
	if !contains(RuleRecommendations(active, 3), activityTips[0]) {
		t.Error("activity tips missing for very_active")
	}
}

func TestRuleRecommendations_CapAndDedupe(t *testing.T) {
	profile := &models.HealthProfile{
		AgeGroup:         models.Age60Plus,
		ActivityLevel:    models.ActivityVeryActive,
		HealthConditions: []string{"asthma", "heart_disease", "copd", "allergies", "pregnancy"},
	}
	recs := RuleRecommendations(profile, 5)
	if len(recs) > 8 {
		t.Errorf("got %d recommendations, cap is 8", len(recs))
	}
	seen := make(map[string]bool)
	for _, rec := range recs {
		if seen[rec] {
			t.Errorf("duplicate recommendation %q", rec)
		}
		seen[rec] = true
	}
}

// TestRuleRecommendations_OutOfRangeAQI checks out-of-table values
// fall back to the moderate tier.
func TestRuleRecommendations_OutOfRangeAQI(t *testing.T) {
	for _, aqi := range []int{0, -3, 6, 42} {
		recs := RuleRecommendations(nil, aqi)
		if !contains(recs, generalByAQI[3][0]) {
			t.Errorf("AQI %d did not clamp to moderate tier: %v", aqi, recs)
		}
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
