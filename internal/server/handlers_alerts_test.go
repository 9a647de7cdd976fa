package server

import (
	"net/http"
	"testing"
	"time"

	"aircast/internal/aqi"
	apperrors "aircast/internal/errors"
	"aircast/internal/mail"
)

func TestInstantAlert(t *testing.T) {
	env := newTestEnv(t)
	id := env.signup(t, "a@b.c")
	env.instant.sample = &aqi.Sample{AQI: 4, FetchedAt: time.Now()}

	status, resp := env.do(t, http.MethodPost, "/api/alerts/instant/1", map[string]interface{}{"user_id": id})
	if status != http.StatusOK {
		t.Fatalf("instant = %d %v", status, resp)
	}
	if resp["sent"] != true || resp["aqi"].(float64) != 4 {
		t.Errorf("resp = %v", resp)
	}
	if env.instant.gotID != 1 {
		t.Errorf("runner got user %d, want 1", env.instant.gotID)
	}
}

func TestInstantAlert_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	if status, _ := env.do(t, http.MethodPost, "/api/alerts/instant/1", nil); status != http.StatusUnauthorized {
		t.Errorf("no identity = %d, want 401", status)
	}
}

// TestInstantAlert_ErrorMapping covers the dedicated statuses for mail
// transport failures next to the regular taxonomy mapping.
func TestInstantAlert_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"mail not configured", mail.ErrNotConfigured, http.StatusServiceUnavailable},
		{"mail auth", mail.ErrAuth, http.StatusInternalServerError},
		{"mail network", mail.ErrNetwork, http.StatusInternalServerError},
		{"mail send", mail.ErrSend, http.StatusInternalServerError},
		{"unknown user", apperrors.ErrNotFound, http.StatusNotFound},
		{"instant disabled", apperrors.Wrap(apperrors.ErrValidation, "instant alerts are disabled for this user"), http.StatusBadRequest},
		{"upstream down", apperrors.ErrUpstream, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			id := env.signup(t, "a@b.c")
			env.instant.err = tc.err

			status, resp := env.do(t, http.MethodPost, "/api/alerts/instant/1", map[string]interface{}{"user_id": id})
			if status != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", status, tc.wantStatus, resp)
			}
			if resp["success"] != false || errorText(resp) == "" {
				t.Errorf("failure envelope missing: %v", resp)
			}
		})
	}
}
