package server

import (
	"net/http"
	"strings"

	apperrors "aircast/internal/errors"
	"aircast/internal/models"
	"aircast/internal/sentry"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// userJSON is the wire shape for a user. The password hash never
// appears in any response.
type userJSON struct {
	ID            uint                  `json:"id"`
	Email         string                `json:"email"`
	Name          string                `json:"name"`
	City          string                `json:"city"`
	LastAQI       *int                  `json:"last_aqi"`
	HealthProfile *models.HealthProfile `json:"health_profile"`
	AlertPrefs    models.AlertPrefs     `json:"alert_prefs"`
	Badges        []models.Badge        `json:"badges"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		City:          u.City,
		LastAQI:       u.LastAQI,
		HealthProfile: u.HealthProfile,
		AlertPrefs:    u.AlertPrefs,
		Badges:        u.Badges,
	}
}

func (s *Server) handleSignup(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		City     string `json:"city"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		failValidation(c, "a valid email is required")
		return
	}
	if len(req.Password) < 6 {
		failValidation(c, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "signup: hashing password")
		fail(c, err, "")
		return
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		City:         req.City,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(user); err != nil {
		fail(c, err, "email")
		return
	}
	ok(c, http.StatusCreated, gin.H{"user": toUserJSON(user)})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}

	user, err := s.store.GetUserByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		// Same message for unknown email and wrong password.
		fail(c, apperrors.Wrap(apperrors.ErrAuth, "invalid email or password"), "")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		fail(c, apperrors.Wrap(apperrors.ErrAuth, "invalid email or password"), "")
		return
	}
	ok(c, http.StatusOK, gin.H{"user": toUserJSON(user)})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		failValidation(c, "invalid user id")
		return
	}
	user, err := s.store.GetUserByID(id)
	if err != nil {
		fail(c, err, "user")
		return
	}
	ok(c, http.StatusOK, gin.H{"user": toUserJSON(user)})
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		failValidation(c, "invalid user id")
		return
	}
	var req struct {
		Name          *string               `json:"name"`
		City          *string               `json:"city"`
		HealthProfile *models.HealthProfile `json:"health_profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}

	user, err := s.store.GetUserByID(id)
	if err != nil {
		fail(c, err, "user")
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.HealthProfile != nil {
		user.HealthProfile = req.HealthProfile
	}
	if err := s.store.UpdateUser(user); err != nil {
		fail(c, err, "user")
		return
	}
	ok(c, http.StatusOK, gin.H{"user": toUserJSON(user)})
}

func (s *Server) handleGetAlertPrefs(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		failValidation(c, "invalid user id")
		return
	}
	user, err := s.store.GetUserByID(id)
	if err != nil {
		fail(c, err, "user")
		return
	}
	ok(c, http.StatusOK, gin.H{"alert_prefs": user.AlertPrefs})
}

func (s *Server) handleUpdateAlertPrefs(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		failValidation(c, "invalid user id")
		return
	}
	var req struct {
		OnChange      *bool   `json:"on_change"`
		DailyTime     *string `json:"daily_time"`
		InstantButton *bool   `json:"instant_button"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}
	if req.DailyTime != nil && !validDailyTime(*req.DailyTime) {
		failValidation(c, "daily_time must be HH:MM")
		return
	}

	user, err := s.store.GetUserByID(id)
	if err != nil {
		fail(c, err, "user")
		return
	}
	if req.OnChange != nil {
		user.AlertPrefs.OnChange = *req.OnChange
	}
	if req.DailyTime != nil {
		user.AlertPrefs.DailyTime = *req.DailyTime
	}
	if req.InstantButton != nil {
		user.AlertPrefs.InstantButton = *req.InstantButton
	}
	if err := s.store.UpdateUser(user); err != nil {
		fail(c, err, "user")
		return
	}
	ok(c, http.StatusOK, gin.H{"alert_prefs": user.AlertPrefs})
}

func (s *Server) handleGetBadges(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		failValidation(c, "invalid user id")
		return
	}
	user, err := s.store.GetUserByID(id)
	if err != nil {
		fail(c, err, "user")
		return
	}
	badges := user.Badges
	if badges == nil {
		badges = []models.Badge{}
	}
	ok(c, http.StatusOK, gin.H{"badges": badges})
}

func (s *Server) handleUpdateBadges(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		failValidation(c, "invalid user id")
		return
	}
	var req struct {
		Badges []models.Badge `json:"badges"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid JSON body")
		return
	}

	user, err := s.store.GetUserByID(id)
	if err != nil {
		fail(c, err, "user")
		return
	}
	user.Badges = req.Badges
	if err := s.store.UpdateUser(user); err != nil {
		fail(c, err, "user")
		return
	}
	ok(c, http.StatusOK, gin.H{"badges": user.Badges})
}

// validDailyTime accepts "HH:MM" with HH 0-23 and MM 0-59.
func validDailyTime(v string) bool {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return false
	}
	h, m := atoiStrict(parts[0]), atoiStrict(parts[1])
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}

func atoiStrict(s string) int {
	if s == "" || len(s) > 2 {
		return -1
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
