package models

import (
	"time"

	"gorm.io/gorm"
)

// Age groups for the health profile.
const (
	AgeUnder18 = "under_18"
	Age18To40  = "18_40"
	Age40To60  = "40_60"
	Age60Plus  = "60_plus"
)

// Activity levels for the health profile.
const (
	ActivityMostlyIndoors = "mostly_indoors"
	ActivityModerate      = "moderate"
	ActivityVeryActive    = "very_active"
)

// HealthProfile holds user-supplied attributes driving personalized
// advice. Stored as a JSON column; nil means the user never filled it.
type HealthProfile struct {
	AgeGroup         string   `json:"age_group"`
	HealthConditions []string `json:"health_conditions"`
	ActivityLevel    string   `json:"activity_level"`
	PrimaryCity      string   `json:"primary_city"`
}

// AlertPrefs controls which alert emails a user receives.
type AlertPrefs struct {
	OnChange      bool   `json:"on_change"`
	DailyTime     string `json:"daily_time"` // "HH:MM", 24h
	InstantButton bool   `json:"instant_button"`
}

// Badge is an earned achievement with optional progress tracking.
type Badge struct {
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earned_at"`
	Progress int       `json:"progress"`
}

type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex"`
	Name         string
	City         string
	PasswordHash string `json:"-"`
	// LastAQI is the last index observed for this user by the alert
	// pipeline. nil until the first alert fires.
	LastAQI       *int           `gorm:"column:last_aqi"`
	HealthProfile *HealthProfile `gorm:"serializer:json"`
	AlertPrefs    AlertPrefs     `gorm:"embedded;embeddedPrefix:alert_"`
	Badges        []Badge        `gorm:"serializer:json"`
}

// AQIRecord is one stored air-quality measurement. Append-only.
type AQIRecord struct {
	gorm.Model
	LocationName string `gorm:"index"`
	Lat          float64
	Lon          float64
	AQI          int // 1 (good) .. 5 (very poor)
	CO           float64
	NO           float64
	NO2          float64
	O3           float64
	SO2          float64
	PM25         float64 `gorm:"column:pm2_5"`
	PM10         float64
	NH3          float64
	Timestamp    time.Time `gorm:"index"`
}

// Report is a crowd-sourced air-quality observation. Vote counters are
// only ever mutated through the vote state machine.
type Report struct {
	gorm.Model
	UserID      uint `gorm:"index"`
	Lat         float64
	Lon         float64
	Description string
	PhotoURL    string
	Upvotes     int
	Downvotes   int
}

// Vote types for report votes.
const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// ReportVote records one user's vote on one report. The composite
// unique index is the last line of defense against double voting.
type ReportVote struct {
	gorm.Model
	ReportID uint   `gorm:"uniqueIndex:idx_report_user"`
	UserID   uint   `gorm:"uniqueIndex:idx_report_user"`
	VoteType string // VoteUp or VoteDown
}

type Poll struct {
	gorm.Model
	Question string
	Options  []string       `gorm:"serializer:json"`
	Votes    map[string]int `gorm:"serializer:json"`
}

// PollVote is terminal: a user gets exactly one vote per poll, no
// toggle or switch.
type PollVote struct {
	gorm.Model
	PollID uint   `gorm:"uniqueIndex:idx_poll_user"`
	UserID uint   `gorm:"uniqueIndex:idx_poll_user"`
	Option string
}
