package storage

import "aircast/internal/models"

// VoteResult reports the outcome of a report-vote request.
type VoteResult struct {
	Action    string
	Upvotes   int
	Downvotes int
}

// Store defines the interface for data persistence operations.
// This allows for easy testing with mock implementations and
// potential future support for different storage backends.
type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	UpdateLastAQI(userID uint, aqi int) error
	ListUsers() ([]models.User, error)

	// AQI history operations
	InsertAQIRecord(rec *models.AQIRecord) error
	GetAQIRecordByID(id uint) (*models.AQIRecord, error)
	HistoryByLocation(location string, limit int) ([]models.AQIRecord, error)
	ListHistory(limit int) ([]models.AQIRecord, error)

	// Report operations
	CreateReport(report *models.Report) error
	GetReportByID(id uint) (*models.Report, error)
	ListReports() ([]models.Report, error)
	ApplyReportVote(reportID, userID uint, voteType string) (*VoteResult, error)

	// Poll operations
	CreatePoll(poll *models.Poll) error
	GetPollByID(id uint) (*models.Poll, error)
	ListPolls() ([]models.Poll, error)
	ApplyPollVote(pollID, userID uint, option string) (*models.Poll, error)
	CountPollVotes(pollID uint) (int64, error)

	// Lifecycle
	Close() error
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
