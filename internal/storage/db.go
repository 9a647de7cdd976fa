package storage

import (
	"errors"

	apperrors "aircast/internal/errors"
	"aircast/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore is the gorm-backed Store implementation.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs
// auto-migration for all models.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.AQIRecord{},
		&models.Report{},
		&models.ReportVote{},
		&models.Poll{},
		&models.PollVote{},
	); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ---- Users ----

func (s *SQLiteStore) CreateUser(user *models.User) error {
	return apperrors.Normalize(s.db.Create(user).Error)
}

func (s *SQLiteStore) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, apperrors.Normalize(err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, apperrors.Normalize(err)
	}
	return &user, nil
}

func (s *SQLiteStore) UpdateUser(user *models.User) error {
	return apperrors.Normalize(s.db.Save(user).Error)
}

func (s *SQLiteStore) UpdateLastAQI(userID uint, aqi int) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("last_aqi", aqi)
	if res.Error != nil {
		return apperrors.Normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, apperrors.Normalize(err)
	}
	return users, nil
}

// ---- AQI history ----

func (s *SQLiteStore) InsertAQIRecord(rec *models.AQIRecord) error {
	return apperrors.Normalize(s.db.Create(rec).Error)
}

func (s *SQLiteStore) GetAQIRecordByID(id uint) (*models.AQIRecord, error) {
	var rec models.AQIRecord
	if err := s.db.First(&rec, id).Error; err != nil {
		return nil, apperrors.Normalize(err)
	}
	return &rec, nil
}

// HistoryByLocation returns the most recent records for a location,
// newest first. Results are capped at 30 rows regardless of limit.
func (s *SQLiteStore) HistoryByLocation(location string, limit int) ([]models.AQIRecord, error) {
	limit = clampHistoryLimit(limit)
	var recs []models.AQIRecord
	err := s.db.Where("location_name = ?", location).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, apperrors.Normalize(err)
	}
	return recs, nil
}

func (s *SQLiteStore) ListHistory(limit int) ([]models.AQIRecord, error) {
	limit = clampHistoryLimit(limit)
	var recs []models.AQIRecord
	err := s.db.Order("timestamp DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, apperrors.Normalize(err)
	}
	return recs, nil
}

const maxHistoryRows = 30

func clampHistoryLimit(limit int) int {
	if limit <= 0 || limit > maxHistoryRows {
		return maxHistoryRows
	}
	return limit
}

// ---- Reports ----

func (s *SQLiteStore) CreateReport(report *models.Report) error {
	return apperrors.Normalize(s.db.Create(report).Error)
}

func (s *SQLiteStore) GetReportByID(id uint) (*models.Report, error) {
	var report models.Report
	if err := s.db.First(&report, id).Error; err != nil {
		return nil, apperrors.Normalize(err)
	}
	return &report, nil
}

func (s *SQLiteStore) ListReports() ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, apperrors.Normalize(err)
	}
	return reports, nil
}

func (s *SQLiteStore) ListPolls() ([]models.Poll, error) {
	var polls []models.Poll
	if err := s.db.Order("created_at DESC").Find(&polls).Error; err != nil {
		return nil, apperrors.Normalize(err)
	}
	return polls, nil
}

// ---- Polls ----

func (s *SQLiteStore) CreatePoll(poll *models.Poll) error {
	if poll.Votes == nil {
		poll.Votes = make(map[string]int, len(poll.Options))
		for _, opt := range poll.Options {
			poll.Votes[opt] = 0
		}
	}
	return apperrors.Normalize(s.db.Create(poll).Error)
}

func (s *SQLiteStore) GetPollByID(id uint) (*models.Poll, error) {
	var poll models.Poll
	if err := s.db.First(&poll, id).Error; err != nil {
		return nil, apperrors.Normalize(err)
	}
	return &poll, nil
}

func (s *SQLiteStore) CountPollVotes(pollID uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.PollVote{}).Where("poll_id = ?", pollID).Count(&n).Error
	if err != nil {
		return 0, apperrors.Normalize(err)
	}
	return n, nil
}

// isNotFound reports whether err is the not-found sentinel (either raw
// gorm or already normalized).
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || apperrors.Is(err, apperrors.ErrNotFound)
}
