package storage

import (
	apperrors "aircast/internal/errors"
	"aircast/internal/models"
	"aircast/internal/votes"

	"gorm.io/gorm"
)

// ApplyReportVote runs the full toggle-vote transition for one user on
// one report inside a single transaction, so the vote row and the
// counters can never drift apart. The unique index on
// (report_id, user_id) backstops concurrent duplicate inserts.
func (s *SQLiteStore) ApplyReportVote(reportID, userID uint, voteType string) (*VoteResult, error) {
	var result VoteResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, reportID).Error; err != nil {
			if isNotFound(err) {
				return apperrors.Wrap(apperrors.ErrNotFound, "report not found")
			}
			return apperrors.Normalize(err)
		}

		var existing *string
		var voteRow models.ReportVote
		err := tx.Where("report_id = ? AND user_id = ?", reportID, userID).
			First(&voteRow).Error
		switch {
		case err == nil:
			existing = &voteRow.VoteType
		case isNotFound(err):
			// first vote by this user
		default:
			return apperrors.Normalize(err)
		}

		change, err := votes.Transition(existing, voteType)
		if err != nil {
			return err
		}

		switch change.Action {
		case votes.ActionAdded:
			row := models.ReportVote{ReportID: reportID, UserID: userID, VoteType: voteType}
			if err := tx.Create(&row).Error; err != nil {
				norm := apperrors.Normalize(err)
				if apperrors.Is(norm, apperrors.ErrDuplicateKey) {
					return apperrors.Wrap(apperrors.ErrConflict, "already voted")
				}
				return norm
			}
		case votes.ActionRemoved:
			// Hard delete: a soft-deleted row would still hold the
			// unique index and block a future re-vote.
			if err := tx.Unscoped().Delete(&voteRow).Error; err != nil {
				return apperrors.Normalize(err)
			}
		case votes.ActionSwitched:
			if err := tx.Model(&voteRow).Update("vote_type", *change.NewType).Error; err != nil {
				return apperrors.Normalize(err)
			}
		}

		report.Upvotes, report.Downvotes = votes.ApplyCounters(report.Upvotes, report.Downvotes, change)
		if err := tx.Model(&report).
			Updates(map[string]interface{}{
				"upvotes":   report.Upvotes,
				"downvotes": report.Downvotes,
			}).Error; err != nil {
			return apperrors.Normalize(err)
		}

		result = VoteResult{
			Action:    change.Action,
			Upvotes:   report.Upvotes,
			Downvotes: report.Downvotes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ApplyPollVote records a user's single, terminal poll vote. A second
// attempt fails with a conflict; the votes map only moves on the first
// successful insert, keeping sum(votes) equal to the vote-row count.
func (s *SQLiteStore) ApplyPollVote(pollID, userID uint, option string) (*models.Poll, error) {
	var updated models.Poll

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var poll models.Poll
		if err := tx.First(&poll, pollID).Error; err != nil {
			if isNotFound(err) {
				return apperrors.Wrap(apperrors.ErrNotFound, "poll not found")
			}
			return apperrors.Normalize(err)
		}

		valid := false
		for _, opt := range poll.Options {
			if opt == option {
				valid = true
				break
			}
		}
		if !valid {
			return apperrors.Wrap(apperrors.ErrValidation, "option not part of this poll")
		}

		row := models.PollVote{PollID: pollID, UserID: userID, Option: option}
		if err := tx.Create(&row).Error; err != nil {
			norm := apperrors.Normalize(err)
			if apperrors.Is(norm, apperrors.ErrDuplicateKey) {
				return apperrors.Wrap(apperrors.ErrConflict, "can't add more than 1 vote")
			}
			return norm
		}

		if poll.Votes == nil {
			poll.Votes = make(map[string]int, len(poll.Options))
		}
		poll.Votes[option]++
		if err := tx.Model(&poll).Update("votes", poll.Votes).Error; err != nil {
			return apperrors.Normalize(err)
		}

		updated = poll
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
