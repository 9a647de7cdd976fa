// Package votes implements the toggle-vote state machine for report
// votes. The transition function is pure; the storage layer applies
// its outcome inside a single transaction.
package votes

import (
	apperrors "aircast/internal/errors"
	"aircast/internal/models"
)

// Actions reported back to the caller after a vote request.
const (
	ActionAdded    = "added"
	ActionRemoved  = "removed"
	ActionSwitched = "switched"
)

// Change describes what a vote request does to the stored state.
type Change struct {
	Action    string
	DeltaUp   int
	DeltaDown int
	// NewType is the vote type to persist; nil means the vote row is
	// deleted (toggle off).
	NewType *string
}

// Transition computes the state change for a vote of type voteType
// given the user's existing vote (nil = no prior vote).
//
//	none     --T--> voted(T)   added
//	voted(T) --T--> none       removed
//	voted(T) --U--> voted(U)   switched
func Transition(existing *string, voteType string) (Change, error) {
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return Change{}, apperrors.Wrap(apperrors.ErrValidation, "vote type must be upvote or downvote")
	}
	if existing == nil {
		c := Change{Action: ActionAdded, NewType: &voteType}
		if voteType == models.VoteUp {
			c.DeltaUp = 1
		} else {
			c.DeltaDown = 1
		}
		return c, nil
	}
	if *existing == voteType {
		c := Change{Action: ActionRemoved}
		if voteType == models.VoteUp {
			c.DeltaUp = -1
		} else {
			c.DeltaDown = -1
		}
		return c, nil
	}
	// Switch: decrement the old counter, increment the new one.
	c := Change{Action: ActionSwitched, NewType: &voteType}
	if voteType == models.VoteUp {
		c.DeltaUp = 1
		c.DeltaDown = -1
	} else {
		c.DeltaUp = -1
		c.DeltaDown = 1
	}
	return c, nil
}

// ApplyCounters applies a change's deltas to counters, flooring at 0.
func ApplyCounters(up, down int, c Change) (int, int) {
	up += c.DeltaUp
	down += c.DeltaDown
	if up < 0 {
		up = 0
	}
	if down < 0 {
		down = 0
	}
	return up, down
}
