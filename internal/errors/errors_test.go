package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"
)

func TestNormalize_DriverErrors(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, ErrDuplicateKey},
		{"sqlite unique", fmt.Errorf("UNIQUE constraint failed: users.email"), ErrDuplicateKey},
		{"postgres unique", fmt.Errorf("duplicate key value violates unique constraint"), ErrDuplicateKey},
		{"sqlite fk", fmt.Errorf("FOREIGN KEY constraint failed"), ErrForeignKey},
		{"sqlite not null", fmt.Errorf("NOT NULL constraint failed: users.email"), ErrCheckViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if !stderrors.Is(got, tc.want) {
				t.Errorf("Normalize(%v) = %v, want wrapping %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_NilAndUnknown(t *testing.T) {
	if Normalize(nil) != nil {
		t.Error("Normalize(nil) should be nil")
	}
	unknown := fmt.Errorf("disk exploded")
	if got := Normalize(unknown); got != unknown {
		t.Errorf("unknown errors should pass through, got %v", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 200},
		{ErrValidation, 400},
		{ErrForeignKey, 400},
		{ErrCheckViolation, 400},
		{ErrAuth, 401},
		{ErrNotFound, 404},
		{ErrDuplicateKey, 409},
		{ErrConflict, 409},
		{ErrConfig, 503},
		{ErrUpstream, 500},
		{fmt.Errorf("anything else"), 500},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

// TestHTTPStatus_AlwaysErrorRange guarantees that every non-nil error
// maps into [400, 599].
func TestHTTPStatus_AlwaysErrorRange(t *testing.T) {
	errs := []error{
		ErrDuplicateKey, ErrNotFound, ErrForeignKey, ErrCheckViolation,
		ErrValidation, ErrAuth, ErrConflict, ErrConfig, ErrUpstream,
		fmt.Errorf("PGRST301: something internal"),
		Normalize(fmt.Errorf("UNIQUE constraint failed: report_votes.report_id")),
	}
	for _, err := range errs {
		status := HTTPStatus(err)
		if status < 400 || status > 599 {
			t.Errorf("HTTPStatus(%v) = %d, outside error range", err, status)
		}
	}
}

// TestMessage_NeverLeaksDriverCodes verifies sanitized messages never
// contain raw constraint or vendor error text.
func TestMessage_NeverLeaksDriverCodes(t *testing.T) {
	raw := []error{
		Normalize(fmt.Errorf("UNIQUE constraint failed: users.email")),
		Normalize(fmt.Errorf("FOREIGN KEY constraint failed")),
		Normalize(fmt.Errorf("NOT NULL constraint failed: polls.question")),
		fmt.Errorf("PGRST116: no rows returned"),
		fmt.Errorf("SQLITE_BUSY: database is locked"),
	}
	for _, err := range raw {
		msg := Message(err, "email")
		for _, leak := range []string{"PGRST", "SQLITE", "constraint", "sql"} {
			if strings.Contains(strings.ToLower(msg), strings.ToLower(leak)) {
				t.Errorf("Message(%v) = %q leaks %q", err, msg, leak)
			}
		}
	}
}

func TestMessage_EmailDuplicate(t *testing.T) {
	err := Normalize(fmt.Errorf("UNIQUE constraint failed: users.email"))
	if got := Message(err, "email"); got != "Email already registered" {
		t.Errorf("Message = %q, want %q", got, "Email already registered")
	}
}

func TestMessage_WrappedDetail(t *testing.T) {
	err := Wrap(ErrConflict, "can't add more than 1 vote")
	if got := Message(err, "poll"); got != "can't add more than 1 vote" {
		t.Errorf("Message = %q", got)
	}

	err = Wrap(ErrValidation, "aqi must be between 1 and 5")
	if got := Message(err, ""); got != "aqi must be between 1 and 5" {
		t.Errorf("Message = %q", got)
	}
}

func TestMessage_ErrorPrecedence(t *testing.T) {
	// A bare sentinel still produces a presentable fallback.
	if got := Message(ErrConflict, ""); got != "Conflict" {
		t.Errorf("Message(ErrConflict) = %q", got)
	}
	if got := Message(ErrUpstream, ""); got != "Upstream provider failed" {
		t.Errorf("Message(ErrUpstream) = %q", got)
	}
}
