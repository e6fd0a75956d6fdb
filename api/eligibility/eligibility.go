// Package eligibility decides whether a user can see and submit to a survey.
// Every entry point (listing, detail, submit) goes through the same Resolver,
// so "can list" and "can submit" can never drift apart.
package eligibility

import (
	"context"
	"errors"
	"time"

	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/database"
)

// Identity is the slice of a user the engine cares about. DepartmentID is
// zero for users without a department.
type Identity struct {
	UserID       int64
	Role         string
	DepartmentID int64
}

type Reason string

const (
	ReasonNotFound         Reason = "NOT_FOUND"
	ReasonNotTargeted      Reason = "NOT_TARGETED"
	ReasonNotOpen          Reason = "NOT_OPEN"
	ReasonAlreadySubmitted Reason = "ALREADY_SUBMITTED"
)

// Verdict is recomputed on every request and never persisted.
//
// Visible and CanSubmit are deliberately separate: a survey the user already
// completed, or whose window has closed, stays visible in listings so it can
// be shown as history, but CanSubmit is false for it.
type Verdict struct {
	Visible      bool       `json:"visible"`
	Reason       Reason     `json:"reason,omitempty"`
	HasSubmitted bool       `json:"has_submitted"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	CanSubmit    bool       `json:"can_submit"`
}

// MatchesAudience reports whether the user falls inside the survey's target
// audience. The match is an OR across dimensions: being in a targeted
// department qualifies, and so does holding a targeted role. A survey with
// both lists empty is untargeted and matches every authenticated user.
//
// Elevated roles are NOT special-cased here. The resolver applies that
// bypass, keeping this a plain audience-membership predicate.
func MatchesAudience(survey database.Survey, role string, departmentID int64) bool {
	if len(survey.TargetDepartments) == 0 && len(survey.TargetRoles) == 0 {
		return true
	}

	for _, id := range survey.TargetDepartments {
		if id == departmentID {
			return true
		}
	}

	for _, targetRole := range survey.TargetRoles {
		if targetRole == role {
			return true
		}
	}

	return false
}

// WindowOpen reports whether the survey accepts submissions at the given
// time. Both date bounds are inclusive. An inactive survey is never open,
// whatever its dates say: the manual toggle is a kill switch that overrides
// the schedule.
func WindowOpen(survey database.Survey, now time.Time) bool {
	if !survey.IsActive {
		return false
	}
	if now.Before(survey.StartDate) {
		return false
	}
	if now.After(survey.EndDate) {
		return false
	}
	return true
}

// ReceiptStore looks up whether a user has already submitted to a survey.
type ReceiptStore interface {
	FindReceipt(ctx context.Context, userID, surveyID int64) (database.ResponseReceipt, error)
}

type Resolver struct {
	Receipts ReceiptStore

	// Now is the clock used for window checks. Defaults to time.Now.
	Now func() time.Time
}

func NewResolver(receipts ReceiptStore) *Resolver {
	return &Resolver{Receipts: receipts, Now: time.Now}
}

// Resolve produces the verdict for one (user, survey) pair.
//
// hr and admin see every survey regardless of targeting, since they
// administer all of them, but they are still subject to the one-submission
// rule like everyone else.
func (r *Resolver) Resolve(ctx context.Context, user Identity, survey database.Survey) (Verdict, error) {
	if !database.ElevatedRole(user.Role) && !MatchesAudience(survey, user.Role, user.DepartmentID) {
		return Verdict{Visible: false, Reason: ReasonNotTargeted}, nil
	}

	verdict := Verdict{Visible: true}

	receipt, err := r.Receipts.FindReceipt(ctx, user.UserID, survey.ID)
	switch {
	case err == nil:
		verdict.HasSubmitted = true
		submittedAt := receipt.SubmittedAt
		verdict.SubmittedAt = &submittedAt
	case errors.Is(err, custom_errors.ErrNotFound):
		// first encounter with this survey
	default:
		return Verdict{}, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	open := WindowOpen(survey, now())

	if verdict.HasSubmitted && !survey.AllowMultipleSubmissions {
		verdict.Reason = ReasonAlreadySubmitted
	} else if !open {
		verdict.Reason = ReasonNotOpen
	}

	verdict.CanSubmit = open && (!verdict.HasSubmitted || survey.AllowMultipleSubmissions)

	return verdict, nil
}
