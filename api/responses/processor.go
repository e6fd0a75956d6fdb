package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/api/eligibility"
	"github.com/tamilore/orgvoice/database"
	"github.com/tamilore/orgvoice/log"
	"github.com/tamilore/orgvoice/queue"
)

// SurveyStore is the slice of the surveys store the engine consumes.
type SurveyStore interface {
	GetSurvey(ctx context.Context, surveyID int64) (database.Survey, error)
	GetQuestionsBySurveyID(ctx context.Context, surveyID int64) ([]database.SurveyQuestion, error)
	ListAllSurveys(ctx context.Context) ([]database.Survey, error)
}

// UserStore is the slice of the users store the engine consumes.
type UserStore interface {
	FindUserByID(ctx context.Context, userID int64) (database.User, error)
}

// EligibilityError is a submission rejected by the resolver. It is an
// expected user-facing outcome, not a server fault.
type EligibilityError struct {
	Reason eligibility.Reason
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("submission rejected: %s", e.Reason)
}

type SurveyWithVerdict struct {
	Survey  database.Survey     `json:"survey"`
	Verdict eligibility.Verdict `json:"verdict"`
}

type SurveyDetail struct {
	Survey    database.Survey           `json:"survey"`
	Questions []database.SurveyQuestion `json:"questions"`
}

type SubmitParams struct {
	Answers          []AnswerValue
	Anonymous        bool
	TimeSpentSeconds int32
}

// Service is the submission engine: one resolver for every entry point, one
// processor for every write.
type Service struct {
	Surveys  SurveyStore
	Users    UserStore
	Store    Store
	Resolver *eligibility.Resolver
	Queue    queue.Queue
}

func NewService(surveys SurveyStore, users UserStore, store Store, q queue.Queue) *Service {
	return &Service{
		Surveys:  surveys,
		Users:    users,
		Store:    store,
		Resolver: eligibility.NewResolver(store),
		Queue:    q,
	}
}

func (s *Service) identity(ctx context.Context, userID int64) (eligibility.Identity, database.User, error) {
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		return eligibility.Identity{}, database.User{}, err
	}

	identity := eligibility.Identity{UserID: user.ID, Role: user.Role}
	if user.DepartmentID.Valid {
		identity.DepartmentID = user.DepartmentID.Int64
	}

	return identity, user, nil
}

// ListEligibleSurveys annotates every survey visible to the user with its
// verdict, completed ones included so the caller can render history.
func (s *Service) ListEligibleSurveys(ctx context.Context, userID int64) ([]SurveyWithVerdict, error) {
	identity, _, err := s.identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	surveys, err := s.Surveys.ListAllSurveys(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SurveyWithVerdict, 0, len(surveys))
	for _, survey := range surveys {
		verdict, err := s.Resolver.Resolve(ctx, identity, survey)
		if err != nil {
			return nil, err
		}
		if !verdict.Visible {
			continue
		}
		results = append(results, SurveyWithVerdict{Survey: survey, Verdict: verdict})
	}

	return results, nil
}

// GetSurveyForUser returns one survey with its questions, denying access when
// the user is not part of its audience.
func (s *Service) GetSurveyForUser(ctx context.Context, userID, surveyID int64) (SurveyDetail, eligibility.Verdict, error) {
	identity, _, err := s.identity(ctx, userID)
	if err != nil {
		return SurveyDetail{}, eligibility.Verdict{}, err
	}

	survey, err := s.Surveys.GetSurvey(ctx, surveyID)
	if errors.Is(err, custom_errors.ErrNotFound) {
		return SurveyDetail{}, eligibility.Verdict{}, &EligibilityError{Reason: eligibility.ReasonNotFound}
	}
	if err != nil {
		return SurveyDetail{}, eligibility.Verdict{}, err
	}

	verdict, err := s.Resolver.Resolve(ctx, identity, survey)
	if err != nil {
		return SurveyDetail{}, eligibility.Verdict{}, err
	}
	if !verdict.Visible {
		return SurveyDetail{}, eligibility.Verdict{}, &EligibilityError{Reason: verdict.Reason}
	}

	questions, err := s.Surveys.GetQuestionsBySurveyID(ctx, surveyID)
	if err != nil {
		return SurveyDetail{}, eligibility.Verdict{}, err
	}

	return SurveyDetail{Survey: survey, Questions: questions}, verdict, nil
}

// SubmitResponse validates and persists one submission, or rejects it with no
// partial effects. Violations come back as data; an EligibilityError means
// the user may not submit at all.
//
// Eligibility is resolved again here, not just at render time: a survey can
// close, or a duplicate can land, between page load and submit. The final
// word on duplicates is the receipt uniqueness constraint, which turns the
// race loser into ALREADY_SUBMITTED instead of a second stored response.
func (s *Service) SubmitResponse(ctx context.Context, userID, surveyID int64, params SubmitParams) (int64, []Violation, error) {
	identity, user, err := s.identity(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	survey, err := s.Surveys.GetSurvey(ctx, surveyID)
	if errors.Is(err, custom_errors.ErrNotFound) {
		return 0, nil, &EligibilityError{Reason: eligibility.ReasonNotFound}
	}
	if err != nil {
		return 0, nil, err
	}

	verdict, err := s.Resolver.Resolve(ctx, identity, survey)
	if err != nil {
		return 0, nil, err
	}
	if !verdict.Visible {
		return 0, nil, &EligibilityError{Reason: verdict.Reason}
	}
	if !verdict.CanSubmit {
		return 0, nil, &EligibilityError{Reason: verdict.Reason}
	}

	questions, err := s.Surveys.GetQuestionsBySurveyID(ctx, surveyID)
	if err != nil {
		return 0, nil, err
	}

	// Answer count must match before any per-answer validation: a length
	// mismatch makes positional alignment meaningless.
	if len(params.Answers) != len(questions) {
		return 0, []Violation{{
			Code:    ViolationMalformedSubmission,
			Message: fmt.Sprintf("expected %d answers, got %d", len(questions), len(params.Answers)),
		}}, nil
	}

	if violations := ValidateSubmission(questions, params.Answers); len(violations) > 0 {
		return 0, violations, nil
	}

	effectiveAnonymous := survey.IsAnonymous || params.Anonymous

	insert := InsertResponseParams{
		SurveyID:         surveyID,
		UserID:           userID,
		RecordReceipt:    !survey.AllowMultipleSubmissions,
		TimeSpentSeconds: params.TimeSpentSeconds,
		MetaRole:         user.Role,
	}
	if !effectiveAnonymous {
		insert.RespondentID = &userID
	}
	if user.DepartmentID.Valid {
		departmentID := user.DepartmentID.Int64
		insert.MetaDepartmentID = &departmentID
	}

	for i, question := range questions {
		value, err := json.Marshal(params.Answers[i].Normalize(question.QuestionType))
		if err != nil {
			return 0, nil, fmt.Errorf("error encoding answer: %v", err)
		}
		insert.Answers = append(insert.Answers, InsertAnswerParams{
			OrderIndex:   question.OrderIndex,
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			Value:        value,
		})
	}

	responseID, err := s.Store.InsertResponse(ctx, insert)
	if errors.Is(err, custom_errors.ErrConflict) {
		return 0, nil, &EligibilityError{Reason: eligibility.ReasonAlreadySubmitted}
	}
	if err != nil {
		return 0, nil, err
	}

	s.notifyAuthor(ctx, survey)

	return responseID, nil, nil
}

// notifyAuthor is best effort; a queue outage never fails an accepted
// submission.
func (s *Service) notifyAuthor(ctx context.Context, survey database.Survey) {
	if s.Queue == nil {
		return
	}

	author, err := s.Users.FindUserByID(ctx, survey.CreatedBy)
	if err != nil {
		log.Errorf("error looking up survey author for notification: %v", err)
		return
	}

	payload := &queue.ResponseReceivedPayload{
		Name:        "response-received",
		Email:       author.Email,
		SurveyID:    survey.ID,
		SurveyTitle: survey.Title,
	}
	if err := s.Queue.Enqueue(payload); err != nil {
		log.Errorf("error enqueueing response notification: %v", err)
	}
}
