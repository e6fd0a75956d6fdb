package responses_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/api/eligibility"
	"github.com/tamilore/orgvoice/api/responses"
	"github.com/tamilore/orgvoice/database"
	"github.com/tamilore/orgvoice/queue"
)

// ============================================================================
// Stubs
// ============================================================================

type StubSurveyStore struct {
	Surveys    []database.Survey
	Questions  map[int64][]database.SurveyQuestion
	ShouldFail bool
}

func NewStubSurveyStore() *StubSurveyStore {
	return &StubSurveyStore{Questions: make(map[int64][]database.SurveyQuestion)}
}

func (s *StubSurveyStore) GetSurvey(ctx context.Context, surveyID int64) (database.Survey, error) {
	if s.ShouldFail {
		return database.Survey{}, errors.New("database error")
	}

	for _, survey := range s.Surveys {
		if survey.ID == surveyID {
			return survey, nil
		}
	}
	return database.Survey{}, custom_errors.ErrNotFound
}

func (s *StubSurveyStore) GetQuestionsBySurveyID(ctx context.Context, surveyID int64) ([]database.SurveyQuestion, error) {
	if s.ShouldFail {
		return nil, errors.New("database error")
	}
	return s.Questions[surveyID], nil
}

func (s *StubSurveyStore) ListAllSurveys(ctx context.Context) ([]database.Survey, error) {
	if s.ShouldFail {
		return nil, errors.New("database error")
	}
	return s.Surveys, nil
}

type StubUserStore struct {
	Users      []database.User
	ShouldFail bool
}

func (s *StubUserStore) FindUserByID(ctx context.Context, userID int64) (database.User, error) {
	if s.ShouldFail {
		return database.User{}, errors.New("database error")
	}

	for _, u := range s.Users {
		if u.ID == userID {
			return u, nil
		}
	}
	return database.User{}, custom_errors.ErrNotFound
}

type receiptKey struct {
	UserID   int64
	SurveyID int64
}

type StubResponseStore struct {
	Receipts         map[receiptKey]database.ResponseReceipt
	Inserted         []responses.InsertResponseParams
	ShouldFailInsert bool

	// ConflictOnInsert simulates a concurrent submission winning the race
	// between the eligibility check and the transactional write.
	ConflictOnInsert bool
}

func NewStubResponseStore() *StubResponseStore {
	return &StubResponseStore{Receipts: make(map[receiptKey]database.ResponseReceipt)}
}

func (s *StubResponseStore) FindReceipt(ctx context.Context, userID, surveyID int64) (database.ResponseReceipt, error) {
	receipt, exists := s.Receipts[receiptKey{UserID: userID, SurveyID: surveyID}]
	if !exists {
		return database.ResponseReceipt{}, custom_errors.ErrNotFound
	}
	return receipt, nil
}

func (s *StubResponseStore) InsertResponse(ctx context.Context, params responses.InsertResponseParams) (int64, error) {
	if s.ShouldFailInsert {
		return 0, errors.New("database error")
	}

	if params.RecordReceipt {
		key := receiptKey{UserID: params.UserID, SurveyID: params.SurveyID}
		if _, exists := s.Receipts[key]; exists || s.ConflictOnInsert {
			return 0, custom_errors.ErrConflict
		}
		s.Receipts[key] = database.ResponseReceipt{
			SurveyID:    params.SurveyID,
			UserID:      params.UserID,
			SubmittedAt: time.Now(),
		}
	}

	s.Inserted = append(s.Inserted, params)
	return int64(len(s.Inserted)), nil
}

func (s *StubResponseStore) ListResponsesBySurvey(ctx context.Context, surveyID int64) ([]database.SurveyResponse, error) {
	return nil, nil
}

func (s *StubResponseStore) GetAnswersByResponse(ctx context.Context, responseID int64) ([]database.ResponseAnswer, error) {
	return nil, nil
}

type StubQueue struct {
	Tasks      []queue.Processor
	ShouldFail bool
}

func (q *StubQueue) Enqueue(processor queue.Processor) error {
	if q.ShouldFail {
		return errors.New("queue error")
	}
	q.Tasks = append(q.Tasks, processor)
	return nil
}

// ============================================================================
// Fixtures
// ============================================================================

func newTestService() (*responses.Service, *StubSurveyStore, *StubResponseStore, *StubQueue) {
	surveys := NewStubSurveyStore()
	surveys.Surveys = []database.Survey{{
		ID:        1,
		Title:     "Remote work survey",
		IsActive:  true,
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		CreatedBy: 99,
	}}
	surveys.Questions[1] = []database.SurveyQuestion{
		{QuestionText: "How is it going?", QuestionType: database.QuestionTypeText, IsRequired: true, OrderIndex: 1},
		{QuestionText: "Rate your setup", QuestionType: database.QuestionTypeRating, OrderIndex: 2},
	}

	users := &StubUserStore{Users: []database.User{
		{ID: 10, Email: "ada@example.com", Role: database.RoleEmployee, DepartmentID: pgtype.Int8{Int64: 2, Valid: true}},
		{ID: 99, Email: "author@example.com", Role: database.RoleHR},
	}}

	store := NewStubResponseStore()
	q := &StubQueue{}

	return responses.NewService(surveys, users, store, q), surveys, store, q
}

func validParams(t *testing.T) responses.SubmitParams {
	t.Helper()
	return responses.SubmitParams{
		Answers: []responses.AnswerValue{
			decodeAnswer(t, `"going well"`),
			decodeAnswer(t, `4`),
		},
		TimeSpentSeconds: 120,
	}
}

func assertEligibilityReason(t *testing.T, err error, want eligibility.Reason) {
	t.Helper()

	var eligErr *responses.EligibilityError
	if !errors.As(err, &eligErr) {
		t.Fatalf("error = %v, want EligibilityError", err)
	}
	if eligErr.Reason != want {
		t.Errorf("reason = %q, want %q", eligErr.Reason, want)
	}
}

// ============================================================================
// SubmitResponse Tests
// ============================================================================

func TestSubmitResponse(t *testing.T) {
	t.Run("accepts a valid submission and snapshots the questions", func(t *testing.T) {
		service, _, store, q := newTestService()

		responseID, violations, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(violations) != 0 {
			t.Fatalf("unexpected violations: %+v", violations)
		}
		if responseID == 0 {
			t.Error("expected a response ID")
		}

		if len(store.Inserted) != 1 {
			t.Fatalf("expected 1 stored response, got %d", len(store.Inserted))
		}

		inserted := store.Inserted[0]
		if len(inserted.Answers) != 2 {
			t.Fatalf("expected 2 stored answers, got %d", len(inserted.Answers))
		}
		if inserted.Answers[0].QuestionText != "How is it going?" {
			t.Errorf("question text snapshot = %q", inserted.Answers[0].QuestionText)
		}
		if inserted.Answers[0].QuestionType != database.QuestionTypeText {
			t.Errorf("question type snapshot = %q", inserted.Answers[0].QuestionType)
		}
		if string(inserted.Answers[0].Value) != `"going well"` {
			t.Errorf("stored value = %s", inserted.Answers[0].Value)
		}

		if inserted.RespondentID == nil || *inserted.RespondentID != 10 {
			t.Error("expected non-anonymous submission to carry the respondent")
		}
		if inserted.MetaDepartmentID == nil || *inserted.MetaDepartmentID != 2 {
			t.Error("expected department metadata to be captured")
		}
		if inserted.MetaRole != database.RoleEmployee {
			t.Errorf("meta role = %q", inserted.MetaRole)
		}

		if len(q.Tasks) != 1 {
			t.Errorf("expected 1 notification task, got %d", len(q.Tasks))
		}
	})

	t.Run("anonymous submission drops the respondent but keeps metadata", func(t *testing.T) {
		service, _, store, _ := newTestService()

		params := validParams(t)
		params.Anonymous = true

		_, _, err := service.SubmitResponse(context.Background(), 10, 1, params)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		inserted := store.Inserted[0]
		if inserted.RespondentID != nil {
			t.Error("expected anonymous submission to have no respondent")
		}
		if inserted.MetaDepartmentID == nil || inserted.MetaRole != database.RoleEmployee {
			t.Error("expected segment metadata on anonymous submission")
		}
	})

	t.Run("survey-level anonymity overrides the request", func(t *testing.T) {
		service, surveys, store, _ := newTestService()
		surveys.Surveys[0].IsAnonymous = true

		_, _, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if store.Inserted[0].RespondentID != nil {
			t.Error("expected anonymous survey to drop the respondent")
		}
	})

	t.Run("answer count mismatch writes nothing", func(t *testing.T) {
		service, _, store, _ := newTestService()

		params := validParams(t)
		params.Answers = params.Answers[:1]

		_, violations, err := service.SubmitResponse(context.Background(), 10, 1, params)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(violations) != 1 || violations[0].Code != responses.ViolationMalformedSubmission {
			t.Fatalf("violations = %+v, want one MALFORMED_SUBMISSION", violations)
		}

		if len(store.Inserted) != 0 {
			t.Error("expected no stored response")
		}
	})

	t.Run("invalid answers come back as violations, nothing stored", func(t *testing.T) {
		service, _, store, _ := newTestService()

		params := validParams(t)
		params.Answers[1] = decodeAnswer(t, `9`)

		_, violations, err := service.SubmitResponse(context.Background(), 10, 1, params)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(violations) != 1 || violations[0].Position != 2 {
			t.Fatalf("violations = %+v", violations)
		}

		if len(store.Inserted) != 0 {
			t.Error("expected no stored response")
		}
	})

	t.Run("unknown survey is NOT_FOUND", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, _, err := service.SubmitResponse(context.Background(), 10, 42, validParams(t))
		assertEligibilityReason(t, err, eligibility.ReasonNotFound)
	})

	t.Run("user outside the audience is NOT_TARGETED", func(t *testing.T) {
		service, surveys, _, _ := newTestService()
		surveys.Surveys[0].TargetDepartments = []int64{99}

		_, _, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		assertEligibilityReason(t, err, eligibility.ReasonNotTargeted)
	})

	t.Run("closed survey is NOT_OPEN", func(t *testing.T) {
		service, surveys, _, _ := newTestService()
		surveys.Surveys[0].EndDate = time.Now().Add(-time.Hour)

		_, _, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		assertEligibilityReason(t, err, eligibility.ReasonNotOpen)
	})

	t.Run("second submission is ALREADY_SUBMITTED with one stored response", func(t *testing.T) {
		service, _, store, _ := newTestService()

		_, _, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		if err != nil {
			t.Fatalf("unexpected error on first submission: %v", err)
		}

		_, _, err = service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		assertEligibilityReason(t, err, eligibility.ReasonAlreadySubmitted)

		if len(store.Inserted) != 1 {
			t.Errorf("expected 1 stored response, got %d", len(store.Inserted))
		}
	})

	t.Run("race loser at the store also maps to ALREADY_SUBMITTED", func(t *testing.T) {
		service, _, store, _ := newTestService()
		store.ConflictOnInsert = true

		_, _, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		assertEligibilityReason(t, err, eligibility.ReasonAlreadySubmitted)
	})

	t.Run("multiple submissions allowed when the survey opts in", func(t *testing.T) {
		service, surveys, store, _ := newTestService()
		surveys.Surveys[0].AllowMultipleSubmissions = true

		for i := 0; i < 3; i++ {
			_, _, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
			if err != nil {
				t.Fatalf("submission %d: unexpected error: %v", i+1, err)
			}
		}

		if len(store.Inserted) != 3 {
			t.Errorf("expected 3 stored responses, got %d", len(store.Inserted))
		}
	})

	t.Run("queue outage does not fail the submission", func(t *testing.T) {
		service, _, _, q := newTestService()
		q.ShouldFail = true

		_, violations, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		if err != nil || len(violations) != 0 {
			t.Fatalf("err = %v, violations = %+v", err, violations)
		}
	})
}

// ============================================================================
// ListEligibleSurveys Tests
// ============================================================================

func TestListEligibleSurveys(t *testing.T) {
	t.Run("filters out surveys outside the audience", func(t *testing.T) {
		service, surveys, _, _ := newTestService()
		surveys.Surveys = append(surveys.Surveys, database.Survey{
			ID:                2,
			Title:             "Managers only",
			IsActive:          true,
			StartDate:         time.Now().Add(-time.Hour),
			EndDate:           time.Now().Add(time.Hour),
			TargetRoles:       []string{database.RoleManager},
			TargetDepartments: []int64{42},
		})

		results, err := service.ListEligibleSurveys(context.Background(), 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(results) != 1 {
			t.Fatalf("expected 1 visible survey, got %d", len(results))
		}
		if results[0].Survey.ID != 1 {
			t.Errorf("visible survey = %d, want 1", results[0].Survey.ID)
		}
	})

	t.Run("completed surveys stay listed with their verdict", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, _, err := service.SubmitResponse(context.Background(), 10, 1, validParams(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		results, err := service.ListEligibleSurveys(context.Background(), 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(results) != 1 {
			t.Fatalf("expected 1 survey, got %d", len(results))
		}
		verdict := results[0].Verdict
		if !verdict.HasSubmitted || verdict.CanSubmit {
			t.Errorf("verdict = %+v, want submitted and blocked", verdict)
		}
	})
}

// ============================================================================
// GetSurveyForUser Tests
// ============================================================================

func TestGetSurveyForUser(t *testing.T) {
	t.Run("returns survey with questions and verdict", func(t *testing.T) {
		service, _, _, _ := newTestService()

		detail, verdict, err := service.GetSurveyForUser(context.Background(), 10, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if detail.Survey.ID != 1 {
			t.Errorf("survey = %d, want 1", detail.Survey.ID)
		}
		if len(detail.Questions) != 2 {
			t.Errorf("expected 2 questions, got %d", len(detail.Questions))
		}
		if !verdict.CanSubmit {
			t.Error("expected can_submit")
		}
	})

	t.Run("denies users outside the audience", func(t *testing.T) {
		service, surveys, _, _ := newTestService()
		surveys.Surveys[0].TargetRoles = []string{database.RoleManager}
		surveys.Surveys[0].TargetDepartments = []int64{42}

		_, _, err := service.GetSurveyForUser(context.Background(), 10, 1)
		assertEligibilityReason(t, err, eligibility.ReasonNotTargeted)
	})

	t.Run("unknown survey is NOT_FOUND", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, _, err := service.GetSurveyForUser(context.Background(), 10, 42)
		assertEligibilityReason(t, err, eligibility.ReasonNotFound)
	})
}
