package surveys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/database"
)

type Store interface {
	CreateSurvey(ctx context.Context, params CreateSurveyParams) (database.Survey, error)
	GetSurvey(ctx context.Context, surveyID int64) (database.Survey, error)
	GetSurveyWithDetails(ctx context.Context, surveyID int64) (SurveyDetail, error)
	GetQuestionsBySurveyID(ctx context.Context, surveyID int64) ([]database.SurveyQuestion, error)
	ListSurveys(ctx context.Context, params ListSurveysParams) ([]database.Survey, error)
	ListAllSurveys(ctx context.Context) ([]database.Survey, error)
	UpdateSurvey(ctx context.Context, params UpdateSurveyParams) (database.Survey, error)
	DeleteSurvey(ctx context.Context, surveyID int64) error
	HasResponses(ctx context.Context, surveyID int64) (bool, error)
	GetSurveyStats(ctx context.Context, surveyID int64) (SurveyStats, error)
}

type Repository struct {
	db         *pgxpool.Pool
	transactor database.Transactor
}

func NewSurveyStore(db *pgxpool.Pool) *Repository {
	return &Repository{db: db, transactor: database.NewDBTransactor(db)}
}

const surveyColumns = `id, title, description, category, is_active, start_date, end_date,
	is_anonymous, allow_multiple_submissions, target_departments, target_roles,
	created_by, created_at, updated_at`

func scanSurvey(row pgx.Row) (database.Survey, error) {
	var survey database.Survey
	err := row.Scan(
		&survey.ID, &survey.Title, &survey.Description, &survey.Category,
		&survey.IsActive, &survey.StartDate, &survey.EndDate,
		&survey.IsAnonymous, &survey.AllowMultipleSubmissions,
		&survey.TargetDepartments, &survey.TargetRoles,
		&survey.CreatedBy, &survey.CreatedAt, &survey.UpdatedAt,
	)
	return survey, err
}

// CreateSurvey inserts the survey and its ordered questions in one
// transaction, so a half-created survey is never visible.
func (r *Repository) CreateSurvey(ctx context.Context, params CreateSurveyParams) (database.Survey, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	seen := make(map[int32]bool, len(params.Questions))
	for _, question := range params.Questions {
		if seen[question.OrderIndex] {
			return database.Survey{}, fmt.Errorf("duplicate question order %d", question.OrderIndex)
		}
		seen[question.OrderIndex] = true
	}

	var survey database.Survey

	err := r.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		exec := database.TxFromContext(ctx, r.db)

		row := exec.QueryRow(ctx, `
			INSERT INTO surveys
				(title, description, category, is_active, start_date, end_date,
				is_anonymous, allow_multiple_submissions, target_departments, target_roles, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+surveyColumns,
			params.Title,
			pgtype.Text{String: params.Description, Valid: params.Description != ""},
			params.Category, params.IsActive, params.StartDate, params.EndDate,
			params.IsAnonymous, params.AllowMultipleSubmissions,
			params.TargetDepartments, params.TargetRoles, params.CreatedBy,
		)

		var err error
		survey, err = scanSurvey(row)
		if err != nil {
			return fmt.Errorf("error creating survey: %v", err)
		}

		for _, question := range params.Questions {
			_, err := exec.Exec(ctx, `
				INSERT INTO survey_questions
					(survey_id, question_text, question_type, options, is_required, order_index)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				survey.ID, question.QuestionText, question.QuestionType,
				question.Options, question.IsRequired, question.OrderIndex,
			)
			if err != nil {
				return fmt.Errorf("error creating question: %v", err)
			}
		}

		return nil
	})
	if err != nil {
		return database.Survey{}, err
	}

	return survey, nil
}

func (r *Repository) GetSurvey(ctx context.Context, surveyID int64) (database.Survey, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	survey, err := scanSurvey(r.db.QueryRow(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, surveyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Survey{}, custom_errors.ErrNotFound
	}
	if err != nil {
		return database.Survey{}, fmt.Errorf("error getting survey: %v", err)
	}

	return survey, nil
}

func (r *Repository) GetSurveyWithDetails(ctx context.Context, surveyID int64) (SurveyDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	survey, err := r.GetSurvey(ctx, surveyID)
	if err != nil {
		return SurveyDetail{}, err
	}

	questions, err := r.GetQuestionsBySurveyID(ctx, surveyID)
	if err != nil {
		return SurveyDetail{}, err
	}

	return SurveyDetail{Survey: survey, Questions: questions}, nil
}

func (r *Repository) GetQuestionsBySurveyID(ctx context.Context, surveyID int64) ([]database.SurveyQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, survey_id, question_text, question_type, options, is_required, order_index
		FROM survey_questions
		WHERE survey_id = $1
		ORDER BY order_index`,
		surveyID,
	)
	if err != nil {
		return nil, fmt.Errorf("error getting questions: %v", err)
	}
	defer rows.Close()

	var questions []database.SurveyQuestion
	for rows.Next() {
		var question database.SurveyQuestion
		err := rows.Scan(
			&question.ID, &question.SurveyID, &question.QuestionText,
			&question.QuestionType, &question.Options, &question.IsRequired,
			&question.OrderIndex,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning question: %v", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error getting questions: %v", err)
	}

	return questions, nil
}

func (r *Repository) ListSurveys(ctx context.Context, params ListSurveysParams) ([]database.Survey, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	category := pgtype.Text{}
	if params.Category != "" {
		category = pgtype.Text{String: params.Category, Valid: true}
	}

	active := pgtype.Bool{}
	if params.Active != nil {
		active = pgtype.Bool{Bool: *params.Active, Valid: true}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+surveyColumns+`
		FROM surveys
		WHERE ($1::text IS NULL OR category = $1)
			AND ($2::boolean IS NULL OR is_active = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		category, active, limit, params.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing surveys: %v", err)
	}
	defer rows.Close()

	return collectSurveys(rows)
}

// ListAllSurveys returns every survey, open or not. The eligibility resolver
// filters per user; completed and closed surveys must still reach it so they
// can show up as history.
func (r *Repository) ListAllSurveys(ctx context.Context) ([]database.Survey, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT `+surveyColumns+` FROM surveys ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing surveys: %v", err)
	}
	defer rows.Close()

	return collectSurveys(rows)
}

func collectSurveys(rows pgx.Rows) ([]database.Survey, error) {
	var surveys []database.Survey
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning survey: %v", err)
		}
		surveys = append(surveys, survey)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing surveys: %v", err)
	}

	return surveys, nil
}

// UpdateSurvey applies partial updates. Structural edits are refused once
// responses exist; lifecycle toggles (is_active, target audience, anonymity)
// stay editable. Unsetting is_anonymous later never reveals identity on old
// responses, since anonymous responses never stored one.
func (r *Repository) UpdateSurvey(ctx context.Context, params UpdateSurveyParams) (database.Survey, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if params.structural() {
		answered, err := r.HasResponses(ctx, params.ID)
		if err != nil {
			return database.Survey{}, err
		}
		if answered {
			return database.Survey{}, custom_errors.ErrConflict
		}
	}

	title := pgtype.Text{}
	if params.Title != nil {
		title = pgtype.Text{String: *params.Title, Valid: true}
	}

	description := pgtype.Text{}
	if params.Description != nil {
		description = pgtype.Text{String: *params.Description, Valid: true}
	}

	category := pgtype.Text{}
	if params.Category != nil {
		category = pgtype.Text{String: *params.Category, Valid: true}
	}

	isActive := pgtype.Bool{}
	if params.IsActive != nil {
		isActive = pgtype.Bool{Bool: *params.IsActive, Valid: true}
	}

	startDate := pgtype.Timestamptz{}
	if params.StartDate != nil {
		startDate = pgtype.Timestamptz{Time: *params.StartDate, Valid: true}
	}

	endDate := pgtype.Timestamptz{}
	if params.EndDate != nil {
		endDate = pgtype.Timestamptz{Time: *params.EndDate, Valid: true}
	}

	isAnonymous := pgtype.Bool{}
	if params.IsAnonymous != nil {
		isAnonymous = pgtype.Bool{Bool: *params.IsAnonymous, Valid: true}
	}

	allowMultiple := pgtype.Bool{}
	if params.AllowMultipleSubmissions != nil {
		allowMultiple = pgtype.Bool{Bool: *params.AllowMultipleSubmissions, Valid: true}
	}

	var targetDepartments []int64
	if params.TargetDepartments != nil {
		targetDepartments = *params.TargetDepartments
	}

	var targetRoles []string
	if params.TargetRoles != nil {
		targetRoles = *params.TargetRoles
	}

	row := r.db.QueryRow(ctx, `
		UPDATE surveys SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			category = COALESCE($4, category),
			is_active = COALESCE($5, is_active),
			start_date = COALESCE($6, start_date),
			end_date = COALESCE($7, end_date),
			is_anonymous = COALESCE($8, is_anonymous),
			allow_multiple_submissions = COALESCE($9, allow_multiple_submissions),
			target_departments = CASE WHEN $10::bigint[] IS NULL THEN target_departments ELSE $10 END,
			target_roles = CASE WHEN $11::text[] IS NULL THEN target_roles ELSE $11 END,
			updated_at = now()
		WHERE id = $1
		RETURNING `+surveyColumns,
		params.ID, title, description, category, isActive, startDate, endDate,
		isAnonymous, allowMultiple, targetDepartments, targetRoles,
	)

	survey, err := scanSurvey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Survey{}, custom_errors.ErrNotFound
	}
	if err != nil {
		return database.Survey{}, fmt.Errorf("error updating survey: %v", err)
	}

	return survey, nil
}

// DeleteSurvey refuses to delete a survey that has responses. Historical
// responses are never deleted through this store.
func (r *Repository) DeleteSurvey(ctx context.Context, surveyID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	answered, err := r.HasResponses(ctx, surveyID)
	if err != nil {
		return err
	}
	if answered {
		return custom_errors.ErrConflict
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM surveys WHERE id = $1`, surveyID)
	if err != nil {
		return fmt.Errorf("error deleting survey: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return custom_errors.ErrNotFound
	}

	return nil
}

func (r *Repository) HasResponses(ctx context.Context, surveyID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM survey_responses WHERE survey_id = $1)`,
		surveyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking responses: %v", err)
	}

	return exists, nil
}

// GetSurveyStats aggregates response counts and, for rating and scale
// questions, average scores.
func (r *Repository) GetSurveyStats(ctx context.Context, surveyID int64) (SurveyStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := SurveyStats{SurveyID: surveyID}

	var totalTime int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(time_spent_seconds), 0)
		FROM survey_responses
		WHERE survey_id = $1`,
		surveyID,
	).Scan(&stats.ResponseCount, &totalTime)
	if err != nil {
		return SurveyStats{}, fmt.Errorf("error counting responses: %v", err)
	}

	if stats.ResponseCount > 0 {
		stats.AverageTimeSpent = decimal.NewFromInt(totalTime).
			DivRound(decimal.NewFromInt(stats.ResponseCount), 2)
	}

	rows, err := r.db.Query(ctx, `
		SELECT ra.order_index, ra.question_text, ra.question_type, ra.answer_value
		FROM response_answers ra
		JOIN survey_responses sr ON ra.response_id = sr.id
		WHERE sr.survey_id = $1
		ORDER BY ra.order_index`,
		surveyID,
	)
	if err != nil {
		return SurveyStats{}, fmt.Errorf("error loading answers: %v", err)
	}
	defer rows.Close()

	type accumulator struct {
		stats QuestionStats
		sum   decimal.Decimal
		n     int64
	}
	var order []int32
	byIndex := make(map[int32]*accumulator)

	for rows.Next() {
		var (
			orderIndex   int32
			questionText string
			questionType string
			value        []byte
		)
		if err := rows.Scan(&orderIndex, &questionText, &questionType, &value); err != nil {
			return SurveyStats{}, fmt.Errorf("error scanning answer: %v", err)
		}

		acc, ok := byIndex[orderIndex]
		if !ok {
			acc = &accumulator{stats: QuestionStats{
				OrderIndex:   orderIndex,
				QuestionText: questionText,
				QuestionType: questionType,
			}}
			byIndex[orderIndex] = acc
			order = append(order, orderIndex)
		}
		acc.stats.AnswerCount++

		if questionType == database.QuestionTypeRating || questionType == database.QuestionTypeScale {
			var score float64
			if err := json.Unmarshal(value, &score); err == nil {
				acc.sum = acc.sum.Add(decimal.NewFromFloat(score))
				acc.n++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return SurveyStats{}, fmt.Errorf("error loading answers: %v", err)
	}

	for _, orderIndex := range order {
		acc := byIndex[orderIndex]
		if acc.n > 0 {
			average := acc.sum.DivRound(decimal.NewFromInt(acc.n), 2)
			acc.stats.AverageScore = &average
		}
		stats.Questions = append(stats.Questions, acc.stats)
	}

	return stats, nil
}
