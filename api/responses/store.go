package responses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/database"
)

type Store interface {
	FindReceipt(ctx context.Context, userID, surveyID int64) (database.ResponseReceipt, error)
	InsertResponse(ctx context.Context, params InsertResponseParams) (int64, error)
	ListResponsesBySurvey(ctx context.Context, surveyID int64) ([]database.SurveyResponse, error)
	GetAnswersByResponse(ctx context.Context, responseID int64) ([]database.ResponseAnswer, error)
}

const UniqueViolationCode = "23505"

type Repository struct {
	db         *pgxpool.Pool
	transactor database.Transactor
}

func NewResponseStore(db *pgxpool.Pool) *Repository {
	return &Repository{db: db, transactor: database.NewDBTransactor(db)}
}

func (r *Repository) FindReceipt(ctx context.Context, userID, surveyID int64) (database.ResponseReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var receipt database.ResponseReceipt
	err := r.db.QueryRow(ctx, `
		SELECT survey_id, user_id, submitted_at
		FROM response_receipts
		WHERE user_id = $1 AND survey_id = $2`,
		userID, surveyID,
	).Scan(&receipt.SurveyID, &receipt.UserID, &receipt.SubmittedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return database.ResponseReceipt{}, custom_errors.ErrNotFound
	}
	if err != nil {
		return database.ResponseReceipt{}, fmt.Errorf("error finding receipt: %v", err)
	}

	return receipt, nil
}

// InsertResponse writes the receipt, the response row and its answers as one
// transaction. A duplicate receipt means a concurrent submission already won
// the race; that comes back as custom_errors.ErrConflict with nothing
// written, so the losing submission has no partial effects.
func (r *Repository) InsertResponse(ctx context.Context, params InsertResponseParams) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var responseID int64

	err := r.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		exec := database.TxFromContext(ctx, r.db)

		if params.RecordReceipt {
			_, err := exec.Exec(ctx, `
				INSERT INTO response_receipts (survey_id, user_id)
				VALUES ($1, $2)`,
				params.SurveyID, params.UserID,
			)
			if err != nil {
				var e *pgconn.PgError
				if errors.As(err, &e) && e.Code == UniqueViolationCode {
					return custom_errors.ErrConflict
				}
				return fmt.Errorf("error recording receipt: %v", err)
			}
		}

		respondent := pgtype.Int8{}
		if params.RespondentID != nil {
			respondent = pgtype.Int8{Int64: *params.RespondentID, Valid: true}
		}

		metaDepartment := pgtype.Int8{}
		if params.MetaDepartmentID != nil {
			metaDepartment = pgtype.Int8{Int64: *params.MetaDepartmentID, Valid: true}
		}

		err := exec.QueryRow(ctx, `
			INSERT INTO survey_responses
				(survey_id, respondent_id, time_spent_seconds, meta_department_id, meta_role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			params.SurveyID, respondent, params.TimeSpentSeconds, metaDepartment, params.MetaRole,
		).Scan(&responseID)
		if err != nil {
			return fmt.Errorf("error inserting response: %v", err)
		}

		for _, answer := range params.Answers {
			_, err := exec.Exec(ctx, `
				INSERT INTO response_answers
					(response_id, order_index, question_text, question_type, answer_value)
				VALUES ($1, $2, $3, $4, $5)`,
				responseID, answer.OrderIndex, answer.QuestionText, answer.QuestionType, answer.Value,
			)
			if err != nil {
				return fmt.Errorf("error inserting answer: %v", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return responseID, nil
}

func (r *Repository) ListResponsesBySurvey(ctx context.Context, surveyID int64) ([]database.SurveyResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, survey_id, respondent_id, submitted_at, time_spent_seconds,
			meta_department_id, meta_role
		FROM survey_responses
		WHERE survey_id = $1
		ORDER BY submitted_at`,
		surveyID,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing responses: %v", err)
	}
	defer rows.Close()

	var responses []database.SurveyResponse
	for rows.Next() {
		var response database.SurveyResponse
		err := rows.Scan(
			&response.ID, &response.SurveyID, &response.RespondentID,
			&response.SubmittedAt, &response.TimeSpentSeconds,
			&response.MetaDepartmentID, &response.MetaRole,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning response: %v", err)
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing responses: %v", err)
	}

	return responses, nil
}

func (r *Repository) GetAnswersByResponse(ctx context.Context, responseID int64) ([]database.ResponseAnswer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, response_id, order_index, question_text, question_type, answer_value
		FROM response_answers
		WHERE response_id = $1
		ORDER BY order_index`,
		responseID,
	)
	if err != nil {
		return nil, fmt.Errorf("error getting answers: %v", err)
	}
	defer rows.Close()

	var answers []database.ResponseAnswer
	for rows.Next() {
		var answer database.ResponseAnswer
		err := rows.Scan(
			&answer.ID, &answer.ResponseID, &answer.OrderIndex,
			&answer.QuestionText, &answer.QuestionType, &answer.AnswerValue,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning answer: %v", err)
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error getting answers: %v", err)
	}

	return answers, nil
}
