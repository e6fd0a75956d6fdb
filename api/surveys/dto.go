package surveys

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tamilore/orgvoice/database"
)

// Parameter structs
type CreateQuestionParams struct {
	QuestionText string   `json:"question_text" validate:"required"`
	QuestionType string   `json:"question_type" validate:"required,oneof=text textarea multiple checkbox rating scale number date email url"`
	Options      []string `json:"options"`
	IsRequired   bool     `json:"is_required"`
	OrderIndex   int32    `json:"order_index" validate:"gte=1"`
}

type CreateSurveyParams struct {
	Title                    string                 `json:"title" validate:"required"`
	Description              string                 `json:"description"`
	Category                 string                 `json:"category" validate:"required,oneof=project manager workplace general training custom"`
	IsActive                 bool                   `json:"is_active"`
	StartDate                time.Time              `json:"start_date" validate:"required"`
	EndDate                  time.Time              `json:"end_date" validate:"required"`
	IsAnonymous              bool                   `json:"is_anonymous"`
	AllowMultipleSubmissions bool                   `json:"allow_multiple_submissions"`
	TargetDepartments        []int64                `json:"target_departments"`
	TargetRoles              []string               `json:"target_roles" validate:"dive,oneof=employee manager hr admin"`
	Questions                []CreateQuestionParams `json:"questions" validate:"required,min=1,dive"`
	CreatedBy                int64                  `json:"-"`
}

// UpdateSurveyParams distinguishes lifecycle toggles from structural edits.
// Structural fields (category, dates, questions) are refused once any
// response references the survey.
type UpdateSurveyParams struct {
	ID                       int64      `json:"-"`
	Title                    *string    `json:"title"`
	Description              *string    `json:"description"`
	Category                 *string    `json:"category" validate:"omitempty,oneof=project manager workplace general training custom"`
	IsActive                 *bool      `json:"is_active"`
	StartDate                *time.Time `json:"start_date"`
	EndDate                  *time.Time `json:"end_date"`
	IsAnonymous              *bool      `json:"is_anonymous"`
	AllowMultipleSubmissions *bool      `json:"allow_multiple_submissions"`
	TargetDepartments        *[]int64   `json:"target_departments"`
	TargetRoles              *[]string  `json:"target_roles" validate:"omitempty,dive,oneof=employee manager hr admin"`
}

func (p UpdateSurveyParams) structural() bool {
	return p.Category != nil || p.StartDate != nil || p.EndDate != nil
}

type ListSurveysParams struct {
	Category string
	Active   *bool
	Limit    int
	Offset   int
}

// Response structs
type SurveyDetail struct {
	Survey    database.Survey           `json:"survey"`
	Questions []database.SurveyQuestion `json:"questions"`
}

type QuestionStats struct {
	OrderIndex   int32            `json:"order_index"`
	QuestionText string           `json:"question_text"`
	QuestionType string           `json:"question_type"`
	AnswerCount  int64            `json:"answer_count"`
	AverageScore *decimal.Decimal `json:"average_score,omitempty"`
}

type SurveyStats struct {
	SurveyID         int64           `json:"survey_id"`
	ResponseCount    int64           `json:"response_count"`
	AverageTimeSpent decimal.Decimal `json:"average_time_spent_seconds"`
	Questions        []QuestionStats `json:"questions"`
}
