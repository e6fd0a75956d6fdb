package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

const (
	CategoryProject   = "project"
	CategoryManager   = "manager"
	CategoryWorkplace = "workplace"
	CategoryGeneral   = "general"
	CategoryTraining  = "training"
	CategoryCustom    = "custom"
)

const (
	QuestionTypeText     = "text"
	QuestionTypeTextarea = "textarea"
	QuestionTypeMultiple = "multiple"
	QuestionTypeCheckbox = "checkbox"
	QuestionTypeRating   = "rating"
	QuestionTypeScale    = "scale"
	QuestionTypeNumber   = "number"
	QuestionTypeDate     = "date"
	QuestionTypeEmail    = "email"
	QuestionTypeURL      = "url"
)

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           int64       `json:"id"`
	Email        string      `json:"email"`
	Password     string      `json:"-"`
	Role         string      `json:"role"`
	DepartmentID pgtype.Int8 `json:"department_id"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Survey struct {
	ID                       int64       `json:"id"`
	Title                    string      `json:"title"`
	Description              pgtype.Text `json:"description"`
	Category                 string      `json:"category"`
	IsActive                 bool        `json:"is_active"`
	StartDate                time.Time   `json:"start_date"`
	EndDate                  time.Time   `json:"end_date"`
	IsAnonymous              bool        `json:"is_anonymous"`
	AllowMultipleSubmissions bool        `json:"allow_multiple_submissions"`
	TargetDepartments        []int64     `json:"target_departments"`
	TargetRoles              []string    `json:"target_roles"`
	CreatedBy                int64       `json:"created_by"`
	CreatedAt                time.Time   `json:"created_at"`
	UpdatedAt                time.Time   `json:"updated_at"`
}

type SurveyQuestion struct {
	ID           int64    `json:"id"`
	SurveyID     int64    `json:"survey_id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	Options      []string `json:"options"`
	IsRequired   bool     `json:"is_required"`
	OrderIndex   int32    `json:"order_index"`
}

// SurveyResponse never carries a respondent reference when the submission was
// anonymous. The department and role columns are captured on every response,
// anonymous included, for aggregate reporting. That is intentional: they never
// identify a single user, only their segment.
type SurveyResponse struct {
	ID               int64       `json:"id"`
	SurveyID         int64       `json:"survey_id"`
	RespondentID     pgtype.Int8 `json:"respondent_id"`
	SubmittedAt      time.Time   `json:"submitted_at"`
	TimeSpentSeconds int32       `json:"time_spent_seconds"`
	MetaDepartmentID pgtype.Int8 `json:"meta_department_id"`
	MetaRole         string      `json:"meta_role"`
}

// ResponseAnswer stores the question text and type as they were at submission
// time, so edits to the live survey cannot rewrite historical answers.
type ResponseAnswer struct {
	ID           int64  `json:"id"`
	ResponseID   int64  `json:"response_id"`
	OrderIndex   int32  `json:"order_index"`
	QuestionText string `json:"question_text"`
	QuestionType string `json:"question_type"`
	AnswerValue  []byte `json:"answer_value"`
}

// ResponseReceipt records that a user submitted to a survey without linking
// them to a response row. The primary key on (survey_id, user_id) is what
// closes the concurrent double-submit race.
type ResponseReceipt struct {
	SurveyID    int64     `json:"survey_id"`
	UserID      int64     `json:"user_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func ElevatedRole(role string) bool {
	return role == RoleHR || role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	}
	return false
}

func ValidCategory(category string) bool {
	switch category {
	case CategoryProject, CategoryManager, CategoryWorkplace,
		CategoryGeneral, CategoryTraining, CategoryCustom:
		return true
	}
	return false
}

func ValidQuestionType(questionType string) bool {
	switch questionType {
	case QuestionTypeText, QuestionTypeTextarea, QuestionTypeMultiple,
		QuestionTypeCheckbox, QuestionTypeRating, QuestionTypeScale,
		QuestionTypeNumber, QuestionTypeDate, QuestionTypeEmail, QuestionTypeURL:
		return true
	}
	return false
}
