package responses

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tamilore/orgvoice/database"
)

type ViolationCode string

const (
	ViolationMissingRequired     ViolationCode = "MISSING_REQUIRED"
	ViolationInvalidOption       ViolationCode = "INVALID_OPTION"
	ViolationInvalidFormat       ViolationCode = "INVALID_FORMAT"
	ViolationMalformedSubmission ViolationCode = "MALFORMED_SUBMISSION"
)

// Violation describes one rejected answer. Position is the 1-based question
// position; 0 for submission-level violations.
type Violation struct {
	Position int           `json:"position,omitempty"`
	Code     ViolationCode `json:"code"`
	Message  string        `json:"message"`
}

type AnswerKind int

const (
	KindAbsent AnswerKind = iota
	KindString
	KindNumber
	KindList
	KindInvalid
)

// AnswerValue is a tagged variant over the JSON shapes an answer can take:
// a string, a number, a list of strings, or nothing. Anything else (objects,
// booleans, mixed lists) decodes as KindInvalid rather than erroring, so
// validation stays total over malformed input.
type AnswerValue struct {
	Kind AnswerKind
	Str  string
	Num  float64
	List []string
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		a.Kind = KindInvalid
		return nil
	}

	switch v := raw.(type) {
	case nil:
		a.Kind = KindAbsent
	case string:
		a.Kind = KindString
		a.Str = v
	case float64:
		a.Kind = KindNumber
		a.Num = v
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				a.Kind = KindInvalid
				return nil
			}
			list = append(list, s)
		}
		a.Kind = KindList
		a.List = list
	default:
		a.Kind = KindInvalid
	}

	return nil
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindString:
		return json.Marshal(a.Str)
	case KindNumber:
		return json.Marshal(a.Num)
	case KindList:
		return json.Marshal(a.List)
	default:
		return []byte("null"), nil
	}
}

// empty reports whether the answer counts as "not provided": absent, an empty
// string, or an empty list.
func (a AnswerValue) empty() bool {
	switch a.Kind {
	case KindAbsent:
		return true
	case KindString:
		return a.Str == ""
	case KindList:
		return len(a.List) == 0
	}
	return false
}

func (a AnswerValue) integer() (int64, bool) {
	if a.Kind != KindNumber {
		return 0, false
	}
	if a.Num != math.Trunc(a.Num) {
		return 0, false
	}
	return int64(a.Num), true
}

var formatValidate = validator.New()

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ValidateAnswer checks one answer against one question definition. It never
// errors: a malformed answer comes back as a violation code. The second
// return is true when the answer passes.
func ValidateAnswer(question database.SurveyQuestion, answer AnswerValue) (ViolationCode, bool) {
	if answer.empty() {
		if question.IsRequired {
			return ViolationMissingRequired, false
		}
		return "", true
	}

	switch question.QuestionType {
	case database.QuestionTypeText, database.QuestionTypeTextarea:
		if answer.Kind != KindString {
			return ViolationInvalidFormat, false
		}

	case database.QuestionTypeMultiple:
		if answer.Kind != KindString || !containsOption(question.Options, answer.Str) {
			return ViolationInvalidOption, false
		}

	case database.QuestionTypeCheckbox:
		if answer.Kind != KindList {
			return ViolationInvalidOption, false
		}
		for _, selected := range answer.List {
			if !containsOption(question.Options, selected) {
				return ViolationInvalidOption, false
			}
		}

	case database.QuestionTypeRating:
		n, ok := answer.integer()
		if !ok || n < 1 || n > 5 {
			return ViolationInvalidFormat, false
		}

	case database.QuestionTypeScale:
		// Only integrality is enforced here. The 1-10 range the UI presents
		// is a UI concern, kept out of the validator on purpose.
		if _, ok := answer.integer(); !ok {
			return ViolationInvalidFormat, false
		}

	case database.QuestionTypeNumber:
		if answer.Kind == KindNumber {
			break
		}
		if answer.Kind != KindString {
			return ViolationInvalidFormat, false
		}
		if _, err := strconv.ParseFloat(answer.Str, 64); err != nil {
			return ViolationInvalidFormat, false
		}

	case database.QuestionTypeDate:
		if answer.Kind != KindString || !parseableDate(answer.Str) {
			return ViolationInvalidFormat, false
		}

	case database.QuestionTypeEmail:
		if answer.Kind != KindString || formatValidate.Var(answer.Str, "email") != nil {
			return ViolationInvalidFormat, false
		}

	case database.QuestionTypeURL:
		if answer.Kind != KindString || formatValidate.Var(answer.Str, "url") != nil {
			return ViolationInvalidFormat, false
		}

	default:
		return ViolationInvalidFormat, false
	}

	return "", true
}

// ValidateSubmission runs every (question, answer) pair and collects all
// violations instead of stopping at the first, so the caller can report
// every broken answer at once. Questions and answers must already be
// positionally aligned.
func ValidateSubmission(questions []database.SurveyQuestion, answers []AnswerValue) []Violation {
	var violations []Violation

	for i, question := range questions {
		code, ok := ValidateAnswer(question, answers[i])
		if !ok {
			violations = append(violations, Violation{
				Position: i + 1,
				Code:     code,
				Message:  fmt.Sprintf("answer %d failed %s validation", i+1, question.QuestionType),
			})
		}
	}

	return violations
}

// Normalize prepares an answer for storage. Checkbox selections are
// de-duplicated, preserving first-seen order.
func (a AnswerValue) Normalize(questionType string) AnswerValue {
	if questionType != database.QuestionTypeCheckbox || a.Kind != KindList {
		return a
	}

	seen := make(map[string]bool, len(a.List))
	deduped := make([]string, 0, len(a.List))
	for _, item := range a.List {
		if !seen[item] {
			seen[item] = true
			deduped = append(deduped, item)
		}
	}

	return AnswerValue{Kind: KindList, List: deduped}
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

func parseableDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
