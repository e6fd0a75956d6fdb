package responses

// InsertResponseParams carries a fully validated submission into the store.
// RespondentID stays nil for anonymous responses; the receipt alone enforces
// uniqueness without linking the user to the answers.
type InsertResponseParams struct {
	SurveyID         int64
	UserID           int64
	RecordReceipt    bool
	RespondentID     *int64
	TimeSpentSeconds int32
	MetaDepartmentID *int64
	MetaRole         string
	Answers          []InsertAnswerParams
}

type InsertAnswerParams struct {
	OrderIndex   int32
	QuestionText string
	QuestionType string
	Value        []byte
}

type SubmitResponseBody struct {
	// Answers is not validated here: a missing or short list flows into the
	// count check, which reports it as a submission-level violation.
	Answers          []AnswerValue `json:"answers"`
	Anonymous        bool          `json:"anonymous"`
	TimeSpentSeconds int32         `json:"time_spent_seconds" validate:"gte=0"`
}
