package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	mail "github.com/tamilore/orgvoice/api/email"
	"github.com/tamilore/orgvoice/log"
)

const TypeResponseReceived = "notification:response_received"

// ResponseReceivedPayload notifies a survey author that a new response
// landed. It deliberately carries nothing about the respondent.
type ResponseReceivedPayload struct {
	Name        string
	Email       string
	SurveyID    int64
	SurveyTitle string
}

func (p *ResponseReceivedPayload) Process() (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal response received payload: %w", err)
	}

	return asynq.NewTask(TypeResponseReceived, payload), nil
}

func (p *ResponseReceivedPayload) ProcessorName() string {
	return p.Name
}

func HandleResponseReceivedTask(ctx context.Context, t *asynq.Task) error {
	var payload ResponseReceivedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("error decoding response received payload: %w", err)
	}

	log.Printf("notifying survey author: %s", payload.Email)

	emailData := mail.Email{
		Subject:  fmt.Sprintf("New response on %q", payload.SurveyTitle),
		ToAddr:   payload.Email,
		Template: "response_received",
		Vars: map[string]any{
			"SurveyID":    payload.SurveyID,
			"SurveyTitle": payload.SurveyTitle,
		},
	}

	if err := emailData.SendTemplateEmail(); err != nil {
		err = fmt.Errorf("error sending notification email: %w", err)
		log.Error(err)
		return err
	}

	log.Printf("notification email sent to: %s", payload.Email)

	return nil
}
