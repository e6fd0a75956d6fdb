package responses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tamilore/orgvoice/api/eligibility"
	"github.com/tamilore/orgvoice/api/jsonutil"
	"github.com/tamilore/orgvoice/api/middlewares"
)

type Handler struct {
	Service *Service
	Store   Store
}

func statusForReason(reason eligibility.Reason) int {
	switch reason {
	case eligibility.ReasonNotFound:
		return http.StatusNotFound
	case eligibility.ReasonAlreadySubmitted:
		return http.StatusConflict
	default:
		return http.StatusForbidden
	}
}

func (h *Handler) ListEligibleSurveysHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	claims, ok := middlewares.ClaimsFromContext(ctx)
	if !ok {
		response := jsonutil.Response{
			Status:  "error",
			Message: "unauthorized",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusUnauthorized)
		return
	}

	surveys, err := h.Service.ListEligibleSurveys(ctx, claims.UserID)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusInternalServerError)
		return
	}

	response := jsonutil.Response{
		Status:  "success",
		Message: "surveys retrieved successfully",
		Data:    surveys,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) GetSurveyForUserHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	claims, ok := middlewares.ClaimsFromContext(ctx)
	if !ok {
		response := jsonutil.Response{
			Status:  "error",
			Message: "unauthorized",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusUnauthorized)
		return
	}

	surveyIDStr := chi.URLParam(request, "surveyID")
	surveyID, err := strconv.ParseInt(surveyIDStr, 10, 64)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: "invalid survey ID",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	detail, verdict, err := h.Service.GetSurveyForUser(ctx, claims.UserID, surveyID)
	if err != nil {
		var eligibilityErr *EligibilityError
		if errors.As(err, &eligibilityErr) {
			response := jsonutil.Response{
				Status:  "error",
				Message: string(eligibilityErr.Reason),
			}
			jsonutil.WriteJSONResponse(responseWriter, response, statusForReason(eligibilityErr.Reason))
			return
		}

		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusInternalServerError)
		return
	}

	response := jsonutil.Response{
		Status:  "success",
		Message: "survey retrieved successfully",
		Data: map[string]interface{}{
			"survey":    detail.Survey,
			"questions": detail.Questions,
			"verdict":   verdict,
		},
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) SubmitResponseHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	claims, ok := middlewares.ClaimsFromContext(ctx)
	if !ok {
		response := jsonutil.Response{
			Status:  "error",
			Message: "unauthorized",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusUnauthorized)
		return
	}

	surveyIDStr := chi.URLParam(request, "surveyID")
	surveyID, err := strconv.ParseInt(surveyIDStr, 10, 64)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: "invalid survey ID",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	data, err := jsonutil.UnmarshalJsonResponse[SubmitResponseBody](request)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	responseID, violations, err := h.Service.SubmitResponse(ctx, claims.UserID, surveyID, SubmitParams{
		Answers:          data.Answers,
		Anonymous:        data.Anonymous,
		TimeSpentSeconds: data.TimeSpentSeconds,
	})
	if err != nil {
		var eligibilityErr *EligibilityError
		if errors.As(err, &eligibilityErr) {
			response := jsonutil.Response{
				Status:  "error",
				Message: string(eligibilityErr.Reason),
			}
			jsonutil.WriteJSONResponse(responseWriter, response, statusForReason(eligibilityErr.Reason))
			return
		}

		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusInternalServerError)
		return
	}

	if len(violations) > 0 {
		response := jsonutil.Response{
			Status:  "error",
			Message: "submission failed validation",
			Data:    violations,
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusUnprocessableEntity)
		return
	}

	response := jsonutil.Response{
		Status:  "success",
		Message: "response submitted successfully",
		Data:    map[string]int64{"response_id": responseID},
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusCreated)
}

func (h *Handler) ListSurveyResponsesHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	surveyIDStr := chi.URLParam(request, "surveyID")
	surveyID, err := strconv.ParseInt(surveyIDStr, 10, 64)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: "invalid survey ID",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	responses, err := h.Store.ListResponsesBySurvey(ctx, surveyID)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusInternalServerError)
		return
	}

	response := jsonutil.Response{
		Status:  "success",
		Message: "responses retrieved successfully",
		Data:    responses,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) GetResponseAnswersHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	responseIDStr := chi.URLParam(request, "responseID")
	responseID, err := strconv.ParseInt(responseIDStr, 10, 64)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: "invalid response ID",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	answers, err := h.Store.GetAnswersByResponse(ctx, responseID)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusInternalServerError)
		return
	}

	response := jsonutil.Response{
		Status:  "success",
		Message: "answers retrieved successfully",
		Data:    answers,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}
