package surveys

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/api/jsonutil"
	"github.com/tamilore/orgvoice/api/middlewares"
)

type Handler struct {
	Store Store
}

func (h *Handler) CreateSurveyHandler(responseWriter http.ResponseWriter, request *http.Request) {
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

	data, err := jsonutil.UnmarshalJsonResponse[CreateSurveyParams](request)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	if data.EndDate.Before(data.StartDate) {
		response := jsonutil.Response{
			Status:  "error",
			Message: "end date must not precede start date",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	data.CreatedBy = claims.UserID

	survey, err := h.Store.CreateSurvey(ctx, data)
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
		Message: "survey created successfully",
		Data:    survey,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusCreated)
}

func (h *Handler) GetSurveyHandler(responseWriter http.ResponseWriter, request *http.Request) {
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

	detail, err := h.Store.GetSurveyWithDetails(ctx, surveyID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, custom_errors.ErrNotFound) {
			status = http.StatusNotFound
		}
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, status)
		return
	}

	response := jsonutil.Response{
		Status:  "success",
		Message: "survey retrieved successfully",
		Data:    detail,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) ListSurveysHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	params := ListSurveysParams{
		Category: request.URL.Query().Get("category"),
		Limit:    10,
	}

	if activeStr := request.URL.Query().Get("active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			params.Active = &active
		}
	}

	if limitStr := request.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = l
		}
	}

	if offsetStr := request.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil {
			params.Offset = o
		}
	}

	surveys, err := h.Store.ListSurveys(ctx, params)
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

func (h *Handler) UpdateSurveyHandler(responseWriter http.ResponseWriter, request *http.Request) {
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

	data, err := jsonutil.UnmarshalJsonResponse[UpdateSurveyParams](request)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	data.ID = surveyID

	survey, err := h.Store.UpdateSurvey(ctx, data)
	if err != nil {
		status := http.StatusInternalServerError
		message := err.Error()
		switch {
		case errors.Is(err, custom_errors.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, custom_errors.ErrConflict):
			status = http.StatusConflict
			message = "survey has responses; structural edits are not allowed"
		}
		response := jsonutil.Response{
			Status:  "error",
			Message: message,
		}
		jsonutil.WriteJSONResponse(responseWriter, response, status)
		return
	}

	response := jsonutil.Response{
		Status:  "success",
		Message: "survey updated successfully",
		Data:    survey,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) DeleteSurveyHandler(responseWriter http.ResponseWriter, request *http.Request) {
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

	err = h.Store.DeleteSurvey(ctx, surveyID)
	if err != nil {
		status := http.StatusInternalServerError
		message := err.Error()
		switch {
		case errors.Is(err, custom_errors.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, custom_errors.ErrConflict):
			status = http.StatusConflict
			message = "survey has responses and cannot be deleted"
		}
		response := jsonutil.Response{
			Status:  "error",
			Message: message,
		}
		jsonutil.WriteJSONResponse(responseWriter, response, status)
		return
	}

	response := jsonutil.Response{
		Status:  "success",
		Message: "survey deleted successfully",
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) GetSurveyStatsHandler(responseWriter http.ResponseWriter, request *http.Request) {
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

	if _, err := h.Store.GetSurvey(ctx, surveyID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, custom_errors.ErrNotFound) {
			status = http.StatusNotFound
		}
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, status)
		return
	}

	stats, err := h.Store.GetSurveyStats(ctx, surveyID)
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
		Message: "survey stats retrieved successfully",
		Data:    stats,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}
