package departments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/api/jsonutil"
)

type Handler struct {
	Store Store
}

func (h *Handler) CreateDepartmentHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	data, err := jsonutil.UnmarshalJsonResponse[CreateDepartmentBody](request)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	department, err := h.Store.CreateDepartment(ctx, data.Name)
	if err != nil {
		if errors.Is(err, custom_errors.ErrConflict) {
			response := jsonutil.Response{
				Status:  "error",
				Message: "a department with this name already exists",
			}
			jsonutil.WriteJSONResponse(responseWriter, response, http.StatusConflict)
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
		Message: "department created successfully",
		Data:    department,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusCreated)
}

func (h *Handler) GetDepartmentHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	departmentIDStr := chi.URLParam(request, "departmentID")
	departmentID, err := strconv.ParseInt(departmentIDStr, 10, 64)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: "invalid department ID",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	department, err := h.Store.GetDepartment(ctx, departmentID)
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
		Message: "department retrieved successfully",
		Data:    department,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) ListDepartmentsHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	result, err := h.Store.ListDepartments(ctx)
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
		Message: "departments retrieved successfully",
		Data:    result,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) DeleteDepartmentHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	departmentIDStr := chi.URLParam(request, "departmentID")
	departmentID, err := strconv.ParseInt(departmentIDStr, 10, 64)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: "invalid department ID",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	err = h.Store.DeleteDepartment(ctx, departmentID)
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
		Message: "department deleted successfully",
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}
