package users

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/api/departments"
	"github.com/tamilore/orgvoice/api/jsonutil"
	"github.com/tamilore/orgvoice/api/middlewares"
	"github.com/tamilore/orgvoice/api/tokens"
)

type Handler struct {
	Store           Store
	DepartmentStore departments.Store
	Token           tokens.TokenService
}

func (h *Handler) CreateUserHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	data, err := jsonutil.UnmarshalJsonResponse[CreateUserBody](request)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	if data.DepartmentID != nil {
		exists, err := h.DepartmentStore.DepartmentExists(ctx, *data.DepartmentID)
		if err != nil {
			response := jsonutil.Response{
				Status:  "error",
				Message: err.Error(),
			}
			jsonutil.WriteJSONResponse(responseWriter, response, http.StatusInternalServerError)
			return
		}
		if !exists {
			response := jsonutil.Response{
				Status:  "error",
				Message: "department does not exist",
			}
			jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
			return
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(data.Password), 10)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusInternalServerError)
		return
	}

	user, err := h.Store.CreateUser(ctx, CreateUserParams{
		Email:        data.Email,
		Password:     string(hashedPassword),
		Role:         data.Role,
		DepartmentID: data.DepartmentID,
	})
	if err != nil {
		if errors.Is(err, custom_errors.ErrConflict) {
			response := jsonutil.Response{
				Status:  "error",
				Message: "a user with this email already exists",
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
		Message: "user created successfully",
		Data:    user,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusCreated)
}

func (h *Handler) LoginHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	data, err := jsonutil.UnmarshalJsonResponse[LoginBody](request)
	if err != nil {
		response := jsonutil.Response{
			Status:  "error",
			Message: err.Error(),
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusBadRequest)
		return
	}

	user, err := h.Store.FindUserByEmail(ctx, data.Email)
	if err != nil || !h.Token.ComparePasswords(user.Password, data.Password) {
		response := jsonutil.Response{
			Status:  "error",
			Message: "invalid credentials",
		}
		jsonutil.WriteJSONResponse(responseWriter, response, http.StatusUnauthorized)
		return
	}

	var departmentID int64
	if user.DepartmentID.Valid {
		departmentID = user.DepartmentID.Int64
	}

	accessToken, refreshToken := h.Token.GenerateToken(user.ID, user.Email, user.Role, departmentID)

	response := jsonutil.Response{
		Status:  "success",
		Message: "logged in successfully",
		Data: LoginResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) GetMeHandler(responseWriter http.ResponseWriter, request *http.Request) {
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

	user, err := h.Store.FindUserByID(ctx, claims.UserID)
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
		Message: "user retrieved successfully",
		Data:    user,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}

func (h *Handler) ListUsersHandler(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	result, err := h.Store.ListUsers(ctx)
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
		Message: "users retrieved successfully",
		Data:    result,
	}
	jsonutil.WriteJSONResponse(responseWriter, response, http.StatusOK)
}
