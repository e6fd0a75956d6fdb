package jsonutil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteJSONResponse(responseWriter http.ResponseWriter, response interface{}, statusCode int) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)

	if err := json.NewEncoder(responseWriter).Encode(response); err != nil {
		http.Error(responseWriter, `{"status":"error","message":"error encoding response"}`, http.StatusInternalServerError)
	}
}

// UnmarshalJsonResponse decodes the request body into T and runs struct
// validation over it.
func UnmarshalJsonResponse[T any](request *http.Request) (T, error) {
	var data T

	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&data); err != nil {
		return data, fmt.Errorf("invalid request body: %v", err)
	}

	if err := validate.Struct(data); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
			field := validationErrors[0]
			return data, fmt.Errorf("invalid field %s: failed on %s", field.Field(), field.Tag())
		}
		return data, fmt.Errorf("invalid request body: %v", err)
	}

	return data, nil
}
