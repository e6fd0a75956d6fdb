package responses_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/tamilore/orgvoice/api/middlewares"
	"github.com/tamilore/orgvoice/api/responses"
	"github.com/tamilore/orgvoice/api/tokens"
	"github.com/tamilore/orgvoice/database"
)

// ============================================================================
// Test Helpers
// ============================================================================

func assertResponseCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("response code = %d, want %d", got, want)
	}
}

func assertResponseStatus(t *testing.T, got map[string]interface{}, wantStatus string) {
	t.Helper()
	if got["status"] != wantStatus {
		t.Errorf("status = %v, want %v", got["status"], wantStatus)
	}
}

func newTestRouter(handler *responses.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/surveys", handler.ListEligibleSurveysHandler)
	r.Get("/surveys/{surveyID}", handler.GetSurveyForUserHandler)
	r.Post("/surveys/{surveyID}/responses", handler.SubmitResponseHandler)
	return r
}

func authenticatedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewBuffer(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	claims := &tokens.Claims{UserID: 10, Email: "ada@example.com", Role: database.RoleEmployee, DepartmentID: 2}
	return req.WithContext(middlewares.WithClaims(req.Context(), claims))
}

// ============================================================================
// SubmitResponseHandler Tests
// ============================================================================

func TestSubmitResponseHandler(t *testing.T) {
	t.Run("returns 201 with the response id", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		data := []byte(`{
			"answers": ["going well", 4],
			"time_spent_seconds": 90
		}`)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/surveys/1/responses", data))

		var got map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &got)

		assertResponseCode(t, rec.Code, http.StatusCreated)
		assertResponseStatus(t, got, "success")

		payload, ok := got["data"].(map[string]interface{})
		if !ok || payload["response_id"] == nil {
			t.Errorf("expected response_id in data, got %v", got["data"])
		}
	})

	t.Run("returns 422 with violations as data", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		data := []byte(`{
			"answers": [null, 9],
			"time_spent_seconds": 90
		}`)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/surveys/1/responses", data))

		var got map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &got)

		assertResponseCode(t, rec.Code, http.StatusUnprocessableEntity)
		assertResponseStatus(t, got, "error")

		violations, ok := got["data"].([]interface{})
		if !ok || len(violations) != 2 {
			t.Errorf("expected 2 violations in data, got %v", got["data"])
		}
	})

	t.Run("returns 404 for an unknown survey", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		data := []byte(`{"answers": ["going well", 4]}`)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/surveys/42/responses", data))

		assertResponseCode(t, rec.Code, http.StatusNotFound)
	})

	t.Run("returns 403 when the user is not targeted", func(t *testing.T) {
		service, surveys, _, _ := newTestService()
		surveys.Surveys[0].TargetDepartments = []int64{99}
		router := newTestRouter(&responses.Handler{Service: service})

		data := []byte(`{"answers": ["going well", 4]}`)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/surveys/1/responses", data))

		assertResponseCode(t, rec.Code, http.StatusForbidden)
	})

	t.Run("returns 409 on a duplicate submission", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		data := []byte(`{"answers": ["going well", 4]}`)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/surveys/1/responses", data))
		assertResponseCode(t, rec.Code, http.StatusCreated)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/surveys/1/responses", data))
		assertResponseCode(t, rec.Code, http.StatusConflict)
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		data := []byte(`{"answers": [`)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/surveys/1/responses", data))

		assertResponseCode(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("returns 401 without claims", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		data := []byte(`{"answers": ["going well", 4]}`)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/surveys/1/responses", bytes.NewBuffer(data)))

		assertResponseCode(t, rec.Code, http.StatusUnauthorized)
	})
}

// ============================================================================
// ListEligibleSurveysHandler Tests
// ============================================================================

func TestListEligibleSurveysHandler(t *testing.T) {
	t.Run("returns visible surveys with verdicts", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodGet, "/surveys", nil))

		var got map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &got)

		assertResponseCode(t, rec.Code, http.StatusOK)
		assertResponseStatus(t, got, "success")

		surveys, ok := got["data"].([]interface{})
		if !ok || len(surveys) != 1 {
			t.Errorf("expected 1 survey in data, got %v", got["data"])
		}
	})
}

// ============================================================================
// GetSurveyForUserHandler Tests
// ============================================================================

func TestGetSurveyForUserHandler(t *testing.T) {
	t.Run("returns the survey with questions and verdict", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodGet, "/surveys/1", nil))

		var got map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &got)

		assertResponseCode(t, rec.Code, http.StatusOK)

		payload, ok := got["data"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected data object, got %v", got["data"])
		}
		if payload["survey"] == nil || payload["questions"] == nil || payload["verdict"] == nil {
			t.Errorf("expected survey, questions and verdict, got %v", payload)
		}
	})

	t.Run("returns 400 for a non-numeric id", func(t *testing.T) {
		service, _, _, _ := newTestService()
		router := newTestRouter(&responses.Handler{Service: service})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authenticatedRequest(http.MethodGet, "/surveys/abc", nil))

		assertResponseCode(t, rec.Code, http.StatusBadRequest)
	})
}
