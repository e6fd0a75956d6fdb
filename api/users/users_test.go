package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tamilore/orgvoice/api/custom_errors"
	"github.com/tamilore/orgvoice/api/tokens"
	"github.com/tamilore/orgvoice/api/users"
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

// ============================================================================
// Stubs
// ============================================================================

type StubUserStore struct {
	Users            []database.User
	ShouldFailCreate bool
	ShouldFailFind   bool
}

func NewStubUserStore() *StubUserStore {
	return &StubUserStore{Users: make([]database.User, 0)}
}

func (s *StubUserStore) CreateUser(ctx context.Context, params users.CreateUserParams) (database.User, error) {
	if s.ShouldFailCreate {
		return database.User{}, errors.New("database error")
	}

	for _, u := range s.Users {
		if u.Email == params.Email {
			return database.User{}, custom_errors.ErrConflict
		}
	}

	user := database.User{
		ID:       int64(len(s.Users) + 1),
		Email:    params.Email,
		Password: params.Password,
		Role:     params.Role,
	}
	if params.DepartmentID != nil {
		user.DepartmentID = pgtype.Int8{Int64: *params.DepartmentID, Valid: true}
	}

	s.Users = append(s.Users, user)
	return user, nil
}

func (s *StubUserStore) FindUserByID(ctx context.Context, userID int64) (database.User, error) {
	if s.ShouldFailFind {
		return database.User{}, errors.New("database error")
	}

	for _, u := range s.Users {
		if u.ID == userID {
			return u, nil
		}
	}
	return database.User{}, custom_errors.ErrNotFound
}

func (s *StubUserStore) FindUserByEmail(ctx context.Context, email string) (database.User, error) {
	if s.ShouldFailFind {
		return database.User{}, errors.New("database error")
	}

	for _, u := range s.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return database.User{}, custom_errors.ErrNotFound
}

func (s *StubUserStore) ListUsers(ctx context.Context) ([]database.User, error) {
	return s.Users, nil
}

type StubDepartmentStore struct {
	Departments []database.Department
}

func (s *StubDepartmentStore) CreateDepartment(ctx context.Context, name string) (database.Department, error) {
	department := database.Department{ID: int64(len(s.Departments) + 1), Name: name}
	s.Departments = append(s.Departments, department)
	return department, nil
}

func (s *StubDepartmentStore) GetDepartment(ctx context.Context, departmentID int64) (database.Department, error) {
	for _, d := range s.Departments {
		if d.ID == departmentID {
			return d, nil
		}
	}
	return database.Department{}, custom_errors.ErrNotFound
}

func (s *StubDepartmentStore) ListDepartments(ctx context.Context) ([]database.Department, error) {
	return s.Departments, nil
}

func (s *StubDepartmentStore) DeleteDepartment(ctx context.Context, departmentID int64) error {
	return nil
}

func (s *StubDepartmentStore) DepartmentExists(ctx context.Context, departmentID int64) (bool, error) {
	for _, d := range s.Departments {
		if d.ID == departmentID {
			return true, nil
		}
	}
	return false, nil
}

type StubTokenService struct{}

func (s *StubTokenService) ComparePasswords(storedPassword, candidatePassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedPassword), []byte(candidatePassword)) == nil
}

func (s *StubTokenService) GenerateToken(userID int64, email, role string, departmentID int64) (string, string) {
	return "mock-jwt-token", "mock-refresh-token"
}

func (s *StubTokenService) DecodeToken(tokenString string) (*tokens.Claims, error) {
	if tokenString == "invalid-token" {
		return nil, errors.New("invalid token")
	}
	return &tokens.Claims{UserID: 1}, nil
}

// ============================================================================
// CreateUserHandler Tests
// ============================================================================

func TestCreateUserHandler(t *testing.T) {
	t.Run("successfully creates a user", func(t *testing.T) {
		store := NewStubUserStore()

		handler := &users.Handler{
			Store:           store,
			DepartmentStore: &StubDepartmentStore{Departments: []database.Department{{ID: 1, Name: "Engineering"}}},
			Token:           &StubTokenService{},
		}

		data := []byte(`{
			"email": "ada@example.com",
			"password": "password123",
			"role": "employee",
			"department_id": 1
		}`)

		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()

		handler.CreateUserHandler(rec, req)

		var got map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &got)

		assertResponseCode(t, rec.Code, http.StatusCreated)
		assertResponseStatus(t, got, "success")

		if len(store.Users) != 1 {
			t.Fatalf("expected 1 user in store, got %d", len(store.Users))
		}
		if store.Users[0].Password == "password123" {
			t.Error("expected password to be hashed before storage")
		}
	})

	t.Run("returns 400 for an unknown role", func(t *testing.T) {
		handler := &users.Handler{
			Store:           NewStubUserStore(),
			DepartmentStore: &StubDepartmentStore{},
			Token:           &StubTokenService{},
		}

		data := []byte(`{
			"email": "ada@example.com",
			"password": "password123",
			"role": "superuser"
		}`)

		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()

		handler.CreateUserHandler(rec, req)

		assertResponseCode(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("returns 400 when the department does not exist", func(t *testing.T) {
		handler := &users.Handler{
			Store:           NewStubUserStore(),
			DepartmentStore: &StubDepartmentStore{},
			Token:           &StubTokenService{},
		}

		data := []byte(`{
			"email": "ada@example.com",
			"password": "password123",
			"role": "employee",
			"department_id": 42
		}`)

		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()

		handler.CreateUserHandler(rec, req)

		assertResponseCode(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("returns 409 when the email is taken", func(t *testing.T) {
		store := NewStubUserStore()
		store.Users = []database.User{{ID: 1, Email: "ada@example.com"}}

		handler := &users.Handler{
			Store:           store,
			DepartmentStore: &StubDepartmentStore{},
			Token:           &StubTokenService{},
		}

		data := []byte(`{
			"email": "ada@example.com",
			"password": "password123",
			"role": "employee"
		}`)

		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()

		handler.CreateUserHandler(rec, req)

		assertResponseCode(t, rec.Code, http.StatusConflict)
	})
}

// ============================================================================
// LoginHandler Tests
// ============================================================================

func TestLoginHandler(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	t.Run("successfully logs in", func(t *testing.T) {
		store := NewStubUserStore()
		store.Users = []database.User{{
			ID:       1,
			Email:    "ada@example.com",
			Password: string(hashed),
			Role:     database.RoleEmployee,
		}}

		handler := &users.Handler{
			Store: store,
			Token: &StubTokenService{},
		}

		data := []byte(`{
			"email": "ada@example.com",
			"password": "password123"
		}`)

		req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()

		handler.LoginHandler(rec, req)

		var got map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &got)

		assertResponseCode(t, rec.Code, http.StatusOK)
		assertResponseStatus(t, got, "success")

		payload, ok := got["data"].(map[string]interface{})
		if !ok || payload["access_token"] != "mock-jwt-token" {
			t.Errorf("expected access token in data, got %v", got["data"])
		}
	})

	t.Run("returns 401 for a wrong password", func(t *testing.T) {
		store := NewStubUserStore()
		store.Users = []database.User{{
			ID:       1,
			Email:    "ada@example.com",
			Password: string(hashed),
		}}

		handler := &users.Handler{
			Store: store,
			Token: &StubTokenService{},
		}

		data := []byte(`{
			"email": "ada@example.com",
			"password": "wrongpassword"
		}`)

		req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()

		handler.LoginHandler(rec, req)

		assertResponseCode(t, rec.Code, http.StatusUnauthorized)
	})

	t.Run("returns 401 for an unknown user", func(t *testing.T) {
		handler := &users.Handler{
			Store: NewStubUserStore(),
			Token: &StubTokenService{},
		}

		data := []byte(`{
			"email": "nobody@example.com",
			"password": "password123"
		}`)

		req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()

		handler.LoginHandler(rec, req)

		assertResponseCode(t, rec.Code, http.StatusUnauthorized)
	})
}
