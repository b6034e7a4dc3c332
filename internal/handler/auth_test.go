package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pasos-retail/api/internal/auth"
	"github.com/pasos-retail/api/internal/database"
	"github.com/pasos-retail/api/internal/domain"
	"github.com/pasos-retail/api/internal/enum"
	"github.com/pasos-retail/api/internal/handler"
)

const testJWTSecret = "test-secret-do-not-use-in-prod"

// --- Mock store ---

type mockAuthStore struct {
	users map[string]domain.User
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{users: make(map[string]domain.User)}
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := m.users[email]
	if !ok {
		return domain.User{}, database.ErrNotFound
	}
	return user, nil
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return domain.User{}, database.ErrNotFound
}

func (m *mockAuthStore) addUser(email, password, role string) domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := domain.User{
		ID:             uuid.New(),
		StoreID:        uuid.New(),
		FullName:       "Carla Rojas",
		Email:          email,
		HashedPassword: string(hash),
		Role:           role,
	}
	m.users[email] = user
	return user
}

func setupAuthRouter(store handler.AuthStore) http.Handler {
	h := handler.NewAuthHandler(store, testJWTSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Login ---

func TestLogin(t *testing.T) {
	store := newMockAuthStore()
	user := store.addUser("carla@pasos.cl", "secreto123", enum.UserRoleManager)
	router := setupAuthRouter(store)

	body := `{"email": "carla@pasos.cl", "password": "secreto123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("tokens missing from response")
	}
	if resp.User.Email != user.Email || resp.User.Role != enum.UserRoleManager {
		t.Errorf("user: got %+v", resp.User)
	}

	claims, err := auth.ValidateToken(testJWTSecret, resp.AccessToken)
	if err != nil {
		t.Fatalf("returned access token does not validate: %v", err)
	}
	if claims.UserID != user.ID || claims.StoreID != user.StoreID {
		t.Errorf("claims: got %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMockAuthStore()
	store.addUser("carla@pasos.cl", "secreto123", enum.UserRoleCashier)
	router := setupAuthRouter(store)

	body := `{"email": "carla@pasos.cl", "password": "incorrecta"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	router := setupAuthRouter(newMockAuthStore())

	body := `{"email": "nadie@pasos.cl", "password": "lo-que-sea"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	router := setupAuthRouter(newMockAuthStore())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email": ""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

// --- Refresh ---

func TestRefresh(t *testing.T) {
	store := newMockAuthStore()
	user := store.addUser("carla@pasos.cl", "secreto123", enum.UserRoleManager)
	router := setupAuthRouter(store)

	refreshToken, err := auth.GenerateRefreshToken(testJWTSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	body := `{"refresh_token": "` + refreshToken + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("no access token in refresh response")
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	router := setupAuthRouter(newMockAuthStore())

	body := `{"refresh_token": "garbage.token.here"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
