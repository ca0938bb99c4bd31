package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/felicity/backend/internal/application/identity"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/infrastructure/auth"
	"github.com/felicity/backend/internal/infrastructure/config"
	"github.com/felicity/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testCookieConfig returns a default cookie config for tests
func testCookieConfig() config.CookieConfig {
	return config.CookieConfig{
		Domain:   "",
		Path:     "/",
		Secure:   false,
		SameSite: "lax",
	}
}

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

func setupAuthRouter(handler *AuthHandler, jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Auth routes (no JWT required for register/login/refresh)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
	}

	// Protected auth routes (JWT required)
	protectedGroup := r.Group("/api/v1/auth")
	protectedGroup.Use(middleware.JWTAuthMiddleware(jwtService))
	{
		protectedGroup.POST("/logout", handler.Logout)
		protectedGroup.GET("/me", handler.Me)
		protectedGroup.PUT("/password", handler.ChangePassword)
	}

	return r
}

func participantForHandler(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewParticipant(
		"priya@students.iiit.ac.in", "Password123",
		"Priya", "Sharma",
		identity.ParticipantTypeIIIT, "IIIT Hyderabad", "+911234567890",
	)
	require.NoError(t, err)
	return user
}

func authServiceForHandler(userRepo *MockUserRepository, jwtService *auth.JWTService) *appidentity.AuthService {
	return appidentity.NewAuthService(
		userRepo,
		jwtService,
		auth.NewInMemoryTokenBlacklist(),
		zap.NewNop(),
	)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := participantForHandler(t)

	userRepo.On("FindByEmail", mock.Anything, "priya@students.iiit.ac.in").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	reqBody := appidentity.LoginRequest{
		Email:    "priya@students.iiit.ac.in",
		Password: "Password123",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
	assert.Equal(t, "Bearer", data["token_type"])

	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "priya@students.iiit.ac.in", userData["email"])
	assert.Equal(t, "participant", userData["role"])

	// Refresh token also travels as an httpOnly cookie for browser clients
	var refreshCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookieName {
			refreshCookie = c
			break
		}
	}
	require.NotNil(t, refreshCookie, "refresh cookie should be set")
	assert.NotEmpty(t, refreshCookie.Value)
	assert.True(t, refreshCookie.HttpOnly, "cookie should be httpOnly")
}

func TestAuthHandler_Login_InvalidRequestBody(t *testing.T) {
	jwtService := auth.NewJWTService(testJWTConfig())
	userRepo := new(MockUserRepository)
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := participantForHandler(t)

	userRepo.On("FindByEmail", mock.Anything, "priya@students.iiit.ac.in").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	reqBody := appidentity.LoginRequest{
		Email:    "priya@students.iiit.ac.in",
		Password: "not-the-password",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response["success"].(bool))
}

func TestAuthHandler_Register_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	reqBody := appidentity.RegisterParticipantRequest{
		Email:           "rahul@students.iiit.ac.in",
		Password:        "Password123",
		FirstName:       "Rahul",
		LastName:        "Verma",
		ParticipantType: "IIIT",
		College:         "IIIT Hyderabad",
		ContactNumber:   "+919876543210",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "rahul@students.iiit.ac.in", userData["email"])

	userRepo.AssertExpectations(t)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	jwtService := auth.NewJWTService(testJWTConfig())
	userRepo := new(MockUserRepository)
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	reqBody := appidentity.RegisterParticipantRequest{
		Email:           "rahul@students.iiit.ac.in",
		Password:        "short",
		FirstName:       "Rahul",
		ParticipantType: "IIIT",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	userRepo.AssertNotCalled(t, "Create")
}

func TestAuthHandler_Refresh_FromCookie(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := participantForHandler(t)

	userRepo.On("FindByEmail", mock.Anything, "priya@students.iiit.ac.in").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	// First login
	loginBody, _ := json.Marshal(appidentity.LoginRequest{
		Email:    "priya@students.iiit.ac.in",
		Password: "Password123",
	})
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	router.ServeHTTP(loginW, loginReq)
	require.Equal(t, http.StatusOK, loginW.Code)

	var refreshCookie *http.Cookie
	for _, c := range loginW.Result().Cookies() {
		if c.Name == refreshCookieName {
			refreshCookie = c
			break
		}
	}
	require.NotNil(t, refreshCookie, "refresh cookie should be set after login")

	// Refresh with the cookie only, no body
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(refreshCookie)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])

	var newCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookieName {
			newCookie = c
			break
		}
	}
	require.NotNil(t, newCookie, "a new refresh cookie should be set")
	assert.NotEmpty(t, newCookie.Value)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := participantForHandler(t)

	userRepo.On("FindByEmail", mock.Anything, "priya@students.iiit.ac.in").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	// First login
	loginBody, _ := json.Marshal(appidentity.LoginRequest{
		Email:    "priya@students.iiit.ac.in",
		Password: "Password123",
	})
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	router.ServeHTTP(loginW, loginReq)
	require.Equal(t, http.StatusOK, loginW.Code)

	var loginResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(loginW.Body.Bytes(), &loginResponse))
	loginData := loginResponse["data"].(map[string]interface{})
	accessToken := loginData["access_token"].(string)

	// Now logout
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Logged out successfully", data["message"])

	// The refresh cookie is cleared on logout
	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookieName {
			cleared = c
			break
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestAuthHandler_Logout_Unauthorized(t *testing.T) {
	jwtService := auth.NewJWTService(testJWTConfig())
	userRepo := new(MockUserRepository)
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := participantForHandler(t)

	userRepo.On("FindByEmail", mock.Anything, "priya@students.iiit.ac.in").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	// First login
	loginBody, _ := json.Marshal(appidentity.LoginRequest{
		Email:    "priya@students.iiit.ac.in",
		Password: "Password123",
	})
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	router.ServeHTTP(loginW, loginReq)
	require.Equal(t, http.StatusOK, loginW.Code)

	var loginResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(loginW.Body.Bytes(), &loginResponse))
	loginData := loginResponse["data"].(map[string]interface{})
	accessToken := loginData["access_token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "priya@students.iiit.ac.in", data["email"])
	assert.Equal(t, "Priya", data["first_name"])
}

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := participantForHandler(t)

	userRepo.On("FindByEmail", mock.Anything, "priya@students.iiit.ac.in").Return(user, nil)
	userRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	jwtService := auth.NewJWTService(testJWTConfig())
	authService := authServiceForHandler(userRepo, jwtService)
	handler := NewAuthHandler(authService, testCookieConfig())
	router := setupAuthRouter(handler, jwtService)

	// First login
	loginBody, _ := json.Marshal(appidentity.LoginRequest{
		Email:    "priya@students.iiit.ac.in",
		Password: "Password123",
	})
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	loginReq.Header.Set("Content-Type", "application/json")
	loginW := httptest.NewRecorder()
	router.ServeHTTP(loginW, loginReq)
	require.Equal(t, http.StatusOK, loginW.Code)

	var loginResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(loginW.Body.Bytes(), &loginResponse))
	loginData := loginResponse["data"].(map[string]interface{})
	accessToken := loginData["access_token"].(string)

	changeBody, _ := json.Marshal(appidentity.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword456",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/password", bytes.NewReader(changeBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))
}
