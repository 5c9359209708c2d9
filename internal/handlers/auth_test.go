package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/selimcan/tasktracker/internal/database"
	"github.com/selimcan/tasktracker/internal/dto"
	"github.com/selimcan/tasktracker/internal/middleware"
	"github.com/selimcan/tasktracker/internal/models"
	"github.com/selimcan/tasktracker/internal/repository"
	"github.com/selimcan/tasktracker/internal/services"
)

const testJWTSecret = "test-secret"

type authTestEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.UserType{}, &models.User{}, &models.Task{}))
	require.NoError(t, database.SeedRoles(db))
	database.SetDB(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	authService := services.NewAuthService(userRepo, roleRepo)
	handler := NewAuthHandler(authService, testJWTSecret, 15*time.Minute, 7*24*time.Hour)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/auth/register", handler.Register)
	api.POST("/auth/login", handler.Login)
	api.POST("/token/refresh", handler.Refresh)

	protected := api.Group("", middleware.RequireAuth(testJWTSecret))
	protected.GET("/auth/me", handler.GetCurrentUser)
	protected.GET("/auth/users", handler.ListUsers)

	return &authTestEnv{
		db:       db,
		router:   router,
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

func (env *authTestEnv) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *authTestEnv) createUser(t *testing.T, email string, code models.RoleCode) *models.User {
	t.Helper()

	role, err := env.roleRepo.FindByCode(code)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		UserTypeID:   &role.ID,
		UserType:     role,
		IsActive:     true,
	}
	require.NoError(t, env.userRepo.Create(user))
	return user
}

// login runs the full credential exchange and returns the token pair.
func (env *authTestEnv) login(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()

	w := env.request(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Access)
	require.NotEmpty(t, resp.Refresh)
	return resp.Access, resp.Refresh
}

func TestAuthHandler_Register(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":            "new@example.com",
		"first_name":       "New",
		"last_name":        "User",
		"password":         "password123",
		"password_confirm": "password123",
		"date_of_birth":    "1990-06-15",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message string      `json:"message"`
		User    dto.UserDTO `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "User registered successfully.", resp.Message)
	require.Equal(t, "new@example.com", resp.User.Email)
	require.NotNil(t, resp.User.UserType)
	require.Equal(t, "user", *resp.User.UserType)
	require.False(t, resp.User.IsStaff)
}

func TestAuthHandler_Register_RejectsPrivilegedRole(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":            "sneaky@example.com",
		"first_name":       "Sneaky",
		"last_name":        "User",
		"password":         "password123",
		"password_confirm": "password123",
		"user_type":        "admin",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Registration failed.", resp.Message)
	require.Contains(t, resp.Errors, "user_type")
}

func TestAuthHandler_Register_BadDateOfBirth(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":            "new@example.com",
		"first_name":       "New",
		"last_name":        "User",
		"password":         "password123",
		"password_confirm": "password123",
		"date_of_birth":    "15/06/1990",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp.Errors, "date_of_birth")
}

func TestAuthHandler_Login(t *testing.T) {
	env := newAuthTestEnv(t)
	env.createUser(t, "login@example.com", models.RoleUser)

	access, refresh := env.login(t, "login@example.com", "password123")
	require.NotEqual(t, access, refresh)

	// Unknown email and wrong password fail identically.
	w := env.request(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "login@example.com",
		"password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	wrongPasswordBody := w.Body.String()

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "ghost@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, wrongPasswordBody, w.Body.String())
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := newAuthTestEnv(t)
	env.createUser(t, "login@example.com", models.RoleUser)
	access, refresh := env.login(t, "login@example.com", "password123")

	w := env.request(t, http.MethodPost, "/api/v1/token/refresh", gin.H{"refresh": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Access)

	// An access token cannot be redeemed at the refresh endpoint.
	w = env.request(t, http.MethodPost, "/api/v1/token/refresh", gin.H{"refresh": access}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	env := newAuthTestEnv(t)
	env.createUser(t, "me@example.com", models.RoleUser)
	access, _ := env.login(t, "me@example.com", "password123")

	w := env.request(t, http.MethodGet, "/api/v1/auth/me", nil, access)
	require.Equal(t, http.StatusOK, w.Code)

	var me dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Equal(t, "me@example.com", me.Email)

	// No token, garbage token, refresh-as-access: all rejected.
	w = env.request(t, http.MethodGet, "/api/v1/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/auth/me", nil, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	_, refresh := env.login(t, "me@example.com", "password123")
	w = env.request(t, http.MethodGet, "/api/v1/auth/me", nil, refresh)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_UsersVisibility(t *testing.T) {
	env := newAuthTestEnv(t)
	env.createUser(t, "alice@example.com", models.RoleUser)
	env.createUser(t, "bob@example.com", models.RoleUser)
	env.createUser(t, "admin@example.com", models.RoleAdmin)

	aliceToken, _ := env.login(t, "alice@example.com", "password123")
	w := env.request(t, http.MethodGet, "/api/v1/auth/users", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.UserListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "alice@example.com", resp.Results[0].Email)

	adminToken, _ := env.login(t, "admin@example.com", "password123")
	w = env.request(t, http.MethodGet, "/api/v1/auth/users", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Count)
}

func TestAuthHandler_DisabledAccount(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.createUser(t, "gone@example.com", models.RoleUser)
	access, _ := env.login(t, "gone@example.com", "password123")

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error)

	// The still-valid token is refused once the account is disabled.
	w := env.request(t, http.MethodGet, "/api/v1/auth/me", nil, access)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "gone@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
