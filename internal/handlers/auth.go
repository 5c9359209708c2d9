package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selimcan/tasktracker/internal/auth"
	"github.com/selimcan/tasktracker/internal/dto"
	apierrors "github.com/selimcan/tasktracker/internal/errors"
	"github.com/selimcan/tasktracker/internal/middleware"
	"github.com/selimcan/tasktracker/internal/services"
)

const dateOnlyFormat = "2006-01-02"

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	jwtSecret   string
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, jwtSecret string, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// Register creates a new account through the public signup path.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email           string `json:"email"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
		UserType        string `json:"user_type"`
		PhoneNumber     string `json:"phone_number"`
		DateOfBirth     string `json:"date_of_birth"`
		Bio             string `json:"bio"`
		Address         string `json:"address"`
		City            string `json:"city"`
		Country         string `json:"country"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse(dateOnlyFormat, req.DateOfBirth)
		if err != nil {
			apierrors.ValidationFailed(c, "Registration failed.", map[string]string{
				"date_of_birth": "Date must be in YYYY-MM-DD format.",
			})
			return
		}
		dateOfBirth = &parsed
	}

	user, err := h.authService.Register(services.RegisterInput{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		UserTypeCode:    req.UserType,
		PhoneNumber:     req.PhoneNumber,
		DateOfBirth:     dateOfBirth,
		Bio:             req.Bio,
		Address:         req.Address,
		City:            req.City,
		Country:         req.Country,
	})
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			apierrors.ValidationFailed(c, "Registration failed.", ve.Fields)
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user":    dto.ToUserDTO(*user),
	})
}

// Login authenticates credentials and hands out the token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			apierrors.Unauthorized(c, "Invalid email or password.")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	pair, err := auth.GeneratePair(user, h.jwtSecret, h.accessTTL, h.refreshTTL)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful.",
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	type RefreshRequest struct {
		Refresh string `json:"refresh" binding:"required"`
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	claims, err := auth.ValidateToken(req.Refresh, h.jwtSecret, auth.TokenTypeRefresh)
	if err != nil {
		apierrors.Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	// The account must still exist and be active when the token is redeemed.
	user, err := h.authService.GetUser(claims.UserID)
	if err != nil || !user.IsActive {
		apierrors.Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	access, err := auth.GenerateToken(user, auth.TokenTypeAccess, h.jwtSecret, h.accessTTL)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

// GetCurrentUser returns the authenticated actor.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*actor))
}

// ListUsers returns the actor's own record, or every user for actors with
// global data access.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.authService.ListVisibleUsers(actor)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users))
}
