package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/selimcan/tasktracker/internal/constants"
	"github.com/selimcan/tasktracker/internal/models"
	"github.com/selimcan/tasktracker/internal/repository"
	"github.com/selimcan/tasktracker/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is deliberately shared by "unknown email",
	// "wrong password" and "disabled account" so login outcomes cannot be
	// used to enumerate users.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[0-9+\-\s()]+$`)
)

// AuthService handles registration, authentication and user visibility.
type AuthService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// RegisterInput represents the self-service signup payload.
type RegisterInput struct {
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
	UserTypeCode    string
	PhoneNumber     string
	DateOfBirth     *time.Time
	Bio             string
	Address         string
	City            string
	Country         string
}

// Register creates a new account. Self-registration is restricted to the
// default role; privileged roles require admin action.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	fields := fieldErrors{}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !emailRegex.MatchString(email) {
		fields.add("email", "Enter a valid email address.")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		fields.add("first_name", "This field may not be blank.")
	}
	if strings.TrimSpace(input.LastName) == "" {
		fields.add("last_name", "This field may not be blank.")
	}
	if len(input.Password) < constants.MinPasswordLength {
		fields.add("password", fmt.Sprintf("Password must be at least %d characters.", constants.MinPasswordLength))
	}
	if input.Password != input.PasswordConfirm {
		fields.add("password_confirm", "Passwords do not match.")
	}

	phone := strings.TrimSpace(input.PhoneNumber)
	if phone != "" && !phoneRegex.MatchString(phone) {
		fields.add("phone_number", "Phone number may contain digits, spaces, and + - ( ) symbols only.")
	}

	roleCode := models.RoleCode(strings.TrimSpace(input.UserTypeCode))
	if roleCode == "" {
		roleCode = models.RoleUser
	}
	if roleCode != models.RoleUser {
		fields.add("user_type", "You can only register with the 'user' role. Privileged roles require admin action.")
	}

	if err := fields.asError(); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		fields.add("email", "A user with this email already exists.")
		return nil, fields.asError()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	role, err := s.roleRepo.FindByCode(roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default role: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		UserTypeID:   &role.ID,
		UserType:     role,
		PhoneNumber:  phone,
		DateOfBirth:  input.DateOfBirth,
		Bio:          input.Bio,
		Address:      input.Address,
		City:         input.City,
		Country:      input.Country,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Log.Error("Failed to create user",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Log.Info("User registered",
		zap.Uint64("user_id", user.ID),
		zap.String("email", email),
	)

	return user, nil
}

// Authenticate verifies credentials and returns the user. Every failure mode
// maps to the same ErrInvalidCredentials.
func (s *AuthService) Authenticate(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Warn("Login failed: invalid password", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		logger.Log.Warn("Login failed: inactive account", zap.Uint64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	logger.Log.Info("User logged in", zap.Uint64("user_id", user.ID))
	return user, nil
}

// GetUser retrieves a user by ID with the role preloaded.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListVisibleUsers returns every user for actors with global data access and
// only the actor's own record otherwise.
func (s *AuthService) ListVisibleUsers(actor *models.User) ([]models.User, error) {
	var onlyID *uint64
	if !actor.HasGlobalDataAccess() {
		onlyID = &actor.ID
	}

	users, err := s.userRepo.List(onlyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
