package dto

import (
	"time"

	"github.com/selimcan/tasktracker/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	UserType    *string    `json:"user_type"`
	PhoneNumber string     `json:"phone_number"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Bio         string     `json:"bio"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	IsStaff     bool       `json:"is_staff"`
}

// UserListResponse wraps the visibility endpoint payload
type UserListResponse struct {
	Count   int       `json:"count"`
	Results []UserDTO `json:"results"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		DateOfBirth: user.DateOfBirth,
		Bio:         user.Bio,
		Address:     user.Address,
		City:        user.City,
		Country:     user.Country,
		IsStaff:     user.IsStaff,
	}

	if user.UserType != nil {
		code := string(user.UserType.Code)
		dto.UserType = &code
	}

	return dto
}

// ToUserListResponse converts users to the count/results envelope
func ToUserListResponse(users []models.User) UserListResponse {
	results := make([]UserDTO, len(users))
	for i, user := range users {
		results[i] = ToUserDTO(user)
	}
	return UserListResponse{
		Count:   len(results),
		Results: results,
	}
}
