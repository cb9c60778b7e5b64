package dto

import (
	"time"

	"github.com/atelierhq/atelier-api/internal/models"
)

// UserDTO represents an account in API responses
type UserDTO struct {
	ID          uint64      `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	FullName    string      `json:"full_name"`
	Role        models.Role `json:"role"`
	RoleLabel   string      `json:"role_label"`
	CompanyName string      `json:"company_name"`
	ProfilePic  *string     `json:"profile_pic"`
	IsActive    bool        `json:"is_active"`
}

// UserDetailDTO represents the full account profile
type UserDetailDTO struct {
	UserDTO
	DateOfBirth   *time.Time `json:"date_of_birth"`
	MobileNumber  string     `json:"mobile_number"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Country       string     `json:"country"`
	Pincode       string     `json:"pincode"`
	AadharNumber  *string    `json:"aadhar_number"`
	DateOfJoining *time.Time `json:"date_of_joining"`
	DateOfExit    *time.Time `json:"date_of_exit"`
	IsStaff       bool       `json:"is_staff"`
	IsSuperuser   bool       `json:"is_superuser"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserListResponse represents a paginated list of accounts
type UserListResponse struct {
	Users      []UserDTO `json:"users"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		Role:        user.Role,
		RoleLabel:   user.Role.Label(),
		CompanyName: user.CompanyName,
		ProfilePic:  user.ProfilePic,
		IsActive:    user.IsActive,
	}
}

// ToUserDetailDTO converts a User model to the full profile DTO
func ToUserDetailDTO(user models.User) UserDetailDTO {
	return UserDetailDTO{
		UserDTO:       ToUserDTO(user),
		DateOfBirth:   user.DateOfBirth,
		MobileNumber:  user.MobileNumber,
		Address:       user.Address,
		City:          user.City,
		State:         user.State,
		Country:       user.Country,
		Pincode:       user.Pincode,
		AadharNumber:  user.AadharNumber,
		DateOfJoining: user.DateOfJoining,
		DateOfExit:    user.DateOfExit,
		IsStaff:       user.IsStaff,
		IsSuperuser:   user.IsSuperuser,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}
