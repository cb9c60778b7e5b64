package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-api/internal/apperr"
	"github.com/atelierhq/atelier-api/internal/constants"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
	"github.com/atelierhq/atelier-api/internal/token"
)

// ErrInvalidCredentials is returned when login fails; the handler maps it to
// an unauthenticated response without revealing which check failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the account with a signed token.
func (s *AuthService) Login(input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(strings.TrimSpace(input.Email))
	if err != nil {
		// Unknown emails fail the same way as wrong passwords so the
		// response does not disclose whether an account exists.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, signed, nil
}

// RegisterInput represents the information accepted at self-registration.
type RegisterInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	MobileNumber  string
	CompanyName   string
	Role          string
	DateOfBirth   *time.Time
	Address       string
	City          string
	State         string
	Country       string
	Pincode       string
	AadharNumber  string
	DateOfJoining *time.Time
}

// Register creates a new account. Empty nullable fields are stored as absent
// and an unrecognized role falls back to client, matching the legacy intake
// behavior this endpoint keeps backward-compatible.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}

	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("user with this email already exists")
	}

	role := models.Role(input.Role)
	if !models.IsValidRole(role) {
		role = models.RoleClient
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:         email,
		PasswordHash:  string(hashed),
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		MobileNumber:  input.MobileNumber,
		CompanyName:   input.CompanyName,
		Role:          role,
		DateOfBirth:   input.DateOfBirth,
		Address:       input.Address,
		City:          input.City,
		State:         input.State,
		Country:       input.Country,
		Pincode:       input.Pincode,
		AadharNumber:  optionalString(input.AadharNumber),
		DateOfJoining: input.DateOfJoining,
		IsActive:      true,
		IsStaff:       role != models.RoleClient,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("user with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser retrieves an account by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ProfileInput represents the allow-listed fields an account may change on
// its own profile. Nil fields are left untouched.
type ProfileInput struct {
	FirstName    *string
	LastName     *string
	MobileNumber *string
	CompanyName  *string
	DateOfBirth  *time.Time
	Address      *string
	City         *string
	State        *string
	Country      *string
	Pincode      *string
	AadharNumber *string
}

// UpdateProfile applies a partial profile update to the account.
func (s *AuthService) UpdateProfile(userID uint64, input ProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	applyProfile(user, input)

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the old password before setting the new one.
func (s *AuthService) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.Validation("invalid old password")
	}
	if len(newPassword) < constants.MinPasswordLength {
		return apperr.Validation(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func applyProfile(user *models.User, input ProfileInput) {
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.MobileNumber != nil {
		user.MobileNumber = *input.MobileNumber
	}
	if input.CompanyName != nil {
		user.CompanyName = *input.CompanyName
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.City != nil {
		user.City = *input.City
	}
	if input.State != nil {
		user.State = *input.State
	}
	if input.Country != nil {
		user.Country = *input.Country
	}
	if input.Pincode != nil {
		user.Pincode = *input.Pincode
	}
	if input.AadharNumber != nil {
		user.AadharNumber = optionalString(*input.AadharNumber)
	}
}

// optionalString treats an empty string as absent.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
