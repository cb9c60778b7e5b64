package services

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-api/internal/apperr"
	"github.com/atelierhq/atelier-api/internal/authz"
	"github.com/atelierhq/atelier-api/internal/constants"
	"github.com/atelierhq/atelier-api/internal/mailer"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
	"github.com/atelierhq/atelier-api/internal/utils"
)

// UserService handles account administration, mail dispatch, and client
// onboarding.
type UserService struct {
	userRepo repository.UserRepository
	mail     mailer.Mailer
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, mail mailer.Mailer, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		mail:     mail,
		logger:   logger,
	}
}

// ListUsersInput represents filters for listing accounts.
type ListUsersInput struct {
	Role     string
	Search   string
	Page     int
	PageSize int
}

// List returns the accounts visible to the actor, narrowed by the optional
// role filter and search term.
func (s *UserService) List(actor authz.Actor, input ListUsersInput) ([]models.User, int64, error) {
	if !authz.Can(actor, authz.ActionList, authz.Resource{Kind: authz.KindAccount}) {
		return nil, 0, apperr.PermissionDenied("not allowed to list accounts")
	}

	filter := repository.UserFilter{
		VisibleRoles: authz.AccountListRoles(actor),
		Search:       strings.TrimSpace(input.Search),
		Page:         input.Page,
		PageSize:     input.PageSize,
	}
	if input.Role != "" {
		role := models.Role(input.Role)
		if !models.IsValidRole(role) {
			return nil, 0, apperr.Validation("unknown role filter")
		}
		filter.Role = &role
	}

	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// CreateUserInput represents admin-driven account creation.
type CreateUserInput struct {
	RegisterInput
}

// Create creates an account on behalf of another user. Unlike
// self-registration, an unrecognized role is rejected rather than silently
// downgraded.
func (s *UserService) Create(actor authz.Actor, input CreateUserInput) (*models.User, error) {
	role := models.Role(input.Role)
	if !models.IsValidRole(role) {
		return nil, apperr.Validation("unknown role")
	}

	res := authz.Resource{Kind: authz.KindAccount, AccountRole: role}
	if !authz.Can(actor, authz.ActionCreate, res) {
		return nil, apperr.PermissionDenied("not allowed to create this account")
	}

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

// Get returns an account the actor is allowed to view.
func (s *UserService) Get(actor authz.Actor, id uint64) (*models.User, error) {
	user, err := s.findUser(id)
	if err != nil {
		return nil, err
	}

	res := authz.Resource{Kind: authz.KindAccount, AccountID: user.ID, AccountRole: user.Role}
	if !authz.Can(actor, authz.ActionView, res) {
		return nil, apperr.PermissionDenied("not allowed to view this account")
	}
	return user, nil
}

// UpdateUserInput extends the profile fields with the admin-only attributes.
type UpdateUserInput struct {
	ProfileInput
	Role       *string
	DateOfExit *time.Time
	IsActive   *bool
}

// Update applies a partial account update. Role and active-flag changes
// require the admin capability on the target account.
func (s *UserService) Update(actor authz.Actor, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.findUser(id)
	if err != nil {
		return nil, err
	}

	res := authz.Resource{Kind: authz.KindAccount, AccountID: user.ID, AccountRole: user.Role}
	if !authz.Can(actor, authz.ActionUpdate, res) {
		return nil, apperr.PermissionDenied("not allowed to update this account")
	}

	applyProfile(user, input.ProfileInput)

	if input.Role != nil {
		role := models.Role(*input.Role)
		if !models.IsValidRole(role) {
			return nil, apperr.Validation("unknown role")
		}
		// Role is immutable except for admins.
		if !actor.Superuser && actor.Role != models.RoleAdmin {
			return nil, apperr.PermissionDenied("only admins can change roles")
		}
		user.Role = role
	}
	if input.DateOfExit != nil {
		user.DateOfExit = input.DateOfExit
	}
	if input.IsActive != nil {
		if !actor.Superuser && actor.Role != models.RoleAdmin {
			return nil, apperr.PermissionDenied("only admins can change the active flag")
		}
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes an account. Self-deletion is always denied.
func (s *UserService) Delete(actor authz.Actor, id uint64) error {
	user, err := s.findUser(id)
	if err != nil {
		return err
	}

	res := authz.Resource{Kind: authz.KindAccount, AccountID: user.ID, AccountRole: user.Role}
	if !authz.Can(actor, authz.ActionDelete, res) {
		if actor.ID == id {
			return apperr.PermissionDenied("cannot delete your own account")
		}
		return apperr.PermissionDenied("not allowed to delete this account")
	}

	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// CheckEmail reports whether an account with the email exists.
func (s *UserService) CheckEmail(email string) (bool, error) {
	exists, err := s.userRepo.EmailExists(strings.TrimSpace(email))
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// SetPassword sets another account's password without knowing the old one.
func (s *UserService) SetPassword(actor authz.Actor, id uint64, password string) error {
	user, err := s.findUser(id)
	if err != nil {
		return err
	}

	res := authz.Resource{Kind: authz.KindAccount, AccountID: user.ID, AccountRole: user.Role}
	if !authz.Can(actor, authz.ActionSetPassword, res) {
		return apperr.PermissionDenied("not allowed to set this account's password")
	}
	if len(password) < constants.MinPasswordLength {
		return apperr.Validation(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return nil
}

// SetProfilePic records a newly uploaded profile picture for the account.
// Only declared image mime types are accepted.
func (s *UserService) SetProfilePic(actor authz.Actor, id uint64, fileName, contentType string) (*models.User, error) {
	user, err := s.findUser(id)
	if err != nil {
		return nil, err
	}

	res := authz.Resource{Kind: authz.KindAccount, AccountID: user.ID, AccountRole: user.Role}
	if !authz.Can(actor, authz.ActionUpdate, res) {
		return nil, apperr.PermissionDenied("not allowed to update this account")
	}
	if _, ok := constants.AllowedImageTypes[contentType]; !ok {
		return nil, apperr.Validation("unsupported image type")
	}

	key := uuid.NewString() + strings.ToLower(path.Ext(fileName))
	user.ProfilePic = &key

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}
	return user, nil
}

// SendMail dispatches an HTML email through the mail collaborator.
func (s *UserService) SendMail(actor authz.Actor, to, subject, body string) error {
	if !authz.Can(actor, authz.ActionSendMail, authz.Resource{Kind: authz.KindMail}) {
		return apperr.PermissionDenied("not allowed to send mail")
	}
	if to == "" || subject == "" {
		return apperr.Validation("recipient and subject are required")
	}

	if err := s.mail.Send(to, subject, body); err != nil {
		return apperr.Dependency("failed to send email", err)
	}
	return nil
}

// OnboardClient creates a client account with a generated password. The
// plaintext password is returned exactly once and never persisted.
func (s *UserService) OnboardClient(actor authz.Actor, name, email, company string) (*models.User, string, error) {
	if !authz.Can(actor, authz.ActionOnboard, authz.Resource{Kind: authz.KindMail}) {
		return nil, "", apperr.PermissionDenied("not allowed to onboard clients")
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	company = strings.TrimSpace(company)
	if name == "" || email == "" || company == "" {
		return nil, "", apperr.Validation("name, email, and company are required")
	}

	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, "", apperr.Conflict("user with this email already exists")
	}

	password, err := utils.GeneratePassword(constants.GeneratedPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate password: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	firstName, lastName := splitName(name)
	user := &models.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     lastName,
		CompanyName:  company,
		Role:         models.RoleClient,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent onboarding for the same email loses on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperr.Conflict("user with this email already exists")
		}
		return nil, "", fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client onboarded",
		zap.Uint64("client_id", user.ID),
		zap.String("email", user.Email),
	)

	return user, password, nil
}

// ClientCredentialsInput identifies the onboarded client and carries the
// password obtained from OnboardClient.
type ClientCredentialsInput struct {
	ClientID uint64
	Email    string
	Name     string
	Company  string
	Password string
}

// SendClientCredentials re-validates the client record before mailing the
// generated credentials. It never regenerates the password.
func (s *UserService) SendClientCredentials(actor authz.Actor, input ClientCredentialsInput) error {
	if !authz.Can(actor, authz.ActionOnboard, authz.Resource{Kind: authz.KindMail}) {
		return apperr.PermissionDenied("not allowed to send client credentials")
	}
	if input.Password == "" {
		return apperr.Validation("password is required")
	}

	client, err := s.findUser(input.ClientID)
	if err != nil {
		return err
	}
	if client.Email != input.Email || client.Role != models.RoleClient {
		return apperr.Validation("client record does not match")
	}

	subject, body := mailer.CredentialsEmail(input.Name, input.Company, client.Email, input.Password)
	if err := s.mail.Send(client.Email, subject, body); err != nil {
		return apperr.Dependency("failed to send credentials email", err)
	}
	return nil
}

func (s *UserService) findUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// splitName divides a display name into first and last on the first
// whitespace run.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
