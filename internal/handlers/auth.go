package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/atelier-api/internal/dto"
	apierrors "github.com/atelierhq/atelier-api/internal/errors"
	"github.com/atelierhq/atelier-api/internal/middleware"
	"github.com/atelierhq/atelier-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// registerRequest is shared by self-registration and admin account creation.
type registerRequest struct {
	Email         string `json:"email" binding:"required"`
	Password      string `json:"password" binding:"required"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	MobileNumber  string `json:"mobile_number"`
	CompanyName   string `json:"company_name"`
	Role          string `json:"role"`
	DateOfBirth   string `json:"date_of_birth"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	Pincode       string `json:"pincode"`
	AadharNumber  string `json:"aadhar_number"`
	DateOfJoining string `json:"date_of_joining"`
}

func (r *registerRequest) toInput() (services.RegisterInput, bool) {
	dob, ok := parseDate(r.DateOfBirth)
	if !ok {
		return services.RegisterInput{}, false
	}
	doj, ok := parseDate(r.DateOfJoining)
	if !ok {
		return services.RegisterInput{}, false
	}
	return services.RegisterInput{
		Email:         r.Email,
		Password:      r.Password,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		MobileNumber:  r.MobileNumber,
		CompanyName:   r.CompanyName,
		Role:          r.Role,
		DateOfBirth:   dob,
		Address:       r.Address,
		City:          r.City,
		State:         r.State,
		Country:       r.Country,
		Pincode:       r.Pincode,
		AadharNumber:  r.AadharNumber,
		DateOfJoining: doj,
	}, true
}

// Register creates a new account with the submitted profile.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	input, ok := req.toInput()
	if !ok {
		apierrors.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	user, err := h.authService.Register(input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDetailDTO(*user))
}

// Login authenticates an account and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type loginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, signed, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			apierrors.Unauthorized(c, err.Error())
			return
		}
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": signed,
		"user":  dto.ToUserDetailDTO(*user),
	})
}

// Logout acknowledges a logout request. Tokens are stateless, so there is
// no server-side session to tear down; clients discard the token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated account.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailDTO(*user))
}

// profileRequest carries the self-service profile fields.
type profileRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	MobileNumber *string `json:"mobile_number"`
	CompanyName  *string `json:"company_name"`
	DateOfBirth  *string `json:"date_of_birth"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	Pincode      *string `json:"pincode"`
	AadharNumber *string `json:"aadhar_number"`
}

func (r *profileRequest) toInput() (services.ProfileInput, bool) {
	input := services.ProfileInput{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		MobileNumber: r.MobileNumber,
		CompanyName:  r.CompanyName,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		Country:      r.Country,
		Pincode:      r.Pincode,
		AadharNumber: r.AadharNumber,
	}
	if r.DateOfBirth != nil {
		dob, ok := parseDate(*r.DateOfBirth)
		if !ok {
			return services.ProfileInput{}, false
		}
		input.DateOfBirth = dob
	}
	return input, true
}

// UpdateProfile applies a partial update to the authenticated account.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	input, ok := req.toInput()
	if !ok {
		apierrors.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	user, err := h.authService.UpdateProfile(userID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailDTO(*user))
}

// ChangePassword rotates the authenticated account's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type changePasswordRequest struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}
