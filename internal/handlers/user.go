package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/atelier-api/internal/dto"
	apierrors "github.com/atelierhq/atelier-api/internal/errors"
	"github.com/atelierhq/atelier-api/internal/middleware"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/services"
	"github.com/atelierhq/atelier-api/internal/utils"
)

// UserHandler coordinates account management HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List returns the accounts visible to the caller.
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	pagination := utils.GetPaginationParams(c)

	users, total, err := h.userService.List(actor, services.ListUsersInput{
		Role:     c.Query("role"),
		Search:   c.Query("search"),
		Page:     pagination.Page,
		PageSize: pagination.Limit,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	userDTOs := make([]dto.UserDTO, len(users))
	for i, user := range users {
		userDTOs[i] = dto.ToUserDTO(user)
	}
	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:      userDTOs,
		Page:       pagination.Page,
		PageSize:   pagination.Limit,
		TotalCount: total,
		TotalPages: totalPages(total, pagination.Limit),
	})
}

// Create creates an account on behalf of the caller.
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

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

	user, err := h.userService.Create(actor, services.CreateUserInput{RegisterInput: input})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDetailDTO(*user))
}

// Get returns a single account.
func (h *UserHandler) Get(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.userService.Get(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailDTO(*user))
}

// Update applies a partial account update.
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type updateUserRequest struct {
		profileRequest
		Role       *string `json:"role"`
		DateOfExit *string `json:"date_of_exit"`
		IsActive   *bool   `json:"is_active"`
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	profile, ok := req.toInput()
	if !ok {
		apierrors.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	input := services.UpdateUserInput{
		ProfileInput: profile,
		Role:         req.Role,
		IsActive:     req.IsActive,
	}
	if req.DateOfExit != nil {
		exit, ok := parseDate(*req.DateOfExit)
		if !ok {
			apierrors.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		input.DateOfExit = exit
	}

	user, err := h.userService.Update(actor, id, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailDTO(*user))
}

// Delete removes an account.
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.Delete(actor, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

// CheckEmail reports whether an email address is already registered.
func (h *UserHandler) CheckEmail(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		apierrors.BadRequest(c, "email is required")
		return
	}

	exists, err := h.userService.CheckEmail(email)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exists": exists,
	})
}

// ListRoles returns the role enumeration with display labels.
func (h *UserHandler) ListRoles(c *gin.Context) {
	type roleEntry struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}

	roles := models.AllRoles()
	entries := make([]roleEntry, 0, len(roles))
	for _, role := range roles {
		entries = append(entries, roleEntry{Value: string(role), Label: role.Label()})
	}

	c.JSON(http.StatusOK, gin.H{
		"roles": entries,
	})
}

// SetPassword sets a new password on the target account.
func (h *UserHandler) SetPassword(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type setPasswordRequest struct {
		Password string `json:"password" binding:"required"`
	}

	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.SetPassword(actor, id, req.Password); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated successfully",
	})
}

// SetProfilePic stores a new profile picture reference for the account.
func (h *UserHandler) SetProfilePic(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type profilePicRequest struct {
		FileName    string `json:"file_name" binding:"required"`
		ContentType string `json:"content_type" binding:"required"`
	}

	var req profilePicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.SetProfilePic(actor, id, req.FileName, req.ContentType)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// SendMail sends an email on behalf of the caller.
func (h *UserHandler) SendMail(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type sendMailRequest struct {
		To      string `json:"to" binding:"required,email"`
		Subject string `json:"subject" binding:"required"`
		Body    string `json:"body" binding:"required"`
	}

	var req sendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.SendMail(actor, req.To, req.Subject, req.Body); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Mail sent successfully",
	})
}

// OnboardClient creates a client account with generated credentials.
func (h *UserHandler) OnboardClient(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type onboardRequest struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Company string `json:"company" binding:"required"`
	}

	var req onboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, password, err := h.userService.OnboardClient(actor, req.Name, req.Email, req.Company)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	// The plaintext password is surfaced exactly once, here, so the caller
	// can deliver it to the client.
	c.JSON(http.StatusCreated, gin.H{
		"user":     dto.ToUserDTO(*user),
		"password": password,
	})
}

// SendClientCredentials emails previously generated credentials to a client.
func (h *UserHandler) SendClientCredentials(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type credentialsRequest struct {
		ClientID uint64 `json:"client_id" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		Company  string `json:"company"`
		Password string `json:"password" binding:"required"`
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.userService.SendClientCredentials(actor, services.ClientCredentialsInput{
		ClientID: req.ClientID,
		Email:    req.Email,
		Name:     req.Name,
		Company:  req.Company,
		Password: req.Password,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Credentials sent successfully",
	})
}
