package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/atelier-api/internal/dto"
	apierrors "github.com/atelierhq/atelier-api/internal/errors"
	"github.com/atelierhq/atelier-api/internal/middleware"
	"github.com/atelierhq/atelier-api/internal/services"
	"github.com/atelierhq/atelier-api/internal/utils"
)

// ProjectHandler coordinates project lifecycle HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// List returns the projects visible to the caller.
func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	pagination := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.List(actor, services.ListProjectsInput{
		Status:   c.Query("status"),
		Page:     pagination.Page,
		PageSize: pagination.Limit,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	projectDTOs := make([]dto.ProjectDTO, len(projects))
	for i, project := range projects {
		projectDTOs[i] = dto.ToProjectDTO(project)
	}
	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects:   projectDTOs,
		Page:       pagination.Page,
		PageSize:   pagination.Limit,
		TotalCount: total,
		TotalPages: totalPages(total, pagination.Limit),
	})
}

// Create opens a new project.
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type createProjectRequest struct {
		Name         string   `json:"name" binding:"required"`
		Description  string   `json:"description" binding:"required"`
		Requirements string   `json:"requirements"`
		Timeline     string   `json:"timeline"`
		ProjectType  string   `json:"project_type"`
		ClientID     uint64   `json:"client_id"`
		ManagerID    uint64   `json:"manager_id"`
		DesignerIDs  []uint64 `json:"designer_ids"`
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(actor, services.CreateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Requirements: req.Requirements,
		Timeline:     req.Timeline,
		ProjectType:  req.ProjectType,
		ClientID:     req.ClientID,
		ManagerID:    req.ManagerID,
		DesignerIDs:  req.DesignerIDs,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// Get returns a single project.
func (h *ProjectHandler) Get(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.Get(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// attachmentRequest is one inline attachment in a replacement set.
type attachmentRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

func toAttachmentInputs(reqs []attachmentRequest) []services.AttachmentInput {
	inputs := make([]services.AttachmentInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = services.AttachmentInput{
			Name:        r.Name,
			ContentType: r.ContentType,
			Data:        r.Data,
		}
	}
	return inputs
}

// Update applies a partial project update.
func (h *ProjectHandler) Update(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type updateProjectRequest struct {
		Name         *string              `json:"name"`
		Description  *string              `json:"description"`
		Requirements *string              `json:"requirements"`
		Timeline     *string              `json:"timeline"`
		Status       *string              `json:"status"`
		DesignerIDs  *[]uint64            `json:"designer_ids"`
		Attachments  *[]attachmentRequest `json:"attachments"`
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Requirements: req.Requirements,
		Timeline:     req.Timeline,
		Status:       req.Status,
		DesignerIDs:  req.DesignerIDs,
	}
	if req.Attachments != nil {
		attachments := toAttachmentInputs(*req.Attachments)
		input.Attachments = &attachments
	}

	result, err := h.projectService.Update(actor, id, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	response := gin.H{
		"project": dto.ToProjectDTO(*result.Project),
	}
	if len(result.SkippedAttachments) > 0 {
		response["skipped_attachments"] = result.SkippedAttachments
	}
	c.JSON(http.StatusOK, response)
}

// Delete removes a project.
func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.Delete(actor, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// Approve approves a project awaiting intake review.
func (h *ProjectHandler) Approve(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.Approve(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// Reject declines a project at intake.
func (h *ProjectHandler) Reject(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type rejectRequest struct {
		Feedback string `json:"feedback"`
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Reject(actor, id, req.Feedback)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// SubmitQuotation submits a quotation to the project's client.
func (h *ProjectHandler) SubmitQuotation(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type quotationRequest struct {
		Message  string `json:"message" binding:"required"`
		FileName string `json:"file_name"`
	}

	var req quotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.SubmitQuotation(actor, id, req.Message, req.FileName)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// AcceptQuotation records the client's acceptance.
func (h *ProjectHandler) AcceptQuotation(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.AcceptQuotation(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// RejectQuotation records the client's feedback on a quotation.
func (h *ProjectHandler) RejectQuotation(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type feedbackRequest struct {
		Feedback string `json:"feedback" binding:"required"`
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.RejectQuotation(actor, id, req.Feedback)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// SetDesigners replaces the project's designer set.
func (h *ProjectHandler) SetDesigners(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type designersRequest struct {
		DesignerIDs []uint64 `json:"designer_ids"`
	}

	var req designersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.projectService.SetDesigners(actor, id, req.DesignerIDs); err != nil {
		apierrors.Respond(c, err)
		return
	}

	project, err := h.projectService.Get(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// ReplaceAttachments replaces the project's attachment set.
func (h *ProjectHandler) ReplaceAttachments(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type attachmentsRequest struct {
		Attachments []attachmentRequest `json:"attachments"`
	}

	var req attachmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	skipped, err := h.projectService.ReplaceAttachments(actor, id, toAttachmentInputs(req.Attachments))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	project, err := h.projectService.Get(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	response := gin.H{
		"project": dto.ToProjectDTO(*project),
	}
	if len(skipped) > 0 {
		response["skipped_attachments"] = skipped
	}
	c.JSON(http.StatusOK, response)
}

// ListUpdates returns the project's activity log.
func (h *ProjectHandler) ListUpdates(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	updates, err := h.projectService.ListUpdates(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	updateDTOs := make([]dto.ProjectUpdateDTO, len(updates))
	for i, update := range updates {
		updateDTOs[i] = dto.ToProjectUpdateDTO(update)
	}
	c.JSON(http.StatusOK, gin.H{
		"updates": updateDTOs,
	})
}

// CreateUpdate appends an entry to the project's activity log.
func (h *ProjectHandler) CreateUpdate(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type createUpdateRequest struct {
		Type        string `json:"type" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		FileName    string `json:"file_name"`
		FileSize    *int64 `json:"file_size"`
		FileType    string `json:"file_type"`
	}

	var req createUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	update, err := h.projectService.CreateUpdate(actor, id, services.CreateUpdateInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		FileType:    req.FileType,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectUpdateDTO(*update))
}
