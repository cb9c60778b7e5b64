package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-api/internal/apperr"
	"github.com/atelierhq/atelier-api/internal/authz"
	"github.com/atelierhq/atelier-api/internal/mailer"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
)

// projectPreloads are the relations loaded whenever a single project is
// returned or authorized against.
var projectPreloads = []string{"Client", "Manager", "Designers", "Attachments"}

// ProjectService owns the project lifecycle: intake, the quotation
// handshake, approval, designer assignment, and attachment replacement.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	mail        mailer.Mailer
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, mail mailer.Mailer, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		mail:        mail,
		logger:      logger,
	}
}

// projectResource builds the policy resource for a loaded project.
func projectResource(kind authz.Kind, p *models.Project) authz.Resource {
	return authz.Resource{
		Kind:        kind,
		ClientID:    p.ClientID,
		ManagerID:   p.ManagerID,
		DesignerIDs: p.DesignerIDs(),
	}
}

// ListProjectsInput represents filters for listing projects.
type ListProjectsInput struct {
	Status   string
	Page     int
	PageSize int
}

// List returns the projects visible to the actor: everything for admins and
// managers, assigned projects for designers, own projects for clients.
func (s *ProjectService) List(actor authz.Actor, input ListProjectsInput) ([]models.Project, int64, error) {
	filter := repository.ProjectFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	switch authz.ProjectListScope(actor) {
	case authz.ListScopeAll:
		// no narrowing
	case authz.ListScopeManaged:
		filter.ManagerID = &actor.ID
	case authz.ListScopeAssigned:
		filter.DesignerID = &actor.ID
	case authz.ListScopeClient:
		filter.ClientID = &actor.ID
	default:
		return nil, 0, apperr.PermissionDenied("not allowed to list projects")
	}

	if input.Status != "" {
		status := models.ProjectStatus(input.Status)
		if !models.IsValidProjectStatus(status) {
			return nil, 0, apperr.Validation("unknown project status")
		}
		filter.Status = &status
	}

	projects, total, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// CreateProjectInput represents project intake.
type CreateProjectInput struct {
	Name         string
	Description  string
	Requirements string
	Timeline     string
	ProjectType  string
	ClientID     uint64
	ManagerID    uint64
	DesignerIDs  []uint64
}

// Create opens a new project in inactive status. Clients create projects for
// themselves and get a manager auto-assigned; managers create projects they
// will manage.
func (s *ProjectService) Create(actor authz.Actor, input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperr.Validation("description is required")
	}

	projectType := models.ProjectType(input.ProjectType)
	if input.ProjectType == "" {
		projectType = models.ProjectTypeResidential
	}
	if !models.IsValidProjectType(projectType) {
		return nil, apperr.Validation("unknown project type")
	}

	clientID := input.ClientID
	managerID := input.ManagerID

	if actor.Role == models.RoleClient && !actor.Superuser {
		clientID = actor.ID
		// The least-loaded active manager picks up client-submitted intakes.
		manager, err := s.userRepo.FindLeastLoadedManager()
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.InvalidState("no active project manager available")
			}
			return nil, fmt.Errorf("failed to pick manager: %w", err)
		}
		managerID = manager.ID
	}
	if managerID == 0 && (actor.Role == models.RoleProjectManager || actor.Role == models.RoleAssistantProjectManager) {
		managerID = actor.ID
	}

	res := authz.Resource{Kind: authz.KindProject, ClientID: clientID, ManagerID: managerID}
	if !authz.Can(actor, authz.ActionCreate, res) {
		return nil, apperr.PermissionDenied("not allowed to create this project")
	}

	client, err := s.userRepo.FindByID(clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("client not found")
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	if client.Role != models.RoleClient {
		return nil, apperr.Validation("project client must have the client role")
	}

	manager, err := s.userRepo.FindByID(managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("manager not found")
		}
		return nil, fmt.Errorf("failed to find manager: %w", err)
	}
	if !manager.IsProjectManager() && !manager.IsAdmin() {
		return nil, apperr.Validation("project manager must have a manager role")
	}

	if err := s.validateDesigners(input.DesignerIDs); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:         input.Name,
		Description:  input.Description,
		Requirements: input.Requirements,
		Timeline:     input.Timeline,
		ProjectType:  projectType,
		Status:       models.ProjectStatusInactive,
		ClientID:     clientID,
		ManagerID:    managerID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	if len(input.DesignerIDs) > 0 {
		if err := s.projectRepo.ReplaceDesigners(project.ID, uniqueIDs(input.DesignerIDs)); err != nil {
			return nil, fmt.Errorf("failed to assign designers: %w", err)
		}
	}

	return s.projectRepo.FindByID(project.ID, projectPreloads...)
}

// Get returns a project the actor participates in.
func (s *ProjectService) Get(actor authz.Actor, id uint64) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionView, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("not allowed to view this project")
	}
	return project, nil
}

// AttachmentInput is one inline-encoded attachment in a replacement set.
type AttachmentInput struct {
	Name        string
	ContentType string
	Data        string // base64
}

// UpdateProjectInput is the allow-listed patch for projects. Nil fields are
// untouched; DesignerIDs and Attachments replace their sets wholesale.
type UpdateProjectInput struct {
	Name         *string
	Description  *string
	Requirements *string
	Timeline     *string
	Status       *string
	DesignerIDs  *[]uint64
	Attachments  *[]AttachmentInput
}

// UpdateResult reports the outcome of a project update, including any
// attachments that could not be decoded.
type UpdateResult struct {
	Project            *models.Project
	SkippedAttachments []string
}

// Update applies a partial project update.
func (s *ProjectService) Update(actor authz.Actor, id uint64, input UpdateProjectInput) (*UpdateResult, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionUpdate, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("not allowed to update this project")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Requirements != nil {
		project.Requirements = *input.Requirements
	}
	if input.Timeline != nil {
		project.Timeline = *input.Timeline
	}
	if input.Status != nil {
		status := models.ProjectStatus(*input.Status)
		if !models.IsValidProjectStatus(status) {
			return nil, apperr.Validation("unknown project status")
		}
		// The patch only moves a project within the delivery band. Entering
		// it goes through Approve or the quotation handshake, and leaving it
		// goes through Reject.
		if !progressibleStatus(status) {
			return nil, apperr.InvalidState(fmt.Sprintf("status %s is set by its lifecycle operation", status))
		}
		if !progressibleStatus(project.Status) {
			return nil, apperr.InvalidState("project has not entered delivery yet")
		}
		project.Status = status
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if input.DesignerIDs != nil {
		if err := s.SetDesigners(actor, id, *input.DesignerIDs); err != nil {
			return nil, err
		}
	}

	var skipped []string
	if input.Attachments != nil {
		skipped, err = s.ReplaceAttachments(actor, id, *input.Attachments)
		if err != nil {
			return nil, err
		}
	}

	project, err = s.projectRepo.FindByID(id, projectPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}
	return &UpdateResult{Project: project, SkippedAttachments: skipped}, nil
}

// Delete removes a project and everything it owns.
func (s *ProjectService) Delete(actor authz.Actor, id uint64) error {
	project, err := s.findProject(id)
	if err != nil {
		return err
	}
	if !authz.Can(actor, authz.ActionDelete, projectResource(authz.KindProject, project)) {
		return apperr.PermissionDenied("not allowed to delete this project")
	}
	if err := s.projectRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// Approve moves a residential project from inactive to planning. Commercial
// projects must go through the quotation handshake; approving one leaves the
// status untouched.
func (s *ProjectService) Approve(actor authz.Actor, id uint64) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionApprove, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("not allowed to approve this project")
	}
	if project.Status != models.ProjectStatusInactive {
		return nil, apperr.InvalidState("project is not awaiting approval")
	}

	if project.ProjectType == models.ProjectTypeResidential {
		project.Status = models.ProjectStatusPlanning
		if err := s.projectRepo.Update(project); err != nil {
			return nil, fmt.Errorf("failed to approve project: %w", err)
		}
	}

	return project, nil
}

// Reject declines a project at intake, recording the feedback.
func (s *ProjectService) Reject(actor authz.Actor, id uint64, feedback string) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionReject, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("not allowed to reject this project")
	}
	if project.Status != models.ProjectStatusInactive {
		return nil, apperr.InvalidState("project is not awaiting approval")
	}

	project.Status = models.ProjectStatusRejected
	project.FeedbackMessage = feedback
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to reject project: %w", err)
	}
	return project, nil
}

// SubmitQuotation sends a commercial project's quotation to its client and
// moves it to quotation_submitted.
func (s *ProjectService) SubmitQuotation(actor authz.Actor, id uint64, message, fileName string) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionSubmitQuotation, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("not allowed to submit a quotation")
	}
	if project.ProjectType != models.ProjectTypeCommercial {
		return nil, apperr.InvalidState("quotations apply to commercial projects only")
	}
	if project.Status != models.ProjectStatusInactive {
		return nil, apperr.InvalidState("project is not awaiting a quotation")
	}
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Validation("quotation message is required")
	}

	project.QuotationMessage = message
	if fileName != "" {
		key := uuid.NewString() + strings.ToLower(path.Ext(fileName))
		project.QuotationFile = &key
	}
	project.Status = models.ProjectStatusQuotationSubmitted

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to submit quotation: %w", err)
	}

	s.notifyClient(project)
	return project, nil
}

// AcceptQuotation records the client's acceptance and moves the project to
// planning.
func (s *ProjectService) AcceptQuotation(actor authz.Actor, id uint64) (*models.Project, error) {
	project, err := s.checkQuotationDecision(actor, id)
	if err != nil {
		return nil, err
	}

	project.QuotationAccepted = true
	project.Status = models.ProjectStatusPlanning
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to accept quotation: %w", err)
	}
	return project, nil
}

// RejectQuotation records the client's feedback. The project stays in
// quotation_submitted pending a re-decision.
func (s *ProjectService) RejectQuotation(actor authz.Actor, id uint64, feedback string) (*models.Project, error) {
	project, err := s.checkQuotationDecision(actor, id)
	if err != nil {
		return nil, err
	}

	project.QuotationAccepted = false
	project.FeedbackMessage = feedback
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to reject quotation: %w", err)
	}
	return project, nil
}

// SetDesigners replaces the project's designer set wholesale. An empty list
// clears all designers.
func (s *ProjectService) SetDesigners(actor authz.Actor, id uint64, designerIDs []uint64) error {
	project, err := s.findProject(id)
	if err != nil {
		return err
	}
	if !authz.Can(actor, authz.ActionUpdate, projectResource(authz.KindProject, project)) {
		return apperr.PermissionDenied("not allowed to assign designers")
	}
	if err := s.validateDesigners(designerIDs); err != nil {
		return err
	}
	if err := s.projectRepo.ReplaceDesigners(id, uniqueIDs(designerIDs)); err != nil {
		return fmt.Errorf("failed to replace designers: %w", err)
	}
	return nil
}

// ReplaceAttachments replaces the project's attachment set wholesale. Entries
// that fail to decode are skipped and reported back; valid entries still
// persist.
func (s *ProjectService) ReplaceAttachments(actor authz.Actor, id uint64, inputs []AttachmentInput) ([]string, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionUpdate, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("not allowed to replace attachments")
	}

	attachments := make([]models.ProjectAttachment, 0, len(inputs))
	var skipped []string
	for _, in := range inputs {
		content, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil || in.Name == "" {
			skipped = append(skipped, in.Name)
			continue
		}
		attachments = append(attachments, models.ProjectAttachment{
			ProjectID:    id,
			Name:         in.Name,
			ObjectKey:    uuid.NewString() + strings.ToLower(path.Ext(in.Name)),
			Content:      content,
			Size:         int64(len(content)),
			ContentType:  in.ContentType,
			UploadedByID: actor.ID,
		})
	}

	if err := s.projectRepo.ReplaceAttachments(id, attachments); err != nil {
		return nil, fmt.Errorf("failed to replace attachments: %w", err)
	}
	return skipped, nil
}

// ListUpdates returns the project's activity log, newest first.
func (s *ProjectService) ListUpdates(actor authz.Actor, projectID uint64) ([]models.ProjectUpdate, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionView, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("not allowed to view this project")
	}

	updates, err := s.projectRepo.ListUpdates(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list updates: %w", err)
	}
	return updates, nil
}

// CreateUpdateInput represents a new activity log entry.
type CreateUpdateInput struct {
	Type        string
	Title       string
	Description string
	FileName    string
	FileSize    *int64
	FileType    string
}

// CreateUpdate appends an activity entry to the project's log.
func (s *ProjectService) CreateUpdate(actor authz.Actor, projectID uint64, input CreateUpdateInput) (*models.ProjectUpdate, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionPostUpdate, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("not allowed to post updates to this project")
	}

	updateType := models.UpdateType(input.Type)
	if !models.IsValidUpdateType(updateType) {
		return nil, apperr.Validation("unknown update type")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("title is required")
	}

	update := &models.ProjectUpdate{
		ProjectID:   projectID,
		UserID:      actor.ID,
		Type:        updateType,
		Title:       input.Title,
		Description: input.Description,
		FileName:    input.FileName,
		FileSize:    input.FileSize,
		FileType:    input.FileType,
	}
	if err := s.projectRepo.CreateUpdate(update); err != nil {
		return nil, fmt.Errorf("failed to create update: %w", err)
	}
	return update, nil
}

// checkQuotationDecision loads the project and verifies the shared
// preconditions for the client's accept/reject decision.
func (s *ProjectService) checkQuotationDecision(actor authz.Actor, id uint64) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionDecideQuotation, projectResource(authz.KindProject, project)) {
		return nil, apperr.PermissionDenied("only the project's client can decide on a quotation")
	}
	if project.ProjectType != models.ProjectTypeCommercial {
		return nil, apperr.InvalidState("quotations apply to commercial projects only")
	}
	if project.Status != models.ProjectStatusQuotationSubmitted || project.QuotationMessage == "" {
		return nil, apperr.InvalidState("no quotation has been submitted for this project")
	}
	return project, nil
}

// notifyClient emails the project's client about a submitted quotation.
// Best-effort: a mail failure is logged, never surfaced to the transition.
func (s *ProjectService) notifyClient(project *models.Project) {
	client, err := s.userRepo.FindByID(project.ClientID)
	if err != nil {
		s.logger.Warn("quotation notification skipped",
			zap.Uint64("project_id", project.ID),
			zap.Error(err),
		)
		return
	}

	subject, body := mailer.QuotationEmail(client.FullName(), project.Name)
	if err := s.mail.Send(client.Email, subject, body); err != nil {
		s.logger.Warn("quotation notification failed",
			zap.Uint64("project_id", project.ID),
			zap.String("client_email", client.Email),
			zap.Error(err),
		)
	}
}

func (s *ProjectService) validateDesigners(designerIDs []uint64) error {
	ids := uniqueIDs(designerIDs)
	if len(ids) == 0 {
		return nil
	}
	count, err := s.userRepo.CountByRoles(ids, models.DesignerRoles)
	if err != nil {
		return fmt.Errorf("failed to verify designers: %w", err)
	}
	if int(count) != len(ids) {
		return apperr.Validation("one or more designers do not exist or lack a designer role")
	}
	return nil
}

// progressibleStatus reports whether a status belongs to the delivery band
// that managers advance freely, as opposed to the intake statuses owned by
// Approve, Reject, and the quotation handshake.
func progressibleStatus(status models.ProjectStatus) bool {
	switch status {
	case models.ProjectStatusPlanning, models.ProjectStatusInProgress,
		models.ProjectStatusReview, models.ProjectStatusCompleted:
		return true
	}
	return false
}

func (s *ProjectService) findProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, projectPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// uniqueIDs removes duplicate values while preserving order.
func uniqueIDs(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))
	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
