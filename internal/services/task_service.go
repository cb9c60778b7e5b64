package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/atelierhq/atelier-api/internal/apperr"
	"github.com/atelierhq/atelier-api/internal/authz"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
)

// TaskService owns per-project task tracking.
type TaskService struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, notifications *NotificationService) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// taskResource builds the policy resource for a task in its project.
func taskResource(project *models.Project, task *models.Task) authz.Resource {
	res := projectResource(authz.KindTask, project)
	if task != nil && task.AssigneeID != nil {
		res.AssigneeID = *task.AssigneeID
	}
	return res
}

// ListByProject returns all tasks of a project the actor participates in.
func (s *TaskService) ListByProject(actor authz.Actor, projectID uint64) ([]models.Task, error) {
	project, err := s.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionList, taskResource(project, nil)) {
		return nil, apperr.PermissionDenied("not allowed to view this project's tasks")
	}

	tasks, err := s.taskRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns a single task.
func (s *TaskService) Get(actor authz.Actor, id uint64) (*models.Task, error) {
	task, project, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionView, taskResource(project, task)) {
		return nil, apperr.PermissionDenied("not allowed to view this task")
	}
	return task, nil
}

// CreateTaskInput represents a new task.
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	Priority    string
	AssigneeID  *uint64
	DueDate     *time.Time
}

// Create opens a task on the project. Only the project's manager and admins
// may create tasks; the assignee must be one of the project's designers.
func (s *TaskService) Create(actor authz.Actor, input CreateTaskInput) (*models.Task, error) {
	project, err := s.loadProject(input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionCreate, taskResource(project, nil)) {
		return nil, apperr.PermissionDenied("not allowed to create tasks on this project")
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("title is required")
	}

	priority := models.TaskPriority(input.Priority)
	if input.Priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.IsValidTaskPriority(priority) {
		return nil, apperr.Validation("unknown task priority")
	}

	if input.AssigneeID != nil {
		if err := s.validateAssignee(project, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
		CreatedByID: actor.ID,
		DueDate:     input.DueDate,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssigneeID != nil {
		if sender, err := s.userRepo.FindByID(actor.ID); err == nil {
			s.notifications.TaskAssigned(task, project, sender)
		}
	}
	return s.taskRepo.FindByID(task.ID, "Assignee", "CreatedBy")
}

// UpdateTaskInput is the allow-listed patch for tasks.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssigneeID    *uint64
	ClearAssignee bool
	DueDate       *time.Time
}

// Update applies a partial task update. The project's manager edits anything;
// the assignee may move their own task through the board.
func (s *TaskService) Update(actor authz.Actor, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, project, err := s.loadTask(id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(actor, authz.ActionUpdate, taskResource(project, task)) {
		return nil, apperr.PermissionDenied("not allowed to update this task")
	}

	// Assignees only get to move the task, not re-scope or re-assign it.
	assigneeOnly := !actor.Superuser &&
		actor.Role != models.RoleAdmin &&
		actor.ID != project.ManagerID
	if assigneeOnly && (input.Title != nil || input.Description != nil ||
		input.Priority != nil || input.AssigneeID != nil || input.ClearAssignee || input.DueDate != nil) {
		return nil, apperr.PermissionDenied("assignees may only change the task status")
	}

	prevStatus := task.Status
	prevAssignee := task.AssigneeID

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !models.IsValidTaskStatus(status) {
			return nil, apperr.Validation("unknown task status")
		}
		task.Status = status
	}
	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !models.IsValidTaskPriority(priority) {
			return nil, apperr.Validation("unknown task priority")
		}
		task.Priority = priority
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if err := s.validateAssignee(project, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if sender, err := s.userRepo.FindByID(actor.ID); err == nil {
		reassigned := task.AssigneeID != nil &&
			(prevAssignee == nil || *prevAssignee != *task.AssigneeID)
		if reassigned {
			s.notifications.TaskAssigned(task, project, sender)
		}
		if task.Status != prevStatus {
			switch task.Status {
			case models.TaskStatusReview:
				s.notifications.TaskReview(task, project, sender)
			case models.TaskStatusDone:
				s.notifications.TaskCompleted(task, project, sender)
			}
		}
	}
	return s.taskRepo.FindByID(task.ID, "Assignee", "CreatedBy")
}

// validateAssignee checks that the candidate is a designer assigned to the
// project.
func (s *TaskService) validateAssignee(project *models.Project, assigneeID uint64) error {
	for _, id := range project.DesignerIDs() {
		if id == assigneeID {
			return nil
		}
	}
	return apperr.Validation("assignee must be a designer on the project")
}

func (s *TaskService) loadProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, "Designers")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *TaskService) loadTask(id uint64) (*models.Task, *models.Project, error) {
	task, err := s.taskRepo.FindByID(id, "Assignee", "CreatedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("task not found")
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}
	project, err := s.loadProject(task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return task, project, nil
}
