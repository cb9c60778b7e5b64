package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/atelier-api/internal/dto"
	apierrors "github.com/atelierhq/atelier-api/internal/errors"
	"github.com/atelierhq/atelier-api/internal/middleware"
	"github.com/atelierhq/atelier-api/internal/services"
)

// TaskHandler coordinates task tracking HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListByProject returns all tasks of a project.
func (h *TaskHandler) ListByProject(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	tasks, err := h.taskService.ListByProject(actor, projectID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	taskDTOs := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		taskDTOs[i] = dto.ToTaskDTO(task)
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": taskDTOs,
	})
}

// Create opens a task on a project.
func (h *TaskHandler) Create(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	type createTaskRequest struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		Priority    string  `json:"priority"`
		AssigneeID  *uint64 `json:"assignee_id"`
		DueDate     string  `json:"due_date"`
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	dueDate, ok := parseDate(req.DueDate)
	if !ok {
		apierrors.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	task, err := h.taskService.Create(actor, services.CreateTaskInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     dueDate,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// Get returns a single task.
func (h *TaskHandler) Get(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.Get(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// Update applies a partial task update.
func (h *TaskHandler) Update(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type updateTaskRequest struct {
		Title         *string `json:"title"`
		Description   *string `json:"description"`
		Status        *string `json:"status"`
		Priority      *string `json:"priority"`
		AssigneeID    *uint64 `json:"assignee_id"`
		ClearAssignee bool    `json:"clear_assignee"`
		DueDate       *string `json:"due_date"`
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
	}
	if req.DueDate != nil {
		dueDate, ok := parseDate(*req.DueDate)
		if !ok {
			apierrors.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		input.DueDate = dueDate
	}

	task, err := h.taskService.Update(actor, id, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}
