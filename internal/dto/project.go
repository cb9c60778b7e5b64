package dto

import (
	"time"

	"github.com/atelierhq/atelier-api/internal/models"
)

// AttachmentDTO represents attachment metadata in API responses. Content is
// never inlined in project payloads.
type AttachmentDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	ObjectKey   string    `json:"object_key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID           uint64               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Requirements string               `json:"requirements"`
	Timeline     string               `json:"timeline"`
	ProjectType  models.ProjectType   `json:"project_type"`
	Status       models.ProjectStatus `json:"status"`

	QuotationMessage  string  `json:"quotation_message"`
	QuotationFile     *string `json:"quotation_file"`
	QuotationAccepted bool    `json:"quotation_accepted"`
	FeedbackMessage   string  `json:"feedback_message"`

	ClientID  uint64 `json:"client_id"`
	ManagerID uint64 `json:"manager_id"`

	Client      *UserDTO        `json:"client,omitempty"`
	Manager     *UserDTO        `json:"manager,omitempty"`
	Designers   []UserDTO       `json:"designers"`
	Attachments []AttachmentDTO `json:"attachments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO `json:"projects"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	TotalPages int          `json:"total_pages"`
}

// ProjectUpdateDTO represents an activity log entry in API responses
type ProjectUpdateDTO struct {
	ID          uint64            `json:"id"`
	ProjectID   uint64            `json:"project_id"`
	Type        models.UpdateType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	FileName    string            `json:"file_name,omitempty"`
	FileSize    *int64            `json:"file_size,omitempty"`
	FileType    string            `json:"file_type,omitempty"`
	User        *UserDTO          `json:"user,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ToAttachmentDTO converts a ProjectAttachment model to AttachmentDTO
func ToAttachmentDTO(a models.ProjectAttachment) AttachmentDTO {
	return AttachmentDTO{
		ID:          a.ID,
		Name:        a.Name,
		ObjectKey:   a.ObjectKey,
		Size:        a.Size,
		ContentType: a.ContentType,
		UploadedAt:  a.UploadedAt,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:                project.ID,
		Name:              project.Name,
		Description:       project.Description,
		Requirements:      project.Requirements,
		Timeline:          project.Timeline,
		ProjectType:       project.ProjectType,
		Status:            project.Status,
		QuotationMessage:  project.QuotationMessage,
		QuotationFile:     project.QuotationFile,
		QuotationAccepted: project.QuotationAccepted,
		FeedbackMessage:   project.FeedbackMessage,
		ClientID:          project.ClientID,
		ManagerID:         project.ManagerID,
		Designers:         []UserDTO{},
		Attachments:       []AttachmentDTO{},
		CreatedAt:         project.CreatedAt,
		UpdatedAt:         project.UpdatedAt,
	}

	if project.Client.ID != 0 {
		client := ToUserDTO(project.Client)
		dto.Client = &client
	}
	if project.Manager.ID != 0 {
		manager := ToUserDTO(project.Manager)
		dto.Manager = &manager
	}
	for _, designer := range project.Designers {
		dto.Designers = append(dto.Designers, ToUserDTO(designer))
	}
	for _, attachment := range project.Attachments {
		dto.Attachments = append(dto.Attachments, ToAttachmentDTO(attachment))
	}
	return dto
}

// ToProjectUpdateDTO converts a ProjectUpdate model to ProjectUpdateDTO
func ToProjectUpdateDTO(update models.ProjectUpdate) ProjectUpdateDTO {
	dto := ProjectUpdateDTO{
		ID:          update.ID,
		ProjectID:   update.ProjectID,
		Type:        update.Type,
		Title:       update.Title,
		Description: update.Description,
		FileName:    update.FileName,
		FileSize:    update.FileSize,
		FileType:    update.FileType,
		CreatedAt:   update.CreatedAt,
	}
	if update.User.ID != 0 {
		user := ToUserDTO(update.User)
		dto.User = &user
	}
	return dto
}
