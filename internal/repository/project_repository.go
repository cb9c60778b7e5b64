package repository

import (
	"github.com/atelierhq/atelier-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// List retrieves projects with scoping, status filtering, and pagination
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	query := r.db.Model(&models.Project{})

	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("projects.client_id = ?", *filter.ClientID)
	}
	if filter.ManagerID != nil {
		query = query.Where("projects.manager_id = ?", *filter.ManagerID)
	}
	if filter.DesignerID != nil {
		designerSubQuery := r.db.Table("project_designers").
			Select("1").
			Where("project_designers.project_id = projects.id").
			Where("project_designers.user_id = ?", *filter.DesignerID)
		query = query.Where("EXISTS (?)", designerSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("projects.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	var projects []models.Project
	if err := listQuery.
		Preload("Client").
		Preload("Manager").
		Preload("Designers").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update persists all fields of the project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete removes the project and everything it owns in one transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return deleteProjectTx(tx, id)
	})
}

// deleteProjectTx removes a project's owned rows inside an existing
// transaction. Shared with account deletion, which cascades client and
// manager projects.
func deleteProjectTx(tx *gorm.DB, id uint64) error {
	if err := tx.Where("project_id = ?", id).Delete(&models.ProjectAttachment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_id = ?", id).Delete(&models.ProjectUpdate{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM project_designers WHERE project_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Project{}, id).Error
}

// ReplaceDesigners replaces the project's designer set wholesale
func (r *GormProjectRepository) ReplaceDesigners(projectID uint64, designerIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM project_designers WHERE project_id = ?", projectID).Error; err != nil {
			return err
		}
		for _, userID := range designerIDs {
			if err := tx.Exec(
				"INSERT INTO project_designers (project_id, user_id) VALUES (?, ?)",
				projectID, userID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceAttachments deletes all current attachments and creates the provided ones
func (r *GormProjectRepository) ReplaceAttachments(projectID uint64, attachments []models.ProjectAttachment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectAttachment{}).Error; err != nil {
			return err
		}
		if len(attachments) == 0 {
			return nil
		}
		return tx.Create(&attachments).Error
	})
}

// ListUpdates returns the project's activity log, newest first
func (r *GormProjectRepository) ListUpdates(projectID uint64) ([]models.ProjectUpdate, error) {
	var updates []models.ProjectUpdate
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

// CreateUpdate appends an activity log entry
func (r *GormProjectRepository) CreateUpdate(update *models.ProjectUpdate) error {
	return r.db.Create(update).Error
}
