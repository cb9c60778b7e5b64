package repository

import (
	"github.com/atelierhq/atelier-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new account
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds an account by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds an account by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether an account with the email exists
func (r *GormUserRepository) EmailExists(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists all fields of the account
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes the account and applies relation policies in one transaction:
// client/manager projects cascade, task assignments nullify, authored chat
// messages cascade.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var projectIDs []uint64
		if err := tx.Model(&models.Project{}).
			Where("client_id = ? OR manager_id = ?", id, id).
			Pluck("id", &projectIDs).Error; err != nil {
			return err
		}

		for _, projectID := range projectIDs {
			if err := deleteProjectTx(tx, projectID); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Task{}).
			Where("assignee_id = ?", id).
			Update("assignee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ?", id, id).
			Delete(&models.IndividualChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM project_designers WHERE user_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}

// List retrieves accounts with role/visibility filtering, search, and pagination
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if filter.VisibleRoles != nil {
		if len(filter.VisibleRoles) == 0 {
			return []models.User{}, 0, nil
		}
		query = query.Where("role IN ?", filter.VisibleRoles)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR company_name LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	var users []models.User
	if err := listQuery.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CountByRoles counts users whose id is in ids and whose role is one of roles
func (r *GormUserRepository) CountByRoles(ids []uint64, roles []models.Role) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.User{}).
		Where("id IN ? AND role IN ?", ids, roles).
		Count(&count).Error
	return count, err
}

// FindLeastLoadedManager returns the active project manager with the fewest
// open (not completed, not rejected) projects, ties broken by lowest id.
func (r *GormUserRepository) FindLeastLoadedManager() (*models.User, error) {
	var user models.User
	err := r.db.Model(&models.User{}).
		Select("users.*").
		Joins(`LEFT JOIN projects ON projects.manager_id = users.id AND projects.status NOT IN ?`,
			[]models.ProjectStatus{models.ProjectStatusCompleted, models.ProjectStatusRejected}).
		Where("users.role = ? AND users.is_active = ?", models.RoleProjectManager, true).
		Group("users.id").
		Order("COUNT(projects.id) ASC, users.id ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
