package models

import "time"

type ProjectType string

const (
	ProjectTypeResidential ProjectType = "residential"
	ProjectTypeCommercial  ProjectType = "commercial"
)

// IsValidProjectType reports whether t is a known project type.
func IsValidProjectType(t ProjectType) bool {
	return t == ProjectTypeResidential || t == ProjectTypeCommercial
}

type ProjectStatus string

const (
	ProjectStatusInactive           ProjectStatus = "inactive"
	ProjectStatusPlanning           ProjectStatus = "planning"
	ProjectStatusInProgress         ProjectStatus = "in_progress"
	ProjectStatusReview             ProjectStatus = "review"
	ProjectStatusRejected           ProjectStatus = "rejected"
	ProjectStatusQuotationSubmitted ProjectStatus = "quotation_submitted"
	ProjectStatusCompleted          ProjectStatus = "completed"
)

// IsValidProjectStatus reports whether s is a known project status.
func IsValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusInactive, ProjectStatusPlanning, ProjectStatusInProgress,
		ProjectStatusReview, ProjectStatusRejected, ProjectStatusQuotationSubmitted,
		ProjectStatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID           uint64        `gorm:"primarykey" json:"id"`
	Name         string        `gorm:"type:varchar(200);not null" json:"name"`
	Description  string        `gorm:"type:text;not null" json:"description"`
	Requirements string        `gorm:"type:text" json:"requirements"`
	Timeline     string        `gorm:"type:varchar(100)" json:"timeline"`
	ProjectType  ProjectType   `gorm:"type:varchar(20);not null;default:'residential'" json:"project_type"`
	Status       ProjectStatus `gorm:"type:varchar(30);not null;default:'inactive'" json:"status"`

	// Quotation handshake
	QuotationMessage  string  `gorm:"type:text" json:"quotation_message"`
	QuotationFile     *string `gorm:"type:varchar(255)" json:"quotation_file"`
	QuotationAccepted bool    `gorm:"not null;default:false" json:"quotation_accepted"`
	FeedbackMessage   string  `gorm:"type:text" json:"feedback_message"`

	// Relationships
	ClientID  uint64 `gorm:"not null;index" json:"client_id"`
	ManagerID uint64 `gorm:"not null;index" json:"manager_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Client      User                `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Manager     User                `gorm:"foreignKey:ManagerID;constraint:OnDelete:CASCADE" json:"manager,omitempty"`
	Designers   []User              `gorm:"many2many:project_designers;" json:"designers,omitempty"`
	Attachments []ProjectAttachment `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Updates     []ProjectUpdate     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"updates,omitempty"`
	Tasks       []Task              `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// DesignerIDs returns the ids of the currently assigned designers.
func (p *Project) DesignerIDs() []uint64 {
	ids := make([]uint64, 0, len(p.Designers))
	for _, d := range p.Designers {
		ids = append(ids, d.ID)
	}
	return ids
}

type ProjectAttachment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	ProjectID    uint64    `gorm:"not null;index" json:"project_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	ObjectKey    string    `gorm:"type:varchar(64);not null" json:"object_key"`
	Content      []byte    `gorm:"type:bytea" json:"-"`
	Size         int64     `gorm:"not null" json:"size"`
	ContentType  string    `gorm:"type:varchar(100)" json:"content_type"`
	UploadedByID uint64    `gorm:"not null" json:"uploaded_by_id"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

type UpdateType string

const (
	UpdateTypeDesign  UpdateType = "design"
	UpdateTypeFile    UpdateType = "file"
	UpdateTypeComment UpdateType = "comment"
)

// IsValidUpdateType reports whether t is a known activity entry type.
func IsValidUpdateType(t UpdateType) bool {
	return t == UpdateTypeDesign || t == UpdateTypeFile || t == UpdateTypeComment
}

// ProjectUpdate is an append-only activity log entry; rows are never mutated.
type ProjectUpdate struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	ProjectID   uint64     `gorm:"not null;index" json:"project_id"`
	UserID      uint64     `gorm:"not null" json:"user_id"`
	Type        UpdateType `gorm:"type:varchar(20);not null" json:"type"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`

	FileName string `gorm:"type:varchar(255)" json:"file_name"`
	FileSize *int64 `json:"file_size"`
	FileType string `gorm:"type:varchar(100)" json:"file_type"`

	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
