package models

import "time"

type Role string

const (
	RoleAdmin                   Role = "admin"
	RoleProjectManager          Role = "project_manager"
	RoleAssistantProjectManager Role = "assistant_project_manager"
	RoleTeamHead                Role = "team_head"
	RoleTeamLead                Role = "team_lead"
	RoleSeniorDesigner          Role = "senior_designer"
	RoleDesigner                Role = "designer"
	RoleAutoCADDrafter          Role = "auto_cad_drafter"
	RoleHR                      Role = "hr"
	RoleAccountant              Role = "accountant"
	RoleMarketing               Role = "marketing"
	RoleSales                   Role = "sales"
	RoleDigitalMarketing        Role = "digital_marketing"
	RoleClient                  Role = "client"
)

// roleLabels maps each role to its human-readable name.
var roleLabels = map[Role]string{
	RoleAdmin:                   "Admin",
	RoleProjectManager:          "Project Manager",
	RoleAssistantProjectManager: "Assistant Project Manager",
	RoleTeamHead:                "Team Head",
	RoleTeamLead:                "Team Lead",
	RoleSeniorDesigner:          "Senior Designer",
	RoleDesigner:                "Designer",
	RoleAutoCADDrafter:          "Auto CAD Drafter",
	RoleHR:                      "HR",
	RoleAccountant:              "Accountant",
	RoleMarketing:               "Marketing",
	RoleSales:                   "Sales",
	RoleDigitalMarketing:        "Digital Marketing",
	RoleClient:                  "Client",
}

// AllRoles returns the closed role enumeration in declaration order.
func AllRoles() []Role {
	return []Role{
		RoleAdmin, RoleProjectManager, RoleAssistantProjectManager,
		RoleTeamHead, RoleTeamLead, RoleSeniorDesigner, RoleDesigner,
		RoleAutoCADDrafter, RoleHR, RoleAccountant, RoleMarketing,
		RoleSales, RoleDigitalMarketing, RoleClient,
	}
}

// IsValidRole reports whether r is part of the role enumeration.
func IsValidRole(r Role) bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the human-readable name for the role.
func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// DesignerRoles are the roles treated as designers for project assignment.
var DesignerRoles = []Role{RoleDesigner, RoleSeniorDesigner, RoleAutoCADDrafter}

type User struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`

	// Personal information
	FirstName   string     `gorm:"type:varchar(150)" json:"first_name"`
	LastName    string     `gorm:"type:varchar(150)" json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`

	// Contact information
	MobileNumber string  `gorm:"type:varchar(15)" json:"mobile_number"`
	Address      string  `gorm:"type:text" json:"address"`
	City         string  `gorm:"type:varchar(100)" json:"city"`
	State        string  `gorm:"type:varchar(100)" json:"state"`
	Country      string  `gorm:"type:varchar(100)" json:"country"`
	Pincode      string  `gorm:"type:varchar(10)" json:"pincode"`
	AadharNumber *string `gorm:"type:varchar(12)" json:"aadhar_number"`

	CompanyName string `gorm:"type:varchar(200)" json:"company_name"`

	// Employment details
	Role          Role       `gorm:"type:varchar(30);not null;default:'client'" json:"role"`
	DateOfJoining *time.Time `json:"date_of_joining"`
	DateOfExit    *time.Time `json:"date_of_exit"`

	ProfilePic  *string `gorm:"type:varchar(255)" json:"profile_pic"`
	IsActive    bool    `gorm:"not null;default:true" json:"is_active"`
	IsStaff     bool    `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool    `gorm:"not null;default:false" json:"is_superuser"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName falls back to whichever name parts exist, then the email.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsProjectManager includes the assistant role, which shares the manager capability set.
func (u *User) IsProjectManager() bool {
	return u.Role == RoleProjectManager || u.Role == RoleAssistantProjectManager
}

func (u *User) IsDesigner() bool {
	for _, r := range DesignerRoles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}
