package model

// Role names seeded by the RBAC bootstrap.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// swagger:model User
type User struct {
	BaseModel
	Username     string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:256;not null" json:"-"`
	FirstName    string `gorm:"size:64" json:"firstName"`
	LastName     string `gorm:"size:64" json:"lastName"`
	IsActive     bool   `gorm:"default:true" json:"isActive"`

	Roles    []Role        `gorm:"many2many:user_roles" json:"roles,omitempty"`
	Progress *UserProgress `gorm:"foreignKey:UserID" json:"progress,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasRole reports whether one of the user's assigned roles matches name.
// Roles must be preloaded; an empty slice simply yields false.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// FullName falls back to the username when profile names are not set.
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// swagger:model Role
type Role struct {
	BaseModel
	Name        string `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:256" json:"description"`

	Permissions []Permission `gorm:"foreignKey:RoleID" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_roles" json:"-"`
}

func (Role) TableName() string {
	return "roles"
}

// Permission is a (resource, action) capability owned by exactly one role.
// swagger:model Permission
type Permission struct {
	BaseModel
	Name     string `gorm:"size:64;not null" json:"name"`
	Resource string `gorm:"size:64;not null" json:"resource"`
	Action   string `gorm:"size:32;not null" json:"action"`
	RoleID   uint   `gorm:"index;not null" json:"roleId"`
}

func (Permission) TableName() string {
	return "permissions"
}
