package models

import "time"

// Role is a viewer privilege level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsElevated reports whether the role may act on posts it does not own.
func (r Role) IsElevated() bool {
	return r == RoleAdmin
}

// User is the public profile subset the board reads. Accounts are managed elsewhere.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Nickname       string    `gorm:"not null" json:"nickname"`
	ImageURL       string    `json:"image_url"`
	DevcourseName  string    `json:"devcourse_name"`
	DevcourseBatch string    `json:"devcourse_batch"`
	Role           Role      `gorm:"type:varchar(16);not null;default:USER" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Viewer identifies the caller of a service operation. ID 0 is anonymous.
type Viewer struct {
	ID   uint
	Role Role
}

func (v Viewer) IsAnonymous() bool {
	return v.ID == 0
}
