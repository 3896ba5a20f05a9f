package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User signs in with a username (admins, teachers) or a student number
// (students). Both columns are nullable and unique.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username      *string   `gorm:"size:80;uniqueIndex" json:"username,omitempty"`
	StudentNumber *string   `gorm:"size:20;uniqueIndex" json:"student_number,omitempty"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	RoleID        *uint     `json:"role_id"`
	Role          Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	ProfilePic    *string   `gorm:"type:text" json:"profile_pic,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) HasRole(name string) bool {
	return u.Role.Name == name
}

// LoginName is the credential the user signs in with.
func (u *User) LoginName() string {
	if u.StudentNumber != nil && *u.StudentNumber != "" {
		return *u.StudentNumber
	}
	if u.Username != nil {
		return *u.Username
	}
	return ""
}
