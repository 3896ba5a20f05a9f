package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

const (
	EnrollmentActive  = "active"
	EnrollmentDropped = "dropped"
)

// Enrollment links a student to a course. The partial unique index allows
// any number of dropped rows but only one active row per pair.
type Enrollment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_enrollment_active,where:status = 'active'" json:"user_id"`
	CourseID   uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_enrollment_active,where:status = 'active'" json:"course_id"`
	Status     string     `gorm:"size:20;not null;index" json:"status"`
	EnrolledBy *uuid.UUID `gorm:"type:uuid" json:"enrolled_by,omitempty"`
	EnrolledAt time.Time  `gorm:"not null" json:"enrolled_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EnrollmentActive
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	return nil
}
