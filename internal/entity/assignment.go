package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultMaxMarks = 100

type Assignment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	TeacherID   uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"not null;index" json:"due_date"`
	MaxMarks    int       `gorm:"not null" json:"max_marks"`
	FilePath    *string   `gorm:"type:text" json:"file_path,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Course  Course `gorm:"foreignKey:CourseID" json:"course"`
	Teacher User   `gorm:"foreignKey:TeacherID" json:"teacher"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.MaxMarks == 0 {
		a.MaxMarks = DefaultMaxMarks
	}
	return nil
}

const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// Submission is unique per (assignment, student).
type Submission struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_submission_student" json:"assignment_id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_submission_student;index" json:"student_id"`
	FilePath     string     `gorm:"type:text;not null" json:"file_path"`
	Notes        string     `gorm:"type:text" json:"notes"`
	Marks        *float64   `json:"marks"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	Status       string     `gorm:"size:20;not null;index" json:"status"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`

	Assignment Assignment `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"assignment"`
	Student    User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SubmissionSubmitted
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now()
	}
	return nil
}

func (s *Submission) IsGraded() bool {
	return s.Status == SubmissionGraded && s.Marks != nil
}
