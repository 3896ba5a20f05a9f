package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const FileTypeLink = "link"

// LectureMaterial is either a stored file or, when FileType is "link", an
// external URL kept in FilePath.
type LectureMaterial struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	TeacherID   uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	FilePath    string    `gorm:"type:text;not null" json:"file_path"`
	FileType    string    `gorm:"size:30;not null" json:"file_type"`
	WeekNumber  *int      `json:"week_number,omitempty"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Course  Course `gorm:"foreignKey:CourseID" json:"course"`
	Teacher User   `gorm:"foreignKey:TeacherID" json:"teacher"`
}

func (m *LectureMaterial) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *LectureMaterial) IsLink() bool {
	return m.FileType == FileTypeLink
}
