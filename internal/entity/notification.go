package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationAssignment   = "assignment"
	NotificationGrade        = "grade"
	NotificationMaterial     = "material"
	NotificationAnnouncement = "announcement"
	NotificationReminder     = "reminder"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Type      string     `gorm:"size:30;not null" json:"type"`
	RelatedID *uuid.UUID `gorm:"type:uuid" json:"related_id,omitempty"`
	IsRead    bool       `gorm:"not null;index" json:"is_read"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
