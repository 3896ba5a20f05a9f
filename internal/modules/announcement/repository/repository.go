package repository

import (
	"context"

	"anoa.com/educonnect/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *entity.Announcement) error
	FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.Announcement, error)
	// FindVisible returns announcements for the given courses plus the ones
	// addressed to everyone.
	FindVisible(ctx context.Context, courseIDs []uuid.UUID, limit int) ([]*entity.Announcement, error)
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, announcement *entity.Announcement) error {
	return r.db.WithContext(ctx).Omit("Teacher", "Course").Create(announcement).Error
}

func (r *announcementRepository) FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.Announcement, error) {
	var announcements []*entity.Announcement
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *announcementRepository) FindVisible(ctx context.Context, courseIDs []uuid.UUID, limit int) ([]*entity.Announcement, error) {
	q := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Course")
	if len(courseIDs) > 0 {
		q = q.Where("course_id IS NULL OR course_id IN ?", courseIDs)
	} else {
		q = q.Where("course_id IS NULL")
	}

	var announcements []*entity.Announcement
	if err := q.Order("created_at DESC").Limit(limit).Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}
