package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error)
	FindActive(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error)
	IsActive(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	Drop(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context) ([]*entity.Enrollment, error)
	FindRecent(ctx context.Context, limit int) ([]*entity.Enrollment, error)
	ActiveStudentIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	ActiveStudents(ctx context.Context, courseID uuid.UUID) ([]*entity.User, error)
	ActiveCourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Create inserts the enrollment. A concurrent duplicate that slips past the
// service check is rejected by idx_enrollment_active.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Course").Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ErrDuplicateEnrollment
		}
		return err
	}
	return nil
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("id = ?", id).
		First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindActive(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, entity.EnrollmentActive).
		First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) IsActive(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, entity.EnrollmentActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *enrollmentRepository) Drop(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Where("id = ? AND status = ?", id, entity.EnrollmentActive).
		Update("status", entity.EnrollmentDropped)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("active enrollment not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (r *enrollmentRepository) FindAll(ctx context.Context) ([]*entity.Enrollment, error) {
	var enrollments []*entity.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Enrollment, error) {
	var enrollments []*entity.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Order("enrolled_at DESC").
		Limit(limit).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) ActiveStudentIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, entity.EnrollmentActive).
		Distinct().
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *enrollmentRepository) ActiveStudents(ctx context.Context, courseID uuid.UUID) ([]*entity.User, error) {
	var users []*entity.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.course_id = ? AND enrollments.status = ?", courseID, entity.EnrollmentActive).
		Order("users.name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *enrollmentRepository) ActiveCourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Where("user_id = ? AND status = ?", userID, entity.EnrollmentActive).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByCourse counts enrollments of any status.
func (r *enrollmentRepository) CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
