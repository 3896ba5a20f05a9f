package repository

import (
	"context"
	"time"

	"anoa.com/educonnect/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *entity.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error)
	FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.Assignment, error)
	FindByTeacherAndCourse(ctx context.Context, teacherID, courseID uuid.UUID) ([]*entity.Assignment, error)
	FindByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]*entity.Assignment, error)
	FindDueBetween(ctx context.Context, from, to time.Time) ([]*entity.Assignment, error)
	ExistsForTeacherCourse(ctx context.Context, teacherID, courseID uuid.UUID) (bool, error)
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *entity.Assignment) error {
	return r.db.WithContext(ctx).Omit("Course", "Teacher").Create(assignment).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error) {
	var assignment entity.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("id = ?", id).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*entity.Assignment, error) {
	var assignments []*entity.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) FindByTeacherAndCourse(ctx context.Context, teacherID, courseID uuid.UUID) ([]*entity.Assignment, error) {
	var assignments []*entity.Assignment
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND course_id = ?", teacherID, courseID).
		Order("due_date ASC").
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) FindByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]*entity.Assignment, error) {
	assignments := []*entity.Assignment{}
	if len(courseIDs) == 0 {
		return assignments, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id IN ?", courseIDs).
		Order("due_date ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindDueBetween returns assignments with from <= due_date <= to.
func (r *assignmentRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]*entity.Assignment, error) {
	var assignments []*entity.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("due_date >= ? AND due_date <= ?", from, to).
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) ExistsForTeacherCourse(ctx context.Context, teacherID, courseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Assignment{}).
		Where("teacher_id = ? AND course_id = ?", teacherID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *assignmentRepository) CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Assignment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *assignmentRepository) CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Assignment{}).
		Where("teacher_id = ?", teacherID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *assignmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Assignment{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
