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

// CourseSummary is a course with its live counts.
type CourseSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	StudentCount    int64     `json:"student_count"`
	AssignmentCount int64     `json:"assignment_count"`
}

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindByName(ctx context.Context, name string) (*entity.Course, error)
	FindAll(ctx context.Context) ([]*entity.Course, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Course, error)
	Summaries(ctx context.Context) ([]CourseSummary, error)
	Count(ctx context.Context) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("course name already exists: %w", apperror.ErrConflict)
	}
	return err
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return translate(r.db.WithContext(ctx).Create(course).Error)
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	return translate(r.db.WithContext(ctx).Save(course).Error)
}

// Delete removes the course and the announcements addressed to it.
func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&entity.Announcement{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Course{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil
	})
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByName(ctx context.Context, name string) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindAll(ctx context.Context) ([]*entity.Course, error) {
	var courses []*entity.Course
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Course, error) {
	courses := []*entity.Course{}
	if len(ids) == 0 {
		return courses, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Summaries(ctx context.Context) ([]CourseSummary, error) {
	query := `
		SELECT c.id, c.name, c.description,
			(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.status = ?) AS student_count,
			(SELECT COUNT(*) FROM assignments a WHERE a.course_id = c.id) AS assignment_count
		FROM courses c
		ORDER BY c.name ASC
	`

	var summaries []CourseSummary
	if err := r.db.WithContext(ctx).Raw(query, entity.EnrollmentActive).Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Course{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
