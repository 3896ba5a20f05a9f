package repository

import (
	"context"
	"sort"

	"anoa.com/educonnect/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *entity.LectureMaterial) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LectureMaterial, error)
	FindByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) ([]*entity.LectureMaterial, error)
	ExistsForTeacherCourse(ctx context.Context, teacherID, courseID uuid.UUID) (bool, error)
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type materialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, material *entity.LectureMaterial) error {
	return r.db.WithContext(ctx).Omit("Course", "Teacher").Create(material).Error
}

func (r *materialRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LectureMaterial, error) {
	var material entity.LectureMaterial
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("id = ?", id).
		First(&material).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

// FindByCourse orders by week number, materials without a week last, then
// newest first within a week.
func (r *materialRepository) FindByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) ([]*entity.LectureMaterial, error) {
	q := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("course_id = ?", courseID)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}

	var materials []*entity.LectureMaterial
	if err := q.Order("created_at DESC").Find(&materials).Error; err != nil {
		return nil, err
	}

	// NULL ordering differs between postgres and sqlite
	sort.SliceStable(materials, func(i, j int) bool {
		wi, wj := materials[i].WeekNumber, materials[j].WeekNumber
		switch {
		case wi == nil:
			return false
		case wj == nil:
			return true
		default:
			return *wi < *wj
		}
	})
	return materials, nil
}

func (r *materialRepository) ExistsForTeacherCourse(ctx context.Context, teacherID, courseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.LectureMaterial{}).
		Where("teacher_id = ? AND course_id = ?", teacherID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *materialRepository) CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.LectureMaterial{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *materialRepository) CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.LectureMaterial{}).
		Where("teacher_id = ?", teacherID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *materialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.LectureMaterial{}, "id = ?", id).Error
}
