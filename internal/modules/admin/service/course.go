package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/modules/admin/dto"
	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/sanitize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *adminService) ListCourses(ctx context.Context) ([]dto.CourseListItem, error) {
	summaries, err := s.courseRepo.Summaries(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CourseListItem, len(summaries))
	for i, summary := range summaries {
		items[i] = dto.CourseListItem{
			CourseSummary: summary,
			HasTeacher:    summary.AssignmentCount > 0,
		}
	}
	return items, nil
}

func (s *adminService) checkCourseName(ctx context.Context, self uuid.UUID, name string) error {
	existing, err := s.courseRepo.FindByName(ctx, name)
	if err == nil && existing.ID != self {
		return fmt.Errorf("course name already exists: %w", apperror.ErrConflict)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *adminService) CreateCourse(ctx context.Context, input dto.CourseInput) (*entity.Course, error) {
	course := &entity.Course{
		Name:        strings.TrimSpace(input.Name),
		Description: sanitize.Text(input.Description),
	}
	if course.Name == "" {
		return nil, fmt.Errorf("course name is required: %w", apperror.ErrInvalidInput)
	}
	if err := s.checkCourseName(ctx, uuid.Nil, course.Name); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *adminService) UpdateCourse(ctx context.Context, id uuid.UUID, input dto.CourseInput) (*entity.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "course")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("course name is required: %w", apperror.ErrInvalidInput)
	}
	if err := s.checkCourseName(ctx, course.ID, name); err != nil {
		return nil, err
	}

	course.Name = name
	course.Description = sanitize.Text(input.Description)
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse refuses while the course still has enrollments, assignments
// or materials.
func (s *adminService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.courseRepo.FindByID(ctx, id); err != nil {
		return notFound(err, "course")
	}

	enrollments, err := s.enrollmentRepo.CountByCourse(ctx, id)
	if err != nil {
		return err
	}
	assignments, err := s.assignmentRepo.CountByCourse(ctx, id)
	if err != nil {
		return err
	}
	materials, err := s.materialRepo.CountByCourse(ctx, id)
	if err != nil {
		return err
	}

	if enrollments > 0 || assignments > 0 || materials > 0 {
		return fmt.Errorf("course has %d enrollments, %d assignments and %d materials: %w",
			enrollments, assignments, materials, apperror.ErrConflict)
	}

	return s.courseRepo.Delete(ctx, id)
}
