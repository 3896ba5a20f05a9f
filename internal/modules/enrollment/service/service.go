package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/educonnect/internal/entity"
	courseRepo "anoa.com/educonnect/internal/modules/course/repository"
	enrollmentRepo "anoa.com/educonnect/internal/modules/enrollment/repository"
	userRepo "anoa.com/educonnect/internal/modules/user/repository"
	"anoa.com/educonnect/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, enrolledBy, studentID, courseID uuid.UUID) (*entity.Enrollment, error)
	Drop(ctx context.Context, enrollmentID uuid.UUID) error
	List(ctx context.Context) ([]*entity.Enrollment, error)
}

type enrollmentService struct {
	repo       enrollmentRepo.EnrollmentRepository
	userRepo   userRepo.UserRepository
	courseRepo courseRepo.CourseRepository
}

func NewEnrollmentService(repo enrollmentRepo.EnrollmentRepository, userRepo userRepo.UserRepository, courseRepo courseRepo.CourseRepository) EnrollmentService {
	return &enrollmentService{
		repo:       repo,
		userRepo:   userRepo,
		courseRepo: courseRepo,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, enrolledBy, studentID, courseID uuid.UUID) (*entity.Enrollment, error) {
	student, err := s.userRepo.FindByID(ctx, studentID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !student.HasRole(entity.RoleStudent) {
		return nil, fmt.Errorf("only students can be enrolled: %w", apperror.ErrInvalidInput)
	}

	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	active, err := s.repo.IsActive(ctx, student.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, apperror.ErrDuplicateEnrollment
	}

	enrollment := &entity.Enrollment{
		UserID:     student.ID,
		CourseID:   course.ID,
		Status:     entity.EnrollmentActive,
		EnrolledBy: &enrolledBy,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	enrollment.User = *student
	enrollment.Course = *course
	return enrollment, nil
}

func (s *enrollmentService) Drop(ctx context.Context, enrollmentID uuid.UUID) error {
	return s.repo.Drop(ctx, enrollmentID)
}

func (s *enrollmentService) List(ctx context.Context) ([]*entity.Enrollment, error) {
	return s.repo.FindAll(ctx)
}
