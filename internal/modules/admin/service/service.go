package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/modules/admin/dto"
	assignmentRepo "anoa.com/educonnect/internal/modules/assignment/repository"
	courseRepo "anoa.com/educonnect/internal/modules/course/repository"
	enrollmentRepo "anoa.com/educonnect/internal/modules/enrollment/repository"
	issueRepo "anoa.com/educonnect/internal/modules/issue/repository"
	materialRepo "anoa.com/educonnect/internal/modules/material/repository"
	submissionRepo "anoa.com/educonnect/internal/modules/submission/repository"
	userRepo "anoa.com/educonnect/internal/modules/user/repository"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const recentLimit = 5

type AdminService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)

	ListUsers(ctx context.Context, role string) ([]*entity.User, error)
	CreateUser(ctx context.Context, input dto.CreateUserInput, picture *commonDto.UploadedFile) (*entity.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input dto.UpdateUserInput, picture *commonDto.UploadedFile) (*entity.User, error)
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error

	ListCourses(ctx context.Context) ([]dto.CourseListItem, error)
	CreateCourse(ctx context.Context, input dto.CourseInput) (*entity.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, input dto.CourseInput) (*entity.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
}

type adminService struct {
	userRepo       userRepo.UserRepository
	courseRepo     courseRepo.CourseRepository
	enrollmentRepo enrollmentRepo.EnrollmentRepository
	assignmentRepo assignmentRepo.AssignmentRepository
	submissionRepo submissionRepo.SubmissionRepository
	materialRepo   materialRepo.MaterialRepository
	issueRepo      issueRepo.IssueRepository
	storage        storage.FileStorage
}

func NewAdminService(
	userRepo userRepo.UserRepository,
	courseRepo courseRepo.CourseRepository,
	enrollmentRepo enrollmentRepo.EnrollmentRepository,
	assignmentRepo assignmentRepo.AssignmentRepository,
	submissionRepo submissionRepo.SubmissionRepository,
	materialRepo materialRepo.MaterialRepository,
	issueRepo issueRepo.IssueRepository,
	fileStorage storage.FileStorage,
) AdminService {
	return &adminService{
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		materialRepo:   materialRepo,
		issueRepo:      issueRepo,
		storage:        fileStorage,
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, apperror.ErrNotFound)
	}
	return err
}

func (s *adminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var stats dto.DashboardStats
	var err error

	if stats.Students, err = s.userRepo.CountByRole(ctx, entity.RoleStudent); err != nil {
		return nil, err
	}
	if stats.Teachers, err = s.userRepo.CountByRole(ctx, entity.RoleTeacher); err != nil {
		return nil, err
	}
	if stats.Courses, err = s.courseRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Assignments, err = s.assignmentRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Submissions, err = s.submissionRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.OpenIssues, err = s.issueRepo.CountByStatus(ctx, entity.IssueOpen); err != nil {
		return nil, err
	}

	recentUsers, err := s.userRepo.FindRecent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	recentEnrollments, err := s.enrollmentRepo.FindRecent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	courseStats, err := s.courseRepo.Summaries(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Stats:             stats,
		RecentUsers:       recentUsers,
		RecentEnrollments: recentEnrollments,
		CourseStats:       courseStats,
	}, nil
}
