package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/educonnect/internal/entity"
	announcementRepo "anoa.com/educonnect/internal/modules/announcement/repository"
	assignmentRepo "anoa.com/educonnect/internal/modules/assignment/repository"
	courseRepo "anoa.com/educonnect/internal/modules/course/repository"
	enrollmentRepo "anoa.com/educonnect/internal/modules/enrollment/repository"
	materialRepo "anoa.com/educonnect/internal/modules/material/repository"
	searchService "anoa.com/educonnect/internal/modules/search/service"
	"anoa.com/educonnect/internal/modules/student/dto"
	submissionRepo "anoa.com/educonnect/internal/modules/submission/repository"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dashboardAnnouncements = 5

type StudentService interface {
	Dashboard(ctx context.Context, studentID uuid.UUID) (*dto.DashboardResponse, error)
	Assignments(ctx context.Context, studentID uuid.UUID) ([]dto.AssignmentView, error)
	Grades(ctx context.Context, studentID uuid.UUID) ([]*entity.Submission, error)

	Submit(ctx context.Context, studentID, assignmentID uuid.UUID, input dto.SubmitInput, file *commonDto.UploadedFile) (*entity.Submission, error)
	DownloadSubmission(ctx context.Context, studentID, submissionID uuid.UUID) (*commonDto.FileDownload, error)
	DownloadAssignment(ctx context.Context, studentID, assignmentID uuid.UUID) (*commonDto.FileDownload, error)

	CourseMaterials(ctx context.Context, studentID, courseID uuid.UUID) (*dto.CourseMaterialsResponse, error)
	DownloadMaterial(ctx context.Context, studentID, materialID uuid.UUID) (*commonDto.FileDownload, error)
	SearchToken(ctx context.Context, studentID uuid.UUID) (*dto.SearchTokenResponse, error)
}

type studentService struct {
	assignmentRepo   assignmentRepo.AssignmentRepository
	submissionRepo   submissionRepo.SubmissionRepository
	materialRepo     materialRepo.MaterialRepository
	courseRepo       courseRepo.CourseRepository
	enrollmentRepo   enrollmentRepo.EnrollmentRepository
	announcementRepo announcementRepo.AnnouncementRepository
	storage          storage.FileStorage
	search           searchService.MeiliSearchService
}

func NewStudentService(
	assignmentRepo assignmentRepo.AssignmentRepository,
	submissionRepo submissionRepo.SubmissionRepository,
	materialRepo materialRepo.MaterialRepository,
	courseRepo courseRepo.CourseRepository,
	enrollmentRepo enrollmentRepo.EnrollmentRepository,
	announcementRepo announcementRepo.AnnouncementRepository,
	fileStorage storage.FileStorage,
	search searchService.MeiliSearchService,
) StudentService {
	return &studentService{
		assignmentRepo:   assignmentRepo,
		submissionRepo:   submissionRepo,
		materialRepo:     materialRepo,
		courseRepo:       courseRepo,
		enrollmentRepo:   enrollmentRepo,
		announcementRepo: announcementRepo,
		storage:          fileStorage,
		search:           search,
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, apperror.ErrNotFound)
	}
	return err
}

func (s *studentService) requireEnrollment(ctx context.Context, studentID, courseID uuid.UUID) error {
	ok, err := s.enrollmentRepo.IsActive(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrNotEnrolled
	}
	return nil
}

// scope returns the student's actively enrolled courses and their assignments.
func (s *studentService) scope(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, []*entity.Assignment, error) {
	courseIDs, err := s.enrollmentRepo.ActiveCourseIDs(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	assignments, err := s.assignmentRepo.FindByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, nil, err
	}
	return courseIDs, assignments, nil
}

func (s *studentService) submissionsByAssignment(ctx context.Context, studentID uuid.UUID) (map[uuid.UUID]*entity.Submission, error) {
	submissions, err := s.submissionRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	byAssignment := make(map[uuid.UUID]*entity.Submission, len(submissions))
	for _, sub := range submissions {
		byAssignment[sub.AssignmentID] = sub
	}
	return byAssignment, nil
}

func (s *studentService) Dashboard(ctx context.Context, studentID uuid.UUID) (*dto.DashboardResponse, error) {
	courseIDs, assignments, err := s.scope(ctx, studentID)
	if err != nil {
		return nil, err
	}

	courses, err := s.courseRepo.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	byAssignment, err := s.submissionsByAssignment(ctx, studentID)
	if err != nil {
		return nil, err
	}
	submissions := make(map[string]*entity.Submission, len(byAssignment))
	for id, sub := range byAssignment {
		submissions[id.String()] = sub
	}

	announcements, err := s.announcementRepo.FindVisible(ctx, courseIDs, dashboardAnnouncements)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Courses:       courses,
		Assignments:   assignments,
		Submissions:   submissions,
		Announcements: announcements,
	}, nil
}

func (s *studentService) Assignments(ctx context.Context, studentID uuid.UUID) ([]dto.AssignmentView, error) {
	_, assignments, err := s.scope(ctx, studentID)
	if err != nil {
		return nil, err
	}

	byAssignment, err := s.submissionsByAssignment(ctx, studentID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, dto.AssignmentView{
			Assignment: a,
			Submission: byAssignment[a.ID],
		})
	}
	return views, nil
}

func (s *studentService) Grades(ctx context.Context, studentID uuid.UUID) ([]*entity.Submission, error) {
	return s.submissionRepo.FindGradedByStudent(ctx, studentID)
}
