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
	notifService "anoa.com/educonnect/internal/modules/notification/service"
	searchService "anoa.com/educonnect/internal/modules/search/service"
	submissionRepo "anoa.com/educonnect/internal/modules/submission/repository"
	"anoa.com/educonnect/internal/modules/teacher/dto"
	userRepo "anoa.com/educonnect/internal/modules/user/repository"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeacherService interface {
	Dashboard(ctx context.Context, teacherID uuid.UUID) (*dto.DashboardResponse, error)

	CreateAssignment(ctx context.Context, teacherID uuid.UUID, input dto.CreateAssignmentInput, file *commonDto.UploadedFile) (*dto.PublishResult[*entity.Assignment], error)
	ListAssignments(ctx context.Context, teacherID uuid.UUID) ([]*entity.Assignment, error)
	CourseStudents(ctx context.Context, courseID uuid.UUID) ([]*entity.User, error)

	ReviewSubmissions(ctx context.Context, teacherID, assignmentID uuid.UUID) (*dto.SubmissionReview, error)
	DownloadSubmission(ctx context.Context, teacherID, submissionID uuid.UUID) (*commonDto.FileDownload, error)
	Grade(ctx context.Context, teacherID, submissionID uuid.UUID, input dto.GradeInput) (*entity.Submission, error)
	BulkGrade(ctx context.Context, teacherID, assignmentID uuid.UUID, input dto.BulkGradeInput) (int, error)
	Gradebook(ctx context.Context, teacherID, courseID uuid.UUID) (*dto.GradebookResponse, error)

	ListMaterials(ctx context.Context, teacherID, courseID uuid.UUID) ([]*entity.LectureMaterial, error)
	UploadMaterial(ctx context.Context, teacherID, courseID uuid.UUID, input dto.UploadMaterialInput, file *commonDto.UploadedFile) (*dto.PublishResult[*entity.LectureMaterial], error)
	DeleteMaterial(ctx context.Context, teacherID, materialID uuid.UUID) error
	DownloadMaterial(ctx context.Context, teacherID, materialID uuid.UUID) (*commonDto.FileDownload, error)

	CreateAnnouncement(ctx context.Context, teacherID uuid.UUID, input dto.CreateAnnouncementInput) (*dto.PublishResult[*entity.Announcement], error)
	ListAnnouncements(ctx context.Context, teacherID uuid.UUID) ([]*entity.Announcement, error)
}

type teacherService struct {
	assignmentRepo      assignmentRepo.AssignmentRepository
	submissionRepo      submissionRepo.SubmissionRepository
	materialRepo        materialRepo.MaterialRepository
	courseRepo          courseRepo.CourseRepository
	enrollmentRepo      enrollmentRepo.EnrollmentRepository
	announcementRepo    announcementRepo.AnnouncementRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	storage             storage.FileStorage
	search              searchService.MeiliSearchService
}

// NewTeacherService wires the teacher workflows. search may be nil when no
// search backend is configured.
func NewTeacherService(
	assignmentRepo assignmentRepo.AssignmentRepository,
	submissionRepo submissionRepo.SubmissionRepository,
	materialRepo materialRepo.MaterialRepository,
	courseRepo courseRepo.CourseRepository,
	enrollmentRepo enrollmentRepo.EnrollmentRepository,
	announcementRepo announcementRepo.AnnouncementRepository,
	userRepo userRepo.UserRepository,
	notificationService notifService.NotificationService,
	fileStorage storage.FileStorage,
	search searchService.MeiliSearchService,
) TeacherService {
	return &teacherService{
		assignmentRepo:      assignmentRepo,
		submissionRepo:      submissionRepo,
		materialRepo:        materialRepo,
		courseRepo:          courseRepo,
		enrollmentRepo:      enrollmentRepo,
		announcementRepo:    announcementRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		storage:             fileStorage,
		search:              search,
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, apperror.ErrNotFound)
	}
	return err
}

func (s *teacherService) Dashboard(ctx context.Context, teacherID uuid.UUID) (*dto.DashboardResponse, error) {
	assignments, err := s.assignmentRepo.FindByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	courses, err := s.courseRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	total, err := s.submissionRepo.CountByTeacher(ctx, teacherID, "")
	if err != nil {
		return nil, err
	}
	pending, err := s.submissionRepo.CountByTeacher(ctx, teacherID, entity.SubmissionSubmitted)
	if err != nil {
		return nil, err
	}
	graded, err := s.submissionRepo.CountByTeacher(ctx, teacherID, entity.SubmissionGraded)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Assignments:        assignments,
		Courses:            courses,
		TotalSubmissions:   total,
		PendingSubmissions: pending,
		GradedSubmissions:  graded,
	}, nil
}

func (s *teacherService) findCourse(ctx context.Context, courseID uuid.UUID) (*entity.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, "course")
	}
	return course, nil
}

// teaches reports whether the teacher has authored an assignment or a
// material in the course.
func (s *teacherService) teaches(ctx context.Context, teacherID, courseID uuid.UUID) (bool, error) {
	ok, err := s.assignmentRepo.ExistsForTeacherCourse(ctx, teacherID, courseID)
	if err != nil || ok {
		return ok, err
	}
	return s.materialRepo.ExistsForTeacherCourse(ctx, teacherID, courseID)
}

func (s *teacherService) requireTeaches(ctx context.Context, teacherID, courseID uuid.UUID) error {
	ok, err := s.teaches(ctx, teacherID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("you do not teach this course: %w", apperror.ErrForbidden)
	}
	return nil
}

// ownedAssignment loads an assignment and checks that teacherID authored it.
func (s *teacherService) ownedAssignment(ctx context.Context, teacherID, assignmentID uuid.UUID) (*entity.Assignment, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "assignment")
	}
	if assignment.TeacherID != teacherID {
		return nil, fmt.Errorf("assignment belongs to another teacher: %w", apperror.ErrForbidden)
	}
	return assignment, nil
}

func (s *teacherService) CourseStudents(ctx context.Context, courseID uuid.UUID) ([]*entity.User, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ActiveStudents(ctx, courseID)
}

func (s *teacherService) ReviewSubmissions(ctx context.Context, teacherID, assignmentID uuid.UUID) (*dto.SubmissionReview, error) {
	assignment, err := s.ownedAssignment(ctx, teacherID, assignmentID)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissionRepo.FindByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	students, err := s.enrollmentRepo.ActiveStudentIDs(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}

	return &dto.SubmissionReview{
		Assignment:  assignment,
		Submissions: submissions,
		Stats:       Review(len(students), submissions),
	}, nil
}

func (s *teacherService) DownloadSubmission(ctx context.Context, teacherID, submissionID uuid.UUID) (*commonDto.FileDownload, error) {
	submission, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, "submission")
	}
	if submission.Assignment.TeacherID != teacherID {
		return nil, fmt.Errorf("submission belongs to another teacher's assignment: %w", apperror.ErrForbidden)
	}

	name := storage.DownloadName(submission.Student.Name+"_"+submission.Assignment.Title, submission.FilePath)
	return storage.Download(s.storage, submission.FilePath, name)
}

func (s *teacherService) Gradebook(ctx context.Context, teacherID, courseID uuid.UUID) (*dto.GradebookResponse, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTeaches(ctx, teacherID, courseID); err != nil {
		return nil, err
	}

	students, err := s.enrollmentRepo.ActiveStudents(ctx, courseID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.FindByTeacherAndCourse(ctx, teacherID, courseID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	submissions, err := s.submissionRepo.FindByAssignmentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &dto.GradebookResponse{
		Course:      course,
		Assignments: assignments,
		Rows:        BuildGradebook(students, assignments, submissions),
	}, nil
}
