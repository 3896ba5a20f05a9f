package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/educonnect/internal/entity"
	notifService "anoa.com/educonnect/internal/modules/notification/service"
	"anoa.com/educonnect/internal/modules/teacher/dto"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/sanitize"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
)

const dueDateLayout = "2006-01-02"

func (s *teacherService) CreateAssignment(ctx context.Context, teacherID uuid.UUID, input dto.CreateAssignmentInput, file *commonDto.UploadedFile) (*dto.PublishResult[*entity.Assignment], error) {
	dueDate, err := time.ParseInLocation(dueDateLayout, input.DueDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD: %w", apperror.ErrInvalidInput)
	}

	courseID, err := uuid.Parse(input.CourseID)
	if err != nil {
		return nil, fmt.Errorf("invalid course id: %w", apperror.ErrInvalidInput)
	}
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	maxMarks := input.MaxMarks
	if maxMarks <= 0 {
		maxMarks = entity.DefaultMaxMarks
	}

	assignment := &entity.Assignment{
		CourseID:    course.ID,
		TeacherID:   teacherID,
		Title:       sanitize.Inline(input.Title),
		Description: sanitize.Text(input.Description),
		DueDate:     dueDate,
		MaxMarks:    maxMarks,
	}
	if strings.TrimSpace(assignment.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
	}

	if file != nil {
		location, err := storage.Store(ctx, s.storage, storage.PurposeAssignment, file.Reader, file.FileName)
		if err != nil {
			return nil, err
		}
		assignment.FilePath = &location
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if assignment.FilePath != nil {
			_ = s.storage.Delete(ctx, *assignment.FilePath)
		}
		return nil, err
	}
	assignment.Course = *course

	notified := s.fanOutToCourse(ctx, course.ID, notifService.Message{
		Title:     "New Assignment Posted",
		Message:   fmt.Sprintf("New assignment '%s' has been posted for %s", assignment.Title, course.Name),
		Type:      entity.NotificationAssignment,
		RelatedID: &assignment.ID,
	})

	return &dto.PublishResult[*entity.Assignment]{Data: assignment, Notified: notified}, nil
}

func (s *teacherService) ListAssignments(ctx context.Context, teacherID uuid.UUID) ([]*entity.Assignment, error) {
	return s.assignmentRepo.FindByTeacher(ctx, teacherID)
}

// fanOutToCourse notifies every actively enrolled student of the course. The
// triggering record is already stored, so failures are logged, not returned.
func (s *teacherService) fanOutToCourse(ctx context.Context, courseID uuid.UUID, msg notifService.Message) int {
	studentIDs, err := s.enrollmentRepo.ActiveStudentIDs(ctx, courseID)
	if err != nil {
		log.Printf("⚠️ Failed to load students of course %s: %v", courseID, err)
		return 0
	}

	n, err := s.notificationService.FanOut(ctx, studentIDs, msg)
	if err != nil {
		log.Printf("⚠️ Failed to notify students of course %s: %v", courseID, err)
		return 0
	}
	return n
}
