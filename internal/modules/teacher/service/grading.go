package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"anoa.com/educonnect/internal/entity"
	notifService "anoa.com/educonnect/internal/modules/notification/service"
	submissionRepo "anoa.com/educonnect/internal/modules/submission/repository"
	"anoa.com/educonnect/internal/modules/teacher/dto"
	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/metrics"
	"anoa.com/educonnect/pkg/sanitize"
	"github.com/google/uuid"
)

func validateMarks(marks float64, maxMarks int) error {
	if marks < 0 || marks > float64(maxMarks) {
		return fmt.Errorf("%w (got %s, max %d)", apperror.ErrInvalidMarks, formatMarks(marks), maxMarks)
	}
	return nil
}

func formatMarks(marks float64) string {
	return strconv.FormatFloat(marks, 'f', -1, 64)
}

func gradeNotification(submission *entity.Submission, assignment *entity.Assignment, marks float64) *entity.Notification {
	return notifService.Build([]uuid.UUID{submission.StudentID}, notifService.Message{
		Title: "Assignment Graded",
		Message: fmt.Sprintf("Your submission for '%s' has been graded: %s/%d",
			assignment.Title, formatMarks(marks), assignment.MaxMarks),
		Type:      entity.NotificationGrade,
		RelatedID: &submission.ID,
	})[0]
}

// Grade stores marks and feedback and notifies the student in the same
// transaction.
func (s *teacherService) Grade(ctx context.Context, teacherID, submissionID uuid.UUID, input dto.GradeInput) (*entity.Submission, error) {
	submission, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, "submission")
	}

	assignment := &submission.Assignment
	if assignment.TeacherID != teacherID {
		return nil, fmt.Errorf("submission belongs to another teacher's assignment: %w", apperror.ErrForbidden)
	}

	marks := *input.Marks
	if err := validateMarks(marks, assignment.MaxMarks); err != nil {
		return nil, err
	}

	feedback := sanitize.Text(input.Feedback)
	notification := gradeNotification(submission, assignment, marks)

	update := submissionRepo.GradeUpdate{SubmissionID: submission.ID, Marks: marks, Feedback: feedback}
	if err := s.submissionRepo.ApplyGrades(ctx, []submissionRepo.GradeUpdate{update}, []*entity.Notification{notification}); err != nil {
		return nil, err
	}

	metrics.GradesTotal.WithLabelValues("single").Inc()
	metrics.NotificationsTotal.WithLabelValues(entity.NotificationGrade).Inc()
	s.notificationService.Publish(ctx, notification)

	now := time.Now()
	submission.Marks = &marks
	submission.Feedback = feedback
	submission.Status = entity.SubmissionGraded
	submission.GradedAt = &now
	return submission, nil
}

// BulkGrade validates every row before writing anything; the whole batch is
// applied in one transaction or not at all.
func (s *teacherService) BulkGrade(ctx context.Context, teacherID, assignmentID uuid.UUID, input dto.BulkGradeInput) (int, error) {
	assignment, err := s.ownedAssignment(ctx, teacherID, assignmentID)
	if err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, 0, len(input.Grades))
	seen := make(map[uuid.UUID]struct{}, len(input.Grades))
	for _, item := range input.Grades {
		id, err := uuid.Parse(item.SubmissionID)
		if err != nil {
			return 0, fmt.Errorf("invalid submission id %q: %w", item.SubmissionID, apperror.ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return 0, fmt.Errorf("submission %s is graded twice: %w", id, apperror.ErrInvalidInput)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	found, err := s.submissionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	byID := make(map[uuid.UUID]*entity.Submission, len(found))
	for _, sub := range found {
		byID[sub.ID] = sub
	}

	updates := make([]submissionRepo.GradeUpdate, 0, len(ids))
	notifications := make([]*entity.Notification, 0, len(ids))
	for i, item := range input.Grades {
		sub, ok := byID[ids[i]]
		if !ok {
			return 0, fmt.Errorf("submission %s not found: %w", ids[i], apperror.ErrNotFound)
		}
		if sub.AssignmentID != assignment.ID {
			return 0, fmt.Errorf("submission %s belongs to another assignment: %w", sub.ID, apperror.ErrInvalidInput)
		}

		marks := *item.Marks
		if err := validateMarks(marks, assignment.MaxMarks); err != nil {
			return 0, fmt.Errorf("submission %s: %w", sub.ID, err)
		}

		updates = append(updates, submissionRepo.GradeUpdate{
			SubmissionID: sub.ID,
			Marks:        marks,
			Feedback:     sanitize.Text(item.Feedback),
		})
		notifications = append(notifications, gradeNotification(sub, assignment, marks))
	}

	if err := s.submissionRepo.ApplyGrades(ctx, updates, notifications); err != nil {
		return 0, err
	}

	metrics.GradesTotal.WithLabelValues("bulk").Add(float64(len(updates)))
	metrics.NotificationsTotal.WithLabelValues(entity.NotificationGrade).Add(float64(len(notifications)))
	s.notificationService.Publish(ctx, notifications...)

	return len(updates), nil
}
