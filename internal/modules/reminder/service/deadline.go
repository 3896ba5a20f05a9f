package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/educonnect/internal/entity"
	assignmentRepo "anoa.com/educonnect/internal/modules/assignment/repository"
	enrollmentRepo "anoa.com/educonnect/internal/modules/enrollment/repository"
	notifService "anoa.com/educonnect/internal/modules/notification/service"
	submissionRepo "anoa.com/educonnect/internal/modules/submission/repository"
	"github.com/google/uuid"
	"github.com/jinzhu/now"
)

const DeadlineJobName = "deadline-reminder"

// DeadlineReminder notifies actively enrolled students who have not
// submitted an assignment that is due tomorrow.
type DeadlineReminder struct {
	assignmentRepo      assignmentRepo.AssignmentRepository
	submissionRepo      submissionRepo.SubmissionRepository
	enrollmentRepo      enrollmentRepo.EnrollmentRepository
	notificationService notifService.NotificationService
	schedule            string
	clock               func() time.Time
}

func NewDeadlineReminder(
	assignmentRepo assignmentRepo.AssignmentRepository,
	submissionRepo submissionRepo.SubmissionRepository,
	enrollmentRepo enrollmentRepo.EnrollmentRepository,
	notificationService notifService.NotificationService,
	schedule string,
) *DeadlineReminder {
	return &DeadlineReminder{
		assignmentRepo:      assignmentRepo,
		submissionRepo:      submissionRepo,
		enrollmentRepo:      enrollmentRepo,
		notificationService: notificationService,
		schedule:            schedule,
		clock:               time.Now,
	}
}

func (r *DeadlineReminder) Name() string     { return DeadlineJobName }
func (r *DeadlineReminder) Schedule() string { return r.schedule }

// Window is the calendar day after t, in UTC.
func Window(t time.Time) (time.Time, time.Time) {
	tomorrow := now.With(t.UTC()).BeginningOfDay().AddDate(0, 0, 1)
	return tomorrow, now.With(tomorrow).EndOfDay()
}

// Pending returns the enrolled students missing from submitted.
func Pending(enrolled, submitted []uuid.UUID) []uuid.UUID {
	done := make(map[uuid.UUID]struct{}, len(submitted))
	for _, id := range submitted {
		done[id] = struct{}{}
	}

	var pending []uuid.UUID
	for _, id := range enrolled {
		if _, ok := done[id]; !ok {
			pending = append(pending, id)
		}
	}
	return pending
}

func (r *DeadlineReminder) Execute(ctx context.Context) error {
	from, to := Window(r.clock())
	assignments, err := r.assignmentRepo.FindDueBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to load due assignments: %w", err)
	}

	total := 0
	for _, assignment := range assignments {
		sent, err := r.remind(ctx, assignment)
		if err != nil {
			log.Printf("⚠️ Failed to send reminders for assignment %s: %v", assignment.ID, err)
			continue
		}
		total += sent
	}

	log.Printf("📨 [%s] %d reminders for %d assignments due %s", DeadlineJobName, total, len(assignments), from.Format("2006-01-02"))
	return nil
}

func (r *DeadlineReminder) remind(ctx context.Context, assignment *entity.Assignment) (int, error) {
	enrolled, err := r.enrollmentRepo.ActiveStudentIDs(ctx, assignment.CourseID)
	if err != nil {
		return 0, err
	}
	submitted, err := r.submissionRepo.SubmitterIDs(ctx, assignment.ID)
	if err != nil {
		return 0, err
	}

	pending := Pending(enrolled, submitted)
	if len(pending) == 0 {
		return 0, nil
	}

	return r.notificationService.FanOut(ctx, pending, notifService.Message{
		Title:     "Assignment Due Tomorrow",
		Message:   fmt.Sprintf("'%s' for %s is due on %s", assignment.Title, assignment.Course.Name, assignment.DueDate.Format("2006-01-02")),
		Type:      entity.NotificationReminder,
		RelatedID: &assignment.ID,
	})
}
