package service

import (
	"context"
	"fmt"
	"log"

	"anoa.com/educonnect/internal/entity"
	notifService "anoa.com/educonnect/internal/modules/notification/service"
	"anoa.com/educonnect/internal/modules/teacher/dto"
	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/sanitize"
	"github.com/google/uuid"
)

// CreateAnnouncement posts to one course, or to every student when no course
// is given.
func (s *teacherService) CreateAnnouncement(ctx context.Context, teacherID uuid.UUID, input dto.CreateAnnouncementInput) (*dto.PublishResult[*entity.Announcement], error) {
	announcement := &entity.Announcement{
		TeacherID: teacherID,
		Title:     sanitize.Inline(input.Title),
		Content:   sanitize.Text(input.Content),
	}
	if announcement.Title == "" || announcement.Content == "" {
		return nil, fmt.Errorf("title and content are required: %w", apperror.ErrInvalidInput)
	}

	var course *entity.Course
	if input.CourseID != "" {
		courseID, err := uuid.Parse(input.CourseID)
		if err != nil {
			return nil, fmt.Errorf("invalid course id: %w", apperror.ErrInvalidInput)
		}
		if course, err = s.findCourse(ctx, courseID); err != nil {
			return nil, err
		}
		announcement.CourseID = &course.ID
	}

	if err := s.announcementRepo.Create(ctx, announcement); err != nil {
		return nil, err
	}
	announcement.Course = course

	msg := notifService.Message{
		Title:     announcement.Title,
		Message:   announcement.Content,
		Type:      entity.NotificationAnnouncement,
		RelatedID: &announcement.ID,
	}

	result := &dto.PublishResult[*entity.Announcement]{Data: announcement}
	if course != nil {
		result.Notified = s.fanOutToCourse(ctx, course.ID, msg)
		return result, nil
	}

	studentIDs, err := s.userRepo.StudentIDs(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to load students for announcement %s: %v", announcement.ID, err)
		return result, nil
	}
	if result.Notified, err = s.notificationService.FanOut(ctx, studentIDs, msg); err != nil {
		log.Printf("⚠️ Failed to notify students of announcement %s: %v", announcement.ID, err)
	}
	return result, nil
}

func (s *teacherService) ListAnnouncements(ctx context.Context, teacherID uuid.UUID) ([]*entity.Announcement, error) {
	return s.announcementRepo.FindByTeacher(ctx, teacherID)
}
