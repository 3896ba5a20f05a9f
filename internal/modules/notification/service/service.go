package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"anoa.com/educonnect/internal/entity"
	notifRepo "anoa.com/educonnect/internal/modules/notification/repository"
	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Message is the content shared by every notification of a fan-out.
type Message struct {
	Title     string
	Message   string
	Type      string
	RelatedID *uuid.UUID
}

type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, msg Message) (*entity.Notification, error)
	FanOut(ctx context.Context, userIDs []uuid.UUID, msg Message) (int, error)
	Publish(ctx context.Context, notifications ...*entity.Notification)
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// Channel is the redis pub/sub channel carrying a user's notifications.
func Channel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

// Build returns one unsaved notification per distinct recipient.
func Build(userIDs []uuid.UUID, msg Message) []*entity.Notification {
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	notifications := make([]*entity.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		notifications = append(notifications, &entity.Notification{
			UserID:    id,
			Title:     msg.Title,
			Message:   msg.Message,
			Type:      msg.Type,
			RelatedID: msg.RelatedID,
		})
	}
	return notifications
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, msg Message) (*entity.Notification, error) {
	notification := Build([]uuid.UUID{userID}, msg)[0]
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	metrics.NotificationsTotal.WithLabelValues(msg.Type).Inc()
	s.Publish(ctx, notification)
	return notification, nil
}

func (s *notificationService) FanOut(ctx context.Context, userIDs []uuid.UUID, msg Message) (int, error) {
	notifications := Build(userIDs, msg)
	if len(notifications) == 0 {
		return 0, nil
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to create notifications: %w", err)
	}
	metrics.NotificationsTotal.WithLabelValues(msg.Type).Add(float64(len(notifications)))

	s.Publish(ctx, notifications...)
	return len(notifications), nil
}

// Publish pushes already stored notifications to their recipients' channels.
func (s *notificationService) Publish(ctx context.Context, notifications ...*entity.Notification) {
	if s.redisClient == nil {
		return
	}

	for _, n := range notifications {
		payload, err := json.Marshal(n)
		if err != nil {
			continue
		}
		if err := s.redisClient.Publish(ctx, Channel(n.UserID.String()), payload).Err(); err != nil {
			log.Printf("⚠️ Failed to publish notification %s: %v", n.ID, err)
		}
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, int64, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	affected, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
