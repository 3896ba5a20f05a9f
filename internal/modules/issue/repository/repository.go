package repository

import (
	"context"

	"anoa.com/educonnect/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IssueRepository interface {
	Create(ctx context.Context, issue *entity.TechIssue) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TechIssue, error)
	// FindAll lists issues newest first. An empty status lists every issue.
	FindAll(ctx context.Context, status string) ([]*entity.TechIssue, error)
	Update(ctx context.Context, issue *entity.TechIssue) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type issueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(ctx context.Context, issue *entity.TechIssue) error {
	return r.db.WithContext(ctx).Omit("User").Create(issue).Error
}

func (r *issueRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TechIssue, error) {
	var issue entity.TechIssue
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Role").
		Where("id = ?", id).
		First(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) FindAll(ctx context.Context, status string) ([]*entity.TechIssue, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Role")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var issues []*entity.TechIssue
	if err := q.Order("created_at DESC").Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *issueRepository) Update(ctx context.Context, issue *entity.TechIssue) error {
	return r.db.WithContext(ctx).Omit("User").Save(issue).Error
}

func (r *issueRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.TechIssue{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
