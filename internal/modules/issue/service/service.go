package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/modules/issue/dto"
	issueRepo "anoa.com/educonnect/internal/modules/issue/repository"
	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/sanitize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IssueService interface {
	Report(ctx context.Context, userID uuid.UUID, input dto.ReportIssueInput) (*entity.TechIssue, error)
	List(ctx context.Context, status string) ([]*entity.TechIssue, error)
	Resolve(ctx context.Context, id uuid.UUID) (*entity.TechIssue, error)
	OpenCount(ctx context.Context) (int64, error)
}

type issueService struct {
	repo issueRepo.IssueRepository
}

func NewIssueService(repo issueRepo.IssueRepository) IssueService {
	return &issueService{repo: repo}
}

func (s *issueService) Report(ctx context.Context, userID uuid.UUID, input dto.ReportIssueInput) (*entity.TechIssue, error) {
	description := sanitize.Text(input.Description)
	if description == "" {
		return nil, fmt.Errorf("description is required: %w", apperror.ErrInvalidInput)
	}

	issue := &entity.TechIssue{
		UserID:      userID,
		Description: description,
		Status:      entity.IssueOpen,
	}
	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *issueService) List(ctx context.Context, status string) ([]*entity.TechIssue, error) {
	return s.repo.FindAll(ctx, status)
}

// Resolve is idempotent: resolving a resolved issue keeps its first
// resolution time.
func (s *issueService) Resolve(ctx context.Context, id uuid.UUID) (*entity.TechIssue, error) {
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("issue not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if issue.Status == entity.IssueResolved {
		return issue, nil
	}

	now := time.Now()
	issue.Status = entity.IssueResolved
	issue.ResolvedAt = &now
	if err := s.repo.Update(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *issueService) OpenCount(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, entity.IssueOpen)
}
