package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GradeUpdate is the grade applied to one submission.
type GradeUpdate struct {
	SubmissionID uuid.UUID
	Marks        float64
	Feedback     string
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *entity.Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Submission, error)
	FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*entity.Submission, error)
	FindByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*entity.Submission, error)
	FindByAssignmentIDs(ctx context.Context, assignmentIDs []uuid.UUID) ([]*entity.Submission, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*entity.Submission, error)
	FindGradedByStudent(ctx context.Context, studentID uuid.UUID) ([]*entity.Submission, error)
	SubmitterIDs(ctx context.Context, assignmentID uuid.UUID) ([]uuid.UUID, error)
	CountByTeacher(ctx context.Context, teacherID uuid.UUID, status string) (int64, error)
	Count(ctx context.Context) (int64, error)
	ApplyGrades(ctx context.Context, grades []GradeUpdate, notifications []*entity.Notification) error
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create inserts the submission. idx_submission_student turns a concurrent
// second submission into ErrDuplicateSubmission.
func (r *submissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	if err := r.db.WithContext(ctx).Omit("Assignment", "Student").Create(submission).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

func (r *submissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	var submission entity.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Course").
		Preload("Student").
		Where("id = ?", id).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Submission, error) {
	submissions := []*entity.Submission{}
	if len(ids) == 0 {
		return submissions, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("id IN ?", ids).
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*entity.Submission, error) {
	var submission entity.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]*entity.Submission, error) {
	var submissions []*entity.Submission
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) FindByAssignmentIDs(ctx context.Context, assignmentIDs []uuid.UUID) ([]*entity.Submission, error) {
	submissions := []*entity.Submission{}
	if len(assignmentIDs) == 0 {
		return submissions, nil
	}
	if err := r.db.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*entity.Submission, error) {
	var submissions []*entity.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Course").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) FindGradedByStudent(ctx context.Context, studentID uuid.UUID) ([]*entity.Submission, error) {
	var submissions []*entity.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Course").
		Where("student_id = ? AND status = ?", studentID, entity.SubmissionGraded).
		Order("graded_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) SubmitterIDs(ctx context.Context, assignmentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&entity.Submission{}).
		Where("assignment_id = ?", assignmentID).
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByTeacher counts submissions to the teacher's assignments. An empty
// status counts all of them.
func (r *submissionRepository) CountByTeacher(ctx context.Context, teacherID uuid.UUID, status string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.teacher_id = ?", teacherID)
	if status != "" {
		q = q.Where("submissions.status = ?", status)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *submissionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Submission{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyGrades grades every submission and stores the notifications in one
// transaction. Any failure leaves all submissions untouched.
func (r *submissionRepository) ApplyGrades(ctx context.Context, grades []GradeUpdate, notifications []*entity.Notification) error {
	if len(grades) == 0 {
		return nil
	}

	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range grades {
			res := tx.Model(&entity.Submission{}).
				Where("id = ?", g.SubmissionID).
				Updates(map[string]any{
					"marks":     g.Marks,
					"feedback":  g.Feedback,
					"status":    entity.SubmissionGraded,
					"graded_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("submission %s not found: %w", g.SubmissionID, apperror.ErrNotFound)
			}
		}

		if len(notifications) > 0 {
			if err := tx.CreateInBatches(notifications, 100).Error; err != nil {
				return fmt.Errorf("failed to create grade notifications: %w", err)
			}
		}
		return nil
	})
}
