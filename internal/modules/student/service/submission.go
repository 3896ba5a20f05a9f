package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/modules/student/dto"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/metrics"
	"anoa.com/educonnect/pkg/sanitize"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submit accepts one submission per assignment from an actively enrolled
// student. Resubmission is not supported.
func (s *studentService) Submit(ctx context.Context, studentID, assignmentID uuid.UUID, input dto.SubmitInput, file *commonDto.UploadedFile) (*entity.Submission, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "assignment")
	}

	if err := s.requireEnrollment(ctx, studentID, assignment.CourseID); err != nil {
		return nil, err
	}

	if _, err := s.submissionRepo.FindByAssignmentAndStudent(ctx, assignmentID, studentID); err == nil {
		return nil, apperror.ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if file == nil {
		return nil, fmt.Errorf("a file is required: %w", apperror.ErrInvalidInput)
	}

	location, err := storage.Store(ctx, s.storage, storage.PurposeSubmission, file.Reader, file.FileName)
	if err != nil {
		return nil, err
	}

	submission := &entity.Submission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		FilePath:     location,
		Notes:        sanitize.Text(input.Notes),
		Status:       entity.SubmissionSubmitted,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		_ = s.storage.Delete(ctx, location)
		return nil, err
	}

	metrics.SubmissionsTotal.Inc()
	submission.Assignment = *assignment
	return submission, nil
}

func (s *studentService) DownloadSubmission(ctx context.Context, studentID, submissionID uuid.UUID) (*commonDto.FileDownload, error) {
	submission, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, notFound(err, "submission")
	}
	if submission.StudentID != studentID {
		return nil, fmt.Errorf("submission belongs to another student: %w", apperror.ErrForbidden)
	}

	name := storage.DownloadName("submission_"+submission.Assignment.Title, submission.FilePath)
	return storage.Download(s.storage, submission.FilePath, name)
}

func (s *studentService) DownloadAssignment(ctx context.Context, studentID, assignmentID uuid.UUID) (*commonDto.FileDownload, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "assignment")
	}

	if err := s.requireEnrollment(ctx, studentID, assignment.CourseID); err != nil {
		return nil, err
	}
	if assignment.FilePath == nil {
		return nil, fmt.Errorf("assignment has no attachment: %w", apperror.ErrFileNotFound)
	}

	name := storage.DownloadName(assignment.Title, *assignment.FilePath)
	return storage.Download(s.storage, *assignment.FilePath, name)
}
