package service

import (
	"context"
	"fmt"
	"log"

	"anoa.com/educonnect/internal/entity"
	notifService "anoa.com/educonnect/internal/modules/notification/service"
	"anoa.com/educonnect/internal/modules/teacher/dto"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/sanitize"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
)

func (s *teacherService) ListMaterials(ctx context.Context, teacherID, courseID uuid.UUID) ([]*entity.LectureMaterial, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}

	if err := s.requireTeaches(ctx, teacherID, courseID); err != nil {
		return nil, err
	}

	return s.materialRepo.FindByCourse(ctx, courseID, false)
}

// UploadMaterial stores a file or records an external link; a file wins when
// both are given. Published materials are indexed and announced.
func (s *teacherService) UploadMaterial(ctx context.Context, teacherID, courseID uuid.UUID, input dto.UploadMaterialInput, file *commonDto.UploadedFile) (*dto.PublishResult[*entity.LectureMaterial], error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	title := sanitize.Inline(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrInvalidInput)
	}

	material := &entity.LectureMaterial{
		CourseID:    course.ID,
		TeacherID:   teacherID,
		Title:       title,
		Description: sanitize.Text(input.Description),
		WeekNumber:  input.WeekNumber,
		IsPublished: input.IsPublished == nil || *input.IsPublished,
	}

	switch {
	case file != nil:
		location, err := storage.Store(ctx, s.storage, storage.PurposeMaterial, file.Reader, file.FileName)
		if err != nil {
			return nil, err
		}
		material.FilePath = location
		material.FileType = storage.FileTypeFor(file.FileName)
	case input.ExternalLink != "":
		material.FilePath = input.ExternalLink
		material.FileType = entity.FileTypeLink
	default:
		return nil, fmt.Errorf("a file or an external link is required: %w", apperror.ErrInvalidInput)
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		if !material.IsLink() {
			_ = s.storage.Delete(ctx, material.FilePath)
		}
		return nil, err
	}
	material.Course = *course

	result := &dto.PublishResult[*entity.LectureMaterial]{Data: material}
	if !material.IsPublished {
		return result, nil
	}

	if s.search != nil {
		if err := s.search.IndexMaterial(material); err != nil {
			log.Printf("⚠️ Failed to index material %s: %v", material.ID, err)
		}
	}

	result.Notified = s.fanOutToCourse(ctx, course.ID, notifService.Message{
		Title:     "New Lecture Material",
		Message:   fmt.Sprintf("New material '%s' has been added to %s", material.Title, course.Name),
		Type:      entity.NotificationMaterial,
		RelatedID: &material.ID,
	})
	return result, nil
}

func (s *teacherService) ownedMaterial(ctx context.Context, teacherID, materialID uuid.UUID) (*entity.LectureMaterial, error) {
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, notFound(err, "material")
	}
	if material.TeacherID != teacherID {
		return nil, fmt.Errorf("material belongs to another teacher: %w", apperror.ErrForbidden)
	}
	return material, nil
}

// DeleteMaterial removes the row, its search entry and its stored file.
func (s *teacherService) DeleteMaterial(ctx context.Context, teacherID, materialID uuid.UUID) error {
	material, err := s.ownedMaterial(ctx, teacherID, materialID)
	if err != nil {
		return err
	}

	if err := s.materialRepo.Delete(ctx, material.ID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteMaterial(material.ID.String()); err != nil {
			log.Printf("⚠️ Failed to remove material %s from search: %v", material.ID, err)
		}
	}
	if !material.IsLink() {
		if err := s.storage.Delete(ctx, material.FilePath); err != nil {
			log.Printf("⚠️ Failed to delete material file %s: %v", material.FilePath, err)
		}
	}
	return nil
}

func (s *teacherService) DownloadMaterial(ctx context.Context, teacherID, materialID uuid.UUID) (*commonDto.FileDownload, error) {
	material, err := s.ownedMaterial(ctx, teacherID, materialID)
	if err != nil {
		return nil, err
	}
	if material.IsLink() {
		return nil, fmt.Errorf("external links cannot be downloaded: %w", apperror.ErrBadRequest)
	}

	return storage.Download(s.storage, material.FilePath, storage.DownloadName(material.Title, material.FilePath))
}
