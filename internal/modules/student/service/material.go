package service

import (
	"context"
	"fmt"
	"net/http"

	"anoa.com/educonnect/internal/entity"
	searchService "anoa.com/educonnect/internal/modules/search/service"
	"anoa.com/educonnect/internal/modules/student/dto"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
)

const generalGroup = "General"

// GroupByWeek splits materials already ordered by week into consecutive
// groups. Materials without a week fall into "General".
func GroupByWeek(materials []*entity.LectureMaterial) []dto.MaterialGroup {
	groups := []dto.MaterialGroup{}
	for _, m := range materials {
		label := generalGroup
		if m.WeekNumber != nil {
			label = fmt.Sprintf("Week %d", *m.WeekNumber)
		}

		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Materials = append(groups[n-1].Materials, m)
			continue
		}
		groups = append(groups, dto.MaterialGroup{
			Label:      label,
			WeekNumber: m.WeekNumber,
			Materials:  []*entity.LectureMaterial{m},
		})
	}
	return groups
}

func (s *studentService) CourseMaterials(ctx context.Context, studentID, courseID uuid.UUID) (*dto.CourseMaterialsResponse, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, "course")
	}

	if err := s.requireEnrollment(ctx, studentID, courseID); err != nil {
		return nil, err
	}

	materials, err := s.materialRepo.FindByCourse(ctx, courseID, true)
	if err != nil {
		return nil, err
	}

	return &dto.CourseMaterialsResponse{
		Course: course,
		Weeks:  GroupByWeek(materials),
	}, nil
}

// DownloadMaterial serves a published material of an enrolled course;
// external links are returned as remote locations to redirect to.
func (s *studentService) DownloadMaterial(ctx context.Context, studentID, materialID uuid.UUID) (*commonDto.FileDownload, error) {
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, notFound(err, "material")
	}
	if !material.IsPublished {
		return nil, fmt.Errorf("material not found: %w", apperror.ErrNotFound)
	}

	if err := s.requireEnrollment(ctx, studentID, material.CourseID); err != nil {
		return nil, err
	}

	if material.IsLink() {
		return &commonDto.FileDownload{
			Location: material.FilePath,
			FileName: material.Title,
			Remote:   true,
		}, nil
	}

	return storage.Download(s.storage, material.FilePath, storage.DownloadName(material.Title, material.FilePath))
}

func (s *studentService) SearchToken(ctx context.Context, studentID uuid.UUID) (*dto.SearchTokenResponse, error) {
	if s.search == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "search is not available", apperror.ErrInternal)
	}

	courseIDs, err := s.enrollmentRepo.ActiveCourseIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}

	token, err := s.search.GenerateSearchToken(courseIDs)
	if err != nil {
		return nil, err
	}

	return &dto.SearchTokenResponse{
		Token: token,
		Index: searchService.MaterialsIndex,
	}, nil
}
