package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/modules/admin/dto"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func (s *adminService) ListUsers(ctx context.Context, role string) ([]*entity.User, error) {
	return s.userRepo.FindAll(ctx, role)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// checkCredentials enforces the login convention for the role: students sign
// in with a student number only, staff with a username only.
func checkCredentials(user *entity.User, role string) error {
	switch role {
	case entity.RoleStudent:
		if user.StudentNumber == nil {
			return fmt.Errorf("students need a student number: %w", apperror.ErrInvalidInput)
		}
		if user.Username != nil {
			return fmt.Errorf("students sign in with a student number, not a username: %w", apperror.ErrInvalidInput)
		}
	default:
		if user.Username == nil {
			return fmt.Errorf("%s accounts need a username: %w", role, apperror.ErrInvalidInput)
		}
		if user.StudentNumber != nil {
			return fmt.Errorf("%s accounts cannot have a student number: %w", role, apperror.ErrInvalidInput)
		}
	}
	return nil
}

// checkUnique reports a conflict when another user already signs in with the
// username or student number, in either column.
func (s *adminService) checkUnique(ctx context.Context, self uuid.UUID, identifiers ...*string) error {
	for _, identifier := range identifiers {
		if identifier == nil {
			continue
		}
		taken, err := s.userRepo.IdentifierTaken(ctx, *identifier, self)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%q is already used to sign in: %w", *identifier, apperror.ErrConflict)
		}
	}
	return nil
}

func (s *adminService) storePicture(ctx context.Context, picture *commonDto.UploadedFile) (*string, error) {
	if picture == nil {
		return nil, nil
	}
	location, err := storage.Store(ctx, s.storage, storage.PurposeProfile, picture.Reader, picture.FileName)
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserInput, picture *commonDto.UploadedFile) (*entity.User, error) {
	role, err := s.userRepo.FindRoleByName(ctx, input.Role)
	if err != nil {
		return nil, notFound(err, "role")
	}

	user := &entity.User{
		Name:          strings.TrimSpace(input.Name),
		Username:      optional(input.Username),
		StudentNumber: optional(input.StudentNumber),
		RoleID:        &role.ID,
		Role:          *role,
	}
	if user.Name == "" {
		return nil, fmt.Errorf("name is required: %w", apperror.ErrInvalidInput)
	}
	if err := checkCredentials(user, role.Name); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, uuid.Nil, user.Username, user.StudentNumber); err != nil {
		return nil, err
	}

	password := input.Password
	if password == "" {
		password = dto.DefaultPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hashed)

	if user.ProfilePic, err = s.storePicture(ctx, picture); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if user.ProfilePic != nil {
			_ = s.storage.Delete(ctx, *user.ProfilePic)
		}
		return nil, err
	}
	return user, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id uuid.UUID, input dto.UpdateUserInput, picture *commonDto.UploadedFile) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id.String())
	if err != nil {
		return nil, notFound(err, "user")
	}

	if input.Role != "" && input.Role != user.Role.Name {
		role, err := s.userRepo.FindRoleByName(ctx, input.Role)
		if err != nil {
			return nil, notFound(err, "role")
		}
		user.RoleID = &role.ID
		user.Role = *role
		// The previous role's credential no longer applies.
		if role.Name == entity.RoleStudent {
			user.Username = nil
		} else {
			user.StudentNumber = nil
		}
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if v := optional(input.Username); v != nil {
		user.Username = v
	}
	if v := optional(input.StudentNumber); v != nil {
		user.StudentNumber = v
	}

	if err := checkCredentials(user, user.Role.Name); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, user.ID, user.Username, user.StudentNumber); err != nil {
		return nil, err
	}

	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	oldPicture := user.ProfilePic
	newPicture, err := s.storePicture(ctx, picture)
	if err != nil {
		return nil, err
	}
	if newPicture != nil {
		user.ProfilePic = newPicture
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if newPicture != nil {
			_ = s.storage.Delete(ctx, *newPicture)
		}
		return nil, err
	}

	if newPicture != nil && oldPicture != nil {
		if err := s.storage.Delete(ctx, *oldPicture); err != nil {
			log.Printf("⚠️ Failed to delete old profile picture %s: %v", *oldPicture, err)
		}
	}
	return user, nil
}

// DeleteUser refuses to delete the acting admin and teachers who still own
// course content.
func (s *adminService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return fmt.Errorf("you cannot delete your own account: %w", apperror.ErrForbidden)
	}

	user, err := s.userRepo.FindByID(ctx, id.String())
	if err != nil {
		return notFound(err, "user")
	}

	if user.HasRole(entity.RoleTeacher) {
		assignments, err := s.assignmentRepo.CountByTeacher(ctx, id)
		if err != nil {
			return err
		}
		materials, err := s.materialRepo.CountByTeacher(ctx, id)
		if err != nil {
			return err
		}
		if assignments > 0 || materials > 0 {
			return fmt.Errorf("teacher still owns %d assignments and %d materials: %w", assignments, materials, apperror.ErrConflict)
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if user.ProfilePic != nil {
		if err := s.storage.Delete(ctx, *user.ProfilePic); err != nil {
			log.Printf("⚠️ Failed to delete profile picture %s: %v", *user.ProfilePic, err)
		}
	}
	return nil
}
