package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByLogin(ctx context.Context, identifier string) (*entity.User, error)
	IdentifierTaken(ctx context.Context, identifier string, exclude uuid.UUID) (bool, error)
	FindRoleByName(ctx context.Context, name string) (*entity.Role, error)
	Update(ctx context.Context, user *entity.User) error
	FindAll(ctx context.Context, role string) ([]*entity.User, error)
	FindRecent(ctx context.Context, limit int) ([]*entity.User, error)
	StudentIDs(ctx context.Context) ([]uuid.UUID, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) withRole(ctx context.Context, role string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&entity.User{})
	if role != "" {
		q = q.Joins("JOIN roles ON roles.id = users.role_id").Where("roles.name = ?", role)
	}
	return q
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Omit("Role").Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("username or student number already exists: %w", apperror.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where(query, args...).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByLogin matches either the username or the student number. A username
// match wins over a student number match.
func (r *userRepository) FindByLogin(ctx context.Context, identifier string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("username = ? OR student_number = ?", identifier, identifier).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN username = ? THEN 0 ELSE 1 END, created_at",
			Vars: []any{identifier},
		}}).
		Take(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// IdentifierTaken reports whether a user other than exclude already signs in
// with identifier, as either a username or a student number.
func (r *userRepository) IdentifierTaken(ctx context.Context, identifier string, exclude uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("(username = ? OR student_number = ?) AND id <> ?", identifier, identifier, exclude).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}

	return &role, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Omit("Role").Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("username or student number already exists: %w", apperror.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *userRepository) FindAll(ctx context.Context, role string) ([]*entity.User, error) {
	var users []*entity.User
	if err := r.withRole(ctx, role).
		Preload("Role").
		Order("users.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) FindRecent(ctx context.Context, limit int) ([]*entity.User, error) {
	var users []*entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) StudentIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.withRole(ctx, entity.RoleStudent).Pluck("users.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	if err := r.withRole(ctx, role).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the user together with the rows that only make sense for them.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&entity.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&entity.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.TechIssue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("teacher_id = ?", id).Delete(&entity.Announcement{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil
	})
}
