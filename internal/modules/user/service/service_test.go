package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"anoa.com/educonnect/internal/bootstrap"
	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/modules/user/dto"
	"anoa.com/educonnect/internal/modules/user/repository"
	"anoa.com/educonnect/internal/testutil"
	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	require.NoError(t, bootstrap.SeedAdminUser(db))
	return NewAuthService(repository.NewUserRepository(db), ratelimiter.New(nil), Options{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
	})
}

func register(number string) dto.RegisterInput {
	return dto.RegisterInput{StudentNumber: number, Name: "Alice", Password: "secret1", ConfirmPassword: "secret1"}
}

func TestRegister(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	fx.Apply(t, fx.Teacher("Bob", "bob"))

	svc := newTestService(t, db)
	ctx := context.Background()

	res, err := svc.Register(ctx, register(" S001 "))
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStudent, res.Role)
	require.NotNil(t, res.User.StudentNumber)
	assert.Equal(t, "S001", *res.User.StudentNumber)
	assert.Nil(t, res.User.Username)
	assert.NotEmpty(t, res.AccessToken)

	tests := []struct {
		name   string
		number string
		err    error
	}{
		{"student number taken", "S001", apperror.ErrConflict},
		{"admin username", "admin", apperror.ErrConflict},
		{"teacher username", "bob", apperror.ErrConflict},
		{"blank", "  ", apperror.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, register(tt.number))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLogin(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, register("S001"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, dto.LoginInput{Identifier: "S001", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStudent, res.Role)

	_, err = svc.Login(ctx, dto.LoginInput{Identifier: "S001", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(ctx, dto.LoginInput{Identifier: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLoginPrefersUsername(t *testing.T) {
	db := testutil.NewDB(t)

	// Rows like this predate the cross-column identifier check.
	fx := testutil.NewFixtures(t, db)
	fx.Apply(t, fx.Student("Mallory", "admin"))
	svc := newTestService(t, db)

	for i := 0; i < 10; i++ {
		res, err := svc.Login(context.Background(), dto.LoginInput{Identifier: "admin", Password: "admin123"})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, res.Role)
	}
}

func TestMe(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	res, err := svc.Register(ctx, register("S001"))
	require.NoError(t, err)

	user, err := svc.Me(ctx, res.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, entity.RoleStudent, user.Role.Name)

	_, err = svc.Me(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

type failingLimiter struct{}

func (failingLimiter) Check(ctx context.Context, action, subject string, max int64) error {
	return nil
}

func (failingLimiter) Hit(ctx context.Context, action, subject string, window time.Duration) error {
	return errors.New("redis down")
}

func (failingLimiter) Clear(ctx context.Context, action, subject string) error {
	return errors.New("redis down")
}

func TestLoginLogsLimiterFailures(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	db := testutil.NewDB(t)
	require.NoError(t, bootstrap.SeedAdminUser(db))
	svc := NewAuthService(repository.NewUserRepository(db), failingLimiter{}, Options{Secret: "test-secret"})
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginInput{Identifier: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, buf.String(), "Failed to record login attempt for admin: redis down")

	_, err = svc.Login(ctx, dto.LoginInput{Identifier: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Failed to clear login attempts for admin: redis down")
}
