// Package testutil provides an in-memory database and relational fixtures
// for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"anoa.com/educonnect/internal/bootstrap"
	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/pkg/database"
	"github.com/google/uuid"
	"github.com/qawatake/fixify"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated sqlite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.Options{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)

	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedRoles(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

type Fixtures struct {
	db    *gorm.DB
	roles map[string]uint
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	t.Helper()

	var roles []entity.Role
	require.NoError(t, db.Find(&roles).Error)

	f := &Fixtures{db: db, roles: make(map[string]uint, len(roles))}
	for _, r := range roles {
		f.roles[r.Name] = r.ID
	}
	return f
}

// Apply inserts the models in dependency order.
func (f *Fixtures) Apply(t testing.TB, models ...fixify.IModel) {
	t.Helper()
	fixify.New(t, models...).Iterate(func(v any) error {
		return f.db.Create(v).Error
	})
}

func (f *Fixtures) Student(name, studentNumber string) *fixify.Model[entity.User] {
	roleID := f.roles[entity.RoleStudent]
	return fixify.NewModel(&entity.User{
		Name:          name,
		StudentNumber: &studentNumber,
		PasswordHash:  "x",
		RoleID:        &roleID,
	})
}

func (f *Fixtures) Teacher(name, username string) *fixify.Model[entity.User] {
	roleID := f.roles[entity.RoleTeacher]
	return fixify.NewModel(&entity.User{
		Name:         name,
		Username:     &username,
		PasswordHash: "x",
		RoleID:       &roleID,
	})
}

func (f *Fixtures) Admin(name, username string) *fixify.Model[entity.User] {
	roleID := f.roles[entity.RoleAdmin]
	return fixify.NewModel(&entity.User{
		Name:         name,
		Username:     &username,
		PasswordHash: "x",
		RoleID:       &roleID,
	})
}

func Course(name string) *fixify.Model[entity.Course] {
	return fixify.NewModel(&entity.Course{Name: name})
}

// Enrollment connects to a student and a course.
func Enrollment(status string) *fixify.Model[entity.Enrollment] {
	return fixify.NewModel(&entity.Enrollment{Status: status},
		fixify.ConnectorFunc(func(t testing.TB, e *entity.Enrollment, u *entity.User) {
			e.UserID = u.ID
		}),
		fixify.ConnectorFunc(func(t testing.TB, e *entity.Enrollment, c *entity.Course) {
			e.CourseID = c.ID
		}),
	)
}

// Assignment connects to a course and its teacher.
func Assignment(title string, maxMarks int, due time.Time) *fixify.Model[entity.Assignment] {
	return fixify.NewModel(&entity.Assignment{Title: title, MaxMarks: maxMarks, DueDate: due},
		fixify.ConnectorFunc(func(t testing.TB, a *entity.Assignment, c *entity.Course) {
			a.CourseID = c.ID
		}),
		fixify.ConnectorFunc(func(t testing.TB, a *entity.Assignment, u *entity.User) {
			a.TeacherID = u.ID
		}),
	)
}

// Submission connects to an assignment and the submitting student.
func Submission(filePath string) *fixify.Model[entity.Submission] {
	return fixify.NewModel(&entity.Submission{FilePath: filePath},
		fixify.ConnectorFunc(func(t testing.TB, s *entity.Submission, a *entity.Assignment) {
			s.AssignmentID = a.ID
		}),
		fixify.ConnectorFunc(func(t testing.TB, s *entity.Submission, u *entity.User) {
			s.StudentID = u.ID
		}),
	)
}

// Material connects to a course and its teacher.
func Material(title, filePath string, week *int, published bool) *fixify.Model[entity.LectureMaterial] {
	return fixify.NewModel(&entity.LectureMaterial{
		Title:       title,
		FilePath:    filePath,
		FileType:    "pdf",
		WeekNumber:  week,
		IsPublished: published,
	},
		fixify.ConnectorFunc(func(t testing.TB, m *entity.LectureMaterial, c *entity.Course) {
			m.CourseID = c.ID
		}),
		fixify.ConnectorFunc(func(t testing.TB, m *entity.LectureMaterial, u *entity.User) {
			m.TeacherID = u.ID
		}),
	)
}

func IntPtr(i int) *int {
	return &i
}
