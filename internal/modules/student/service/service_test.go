package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"anoa.com/educonnect/internal/entity"
	announcementRepo "anoa.com/educonnect/internal/modules/announcement/repository"
	assignmentRepo "anoa.com/educonnect/internal/modules/assignment/repository"
	courseRepo "anoa.com/educonnect/internal/modules/course/repository"
	enrollmentRepo "anoa.com/educonnect/internal/modules/enrollment/repository"
	materialRepo "anoa.com/educonnect/internal/modules/material/repository"
	"anoa.com/educonnect/internal/modules/student/dto"
	submissionRepo "anoa.com/educonnect/internal/modules/submission/repository"
	"anoa.com/educonnect/internal/testutil"
	"anoa.com/educonnect/pkg/apperror"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/storage"
	"github.com/google/uuid"
	"github.com/qawatake/fixify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, db *gorm.DB) StudentService {
	t.Helper()
	fs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	return NewStudentService(
		assignmentRepo.NewAssignmentRepository(db),
		submissionRepo.NewSubmissionRepository(db),
		materialRepo.NewMaterialRepository(db),
		courseRepo.NewCourseRepository(db),
		enrollmentRepo.NewEnrollmentRepository(db),
		announcementRepo.NewAnnouncementRepository(db),
		fs,
		nil,
	)
}

func upload(name, content string) *commonDto.UploadedFile {
	return &commonDto.UploadedFile{Reader: strings.NewReader(content), FileName: name, Size: int64(len(content))}
}

func TestSubmit(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var essay, closed *fixify.Model[entity.Assignment]
	var enrollment *fixify.Model[entity.Enrollment]
	teacher := fx.Teacher("Bob", "bob").With(
		testutil.Assignment("Essay 1", 100, time.Now().Add(24*time.Hour)).Bind(&essay),
		testutil.Assignment("Lab", 100, time.Now().Add(24*time.Hour)).Bind(&closed),
	)
	physics := testutil.Course("Physics").With(essay, testutil.Enrollment(entity.EnrollmentActive).Bind(&enrollment))
	accounting := testutil.Course("Accounting").With(closed)
	alice := fx.Student("Alice", "S001").With(enrollment)
	outsider := fx.Student("Olivia", "S002")
	fx.Apply(t, teacher, physics, accounting, alice, outsider)

	svc := newTestService(t, db)
	ctx := context.Background()
	aliceID := alice.Value().ID
	essayID := essay.Value().ID

	t.Run("student without an active enrollment is refused", func(t *testing.T) {
		_, err := svc.Submit(ctx, outsider.Value().ID, essayID, dto.SubmitInput{}, upload("essay.pdf", "x"))
		assert.ErrorIs(t, err, apperror.ErrNotEnrolled)

		_, err = svc.Submit(ctx, aliceID, closed.Value().ID, dto.SubmitInput{}, upload("lab.pdf", "x"))
		assert.ErrorIs(t, err, apperror.ErrNotEnrolled)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := svc.Submit(ctx, aliceID, uuid.New(), dto.SubmitInput{}, upload("essay.pdf", "x"))
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("file is required", func(t *testing.T) {
		_, err := svc.Submit(ctx, aliceID, essayID, dto.SubmitInput{}, nil)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("disallowed extension", func(t *testing.T) {
		_, err := svc.Submit(ctx, aliceID, essayID, dto.SubmitInput{}, upload("essay.exe", "x"))
		assert.ErrorIs(t, err, apperror.ErrInvalidFileType)
	})

	first, err := svc.Submit(ctx, aliceID, essayID, dto.SubmitInput{Notes: "see <i>page 2</i>"}, upload("../../My Essay.PDF", "essay"))
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionSubmitted, first.Status)
	assert.Equal(t, "see page 2", first.Notes)
	assert.True(t, strings.HasPrefix(first.FilePath, "submissions/"))
	assert.True(t, strings.HasSuffix(first.FilePath, "_My_Essay.PDF"))

	t.Run("second submission is a duplicate", func(t *testing.T) {
		_, err := svc.Submit(ctx, aliceID, essayID, dto.SubmitInput{}, upload("again.pdf", "x"))
		assert.ErrorIs(t, err, apperror.ErrDuplicateSubmission)

		var count int64
		require.NoError(t, db.Model(&entity.Submission{}).Where("assignment_id = ? AND student_id = ?", essayID, aliceID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("storage constraint rejects a concurrent duplicate", func(t *testing.T) {
		err := submissionRepo.NewSubmissionRepository(db).Create(ctx, &entity.Submission{
			AssignmentID: essayID,
			StudentID:    aliceID,
			FilePath:     "submissions/race.pdf",
		})
		assert.ErrorIs(t, err, apperror.ErrDuplicateSubmission)
	})

	t.Run("download uses the assignment title", func(t *testing.T) {
		file, err := svc.DownloadSubmission(ctx, aliceID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "submission_Essay 1.pdf", file.FileName)
	})

	t.Run("cannot download another student's submission", func(t *testing.T) {
		_, err := svc.DownloadSubmission(ctx, outsider.Value().ID, first.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("assignment list carries the submission", func(t *testing.T) {
		views, err := svc.Assignments(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, essayID, views[0].Assignment.ID)
		require.NotNil(t, views[0].Submission)
		assert.Equal(t, first.ID, views[0].Submission.ID)
	})

	t.Run("assignment without attachment", func(t *testing.T) {
		_, err := svc.DownloadAssignment(ctx, aliceID, essayID)
		assert.ErrorIs(t, err, apperror.ErrFileNotFound)
	})
}

func TestSubmittedFileMissingOnDisk(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var assignment *fixify.Model[entity.Assignment]
	var submission *fixify.Model[entity.Submission]
	teacher := fx.Teacher("Bob", "bob").With(
		testutil.Assignment("Essay", 100, time.Now()).Bind(&assignment).With(
			testutil.Submission("submissions/gone.pdf").Bind(&submission),
		),
	)
	student := fx.Student("Alice", "S001").With(submission)
	fx.Apply(t, teacher, testutil.Course("Physics").With(assignment), student)

	svc := newTestService(t, db)
	_, err := svc.DownloadSubmission(context.Background(), student.Value().ID, submission.Value().ID)
	assert.ErrorIs(t, err, apperror.ErrFileNotFound)
}

func TestCourseMaterials(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var enrollment *fixify.Model[entity.Enrollment]
	var w1, w2, general, hidden *fixify.Model[entity.LectureMaterial]
	course := testutil.Course("Physics").With(
		testutil.Enrollment(entity.EnrollmentActive).Bind(&enrollment),
		testutil.Material("Week two", "materials/w2.pdf", testutil.IntPtr(2), true).Bind(&w2),
		testutil.Material("Syllabus", "materials/s.pdf", nil, true).Bind(&general),
		testutil.Material("Week one", "materials/w1.pdf", testutil.IntPtr(1), true).Bind(&w1),
		testutil.Material("Draft", "materials/d.pdf", testutil.IntPtr(1), false).Bind(&hidden),
	)
	teacher := fx.Teacher("Bob", "bob").With(w1, w2, general, hidden)
	student := fx.Student("Alice", "S001").With(enrollment)
	outsider := fx.Student("Olivia", "S002")
	fx.Apply(t, course, teacher, student, outsider)

	svc := newTestService(t, db)
	ctx := context.Background()

	res, err := svc.CourseMaterials(ctx, student.Value().ID, course.Value().ID)
	require.NoError(t, err)
	require.Len(t, res.Weeks, 3)
	assert.Equal(t, "Week 1", res.Weeks[0].Label)
	assert.Equal(t, "Week 2", res.Weeks[1].Label)
	assert.Equal(t, "General", res.Weeks[2].Label)
	require.Len(t, res.Weeks[0].Materials, 1)
	assert.Equal(t, w1.Value().ID, res.Weeks[0].Materials[0].ID)

	_, err = svc.CourseMaterials(ctx, outsider.Value().ID, course.Value().ID)
	assert.ErrorIs(t, err, apperror.ErrNotEnrolled)

	t.Run("unpublished material is hidden", func(t *testing.T) {
		_, err := svc.DownloadMaterial(ctx, student.Value().ID, hidden.Value().ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestDownloadLinkMaterialRedirects(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var enrollment *fixify.Model[entity.Enrollment]
	var link *fixify.Model[entity.LectureMaterial]
	course := testutil.Course("Physics").With(
		testutil.Enrollment(entity.EnrollmentActive).Bind(&enrollment),
		testutil.Material("Recording", "https://example.com/rec", nil, true).Bind(&link),
	)
	link.Value().FileType = entity.FileTypeLink
	student := fx.Student("Alice", "S001").With(enrollment)
	fx.Apply(t, course, fx.Teacher("Bob", "bob").With(link), student)

	svc := newTestService(t, db)
	file, err := svc.DownloadMaterial(context.Background(), student.Value().ID, link.Value().ID)
	require.NoError(t, err)
	assert.True(t, file.Remote)
	assert.Equal(t, "https://example.com/rec", file.Location)
}

func TestSearchTokenWithoutBackend(t *testing.T) {
	svc := newTestService(t, testutil.NewDB(t))

	_, err := svc.SearchToken(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
}

func TestGroupByWeek(t *testing.T) {
	assert.Empty(t, GroupByWeek(nil))

	groups := GroupByWeek([]*entity.LectureMaterial{
		{Title: "a", WeekNumber: testutil.IntPtr(3)},
		{Title: "b", WeekNumber: testutil.IntPtr(3)},
		{Title: "c"},
	})
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Materials, 2)
	assert.Equal(t, 3, *groups[0].WeekNumber)
	assert.Nil(t, groups[1].WeekNumber)
}
