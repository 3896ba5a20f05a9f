package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"anoa.com/educonnect/internal/entity"
	announcementRepo "anoa.com/educonnect/internal/modules/announcement/repository"
	assignmentRepo "anoa.com/educonnect/internal/modules/assignment/repository"
	courseRepo "anoa.com/educonnect/internal/modules/course/repository"
	enrollmentRepo "anoa.com/educonnect/internal/modules/enrollment/repository"
	materialRepo "anoa.com/educonnect/internal/modules/material/repository"
	notifRepo "anoa.com/educonnect/internal/modules/notification/repository"
	notifService "anoa.com/educonnect/internal/modules/notification/service"
	submissionRepo "anoa.com/educonnect/internal/modules/submission/repository"
	"anoa.com/educonnect/internal/modules/teacher/dto"
	userRepo "anoa.com/educonnect/internal/modules/user/repository"
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

func newTestService(t *testing.T, db *gorm.DB) TeacherService {
	t.Helper()
	fs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	return NewTeacherService(
		assignmentRepo.NewAssignmentRepository(db),
		submissionRepo.NewSubmissionRepository(db),
		materialRepo.NewMaterialRepository(db),
		courseRepo.NewCourseRepository(db),
		enrollmentRepo.NewEnrollmentRepository(db),
		announcementRepo.NewAnnouncementRepository(db),
		userRepo.NewUserRepository(db),
		notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil),
		fs,
		nil,
	)
}

func notificationsFor(t *testing.T, db *gorm.DB, userID uuid.UUID) []entity.Notification {
	t.Helper()
	var got []entity.Notification
	require.NoError(t, db.Where("user_id = ?", userID).Find(&got).Error)
	return got
}

func marks(v float64) *float64 {
	return &v
}

func TestGrade(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var assignment *fixify.Model[entity.Assignment]
	var submission *fixify.Model[entity.Submission]
	teacher := fx.Teacher("Bob", "bob").With(
		testutil.Assignment("Essay", 100, time.Now().Add(48*time.Hour)).Bind(&assignment).With(
			testutil.Submission("submissions/essay.pdf").Bind(&submission),
		),
	)
	other := fx.Teacher("Eve", "eve")
	course := testutil.Course("Physics").With(assignment)
	student := fx.Student("Alice", "S001").With(submission)
	fx.Apply(t, teacher, other, course, student)

	svc := newTestService(t, db)
	ctx := context.Background()
	teacherID := teacher.Value().ID
	subID := submission.Value().ID

	t.Run("marks above maximum are rejected and nothing changes", func(t *testing.T) {
		_, err := svc.Grade(ctx, teacherID, subID, dto.GradeInput{Marks: marks(105)})
		assert.ErrorIs(t, err, apperror.ErrInvalidMarks)

		var stored entity.Submission
		require.NoError(t, db.First(&stored, "id = ?", subID).Error)
		assert.Equal(t, entity.SubmissionSubmitted, stored.Status)
		assert.Nil(t, stored.Marks)
		assert.Nil(t, stored.GradedAt)
		assert.Empty(t, notificationsFor(t, db, student.Value().ID))
	})

	t.Run("negative marks are rejected", func(t *testing.T) {
		_, err := svc.Grade(ctx, teacherID, subID, dto.GradeInput{Marks: marks(-1)})
		assert.ErrorIs(t, err, apperror.ErrInvalidMarks)
	})

	t.Run("another teacher cannot grade", func(t *testing.T) {
		_, err := svc.Grade(ctx, other.Value().ID, subID, dto.GradeInput{Marks: marks(50)})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("unknown submission", func(t *testing.T) {
		_, err := svc.Grade(ctx, teacherID, uuid.New(), dto.GradeInput{Marks: marks(50)})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("valid marks grade the submission and notify the student", func(t *testing.T) {
		graded, err := svc.Grade(ctx, teacherID, subID, dto.GradeInput{Marks: marks(85), Feedback: "<b>Good</b> work"})
		require.NoError(t, err)
		assert.Equal(t, entity.SubmissionGraded, graded.Status)

		var stored entity.Submission
		require.NoError(t, db.First(&stored, "id = ?", subID).Error)
		assert.Equal(t, entity.SubmissionGraded, stored.Status)
		require.NotNil(t, stored.Marks)
		assert.Equal(t, 85.0, *stored.Marks)
		assert.Equal(t, "Good work", stored.Feedback)
		assert.NotNil(t, stored.GradedAt)

		got := notificationsFor(t, db, student.Value().ID)
		require.Len(t, got, 1)
		assert.Equal(t, entity.NotificationGrade, got[0].Type)
		require.NotNil(t, got[0].RelatedID)
		assert.Equal(t, subID, *got[0].RelatedID)
		assert.Equal(t, "Your submission for 'Essay' has been graded: 85/100", got[0].Message)
	})
}

func TestBulkGrade(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var essay, quiz *fixify.Model[entity.Assignment]
	var s1, s2, foreign *fixify.Model[entity.Submission]
	teacher := fx.Teacher("Bob", "bob").With(
		testutil.Assignment("Essay", 50, time.Now()).Bind(&essay).With(
			testutil.Submission("submissions/a.pdf").Bind(&s1),
			testutil.Submission("submissions/b.pdf").Bind(&s2),
		),
		testutil.Assignment("Quiz", 10, time.Now()).Bind(&quiz).With(
			testutil.Submission("submissions/c.pdf").Bind(&foreign),
		),
	)
	course := testutil.Course("Mathematics").With(essay, quiz)
	alice := fx.Student("Alice", "S001").With(s1, foreign)
	carol := fx.Student("Carol", "S002").With(s2)
	fx.Apply(t, teacher, course, alice, carol)

	svc := newTestService(t, db)
	ctx := context.Background()
	teacherID := teacher.Value().ID

	gradedCount := func() int64 {
		var n int64
		require.NoError(t, db.Model(&entity.Submission{}).Where("status = ?", entity.SubmissionGraded).Count(&n).Error)
		return n
	}

	cases := []struct {
		name   string
		grades []dto.BulkGradeItem
		want   error
	}{
		{
			name: "one row above maximum",
			grades: []dto.BulkGradeItem{
				{SubmissionID: s1.Value().ID.String(), Marks: marks(40)},
				{SubmissionID: s2.Value().ID.String(), Marks: marks(51)},
			},
			want: apperror.ErrInvalidMarks,
		},
		{
			name: "one row from another assignment",
			grades: []dto.BulkGradeItem{
				{SubmissionID: s1.Value().ID.String(), Marks: marks(40)},
				{SubmissionID: foreign.Value().ID.String(), Marks: marks(5)},
			},
			want: apperror.ErrInvalidInput,
		},
		{
			name: "one unknown submission",
			grades: []dto.BulkGradeItem{
				{SubmissionID: s1.Value().ID.String(), Marks: marks(40)},
				{SubmissionID: uuid.NewString(), Marks: marks(5)},
			},
			want: apperror.ErrNotFound,
		},
		{
			name: "same submission twice",
			grades: []dto.BulkGradeItem{
				{SubmissionID: s1.Value().ID.String(), Marks: marks(40)},
				{SubmissionID: s1.Value().ID.String(), Marks: marks(45)},
			},
			want: apperror.ErrInvalidInput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name+" changes nothing", func(t *testing.T) {
			_, err := svc.BulkGrade(ctx, teacherID, essay.Value().ID, dto.BulkGradeInput{Grades: tc.grades})
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, int64(0), gradedCount())

			var notifications int64
			require.NoError(t, db.Model(&entity.Notification{}).Count(&notifications).Error)
			assert.Equal(t, int64(0), notifications)
		})
	}

	t.Run("valid batch grades every row", func(t *testing.T) {
		n, err := svc.BulkGrade(ctx, teacherID, essay.Value().ID, dto.BulkGradeInput{Grades: []dto.BulkGradeItem{
			{SubmissionID: s1.Value().ID.String(), Marks: marks(40), Feedback: "ok"},
			{SubmissionID: s2.Value().ID.String(), Marks: marks(50)},
		}})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, int64(2), gradedCount())
		assert.Len(t, notificationsFor(t, db, alice.Value().ID), 1)
		assert.Len(t, notificationsFor(t, db, carol.Value().ID), 1)
	})
}

func TestCreateAssignmentFanOut(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var e1, e2, e3, dropped, elsewhere *fixify.Model[entity.Enrollment]
	course := testutil.Course("Physics").With(
		testutil.Enrollment(entity.EnrollmentActive).Bind(&e1),
		testutil.Enrollment(entity.EnrollmentActive).Bind(&e2),
		testutil.Enrollment(entity.EnrollmentActive).Bind(&e3),
		testutil.Enrollment(entity.EnrollmentDropped).Bind(&dropped),
	)
	otherCourse := testutil.Course("Accounting").With(
		testutil.Enrollment(entity.EnrollmentActive).Bind(&elsewhere),
	)
	teacher := fx.Teacher("Bob", "bob")
	fx.Apply(t, course, otherCourse, teacher,
		fx.Student("A", "S001").With(e1),
		fx.Student("B", "S002").With(e2),
		fx.Student("C", "S003").With(e3),
		fx.Student("D", "S004").With(dropped),
		fx.Student("E", "S005").With(elsewhere),
	)

	svc := newTestService(t, db)
	ctx := context.Background()

	res, err := svc.CreateAssignment(ctx, teacher.Value().ID, dto.CreateAssignmentInput{
		Title:    "Kinematics",
		DueDate:  "2025-03-01",
		CourseID: course.Value().ID.String(),
	}, &commonDto.UploadedFile{Reader: strings.NewReader("brief"), FileName: "brief.pdf"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Notified)
	assert.Equal(t, entity.DefaultMaxMarks, res.Data.MaxMarks)
	require.NotNil(t, res.Data.FilePath)
	assert.True(t, strings.HasPrefix(*res.Data.FilePath, "assignments/"))

	var rows []entity.Notification
	require.NoError(t, db.Where("related_id = ?", res.Data.ID).Find(&rows).Error)
	require.Len(t, rows, 3)
	recipients := map[uuid.UUID]bool{}
	for _, n := range rows {
		recipients[n.UserID] = true
		assert.Equal(t, entity.NotificationAssignment, n.Type)
		assert.Equal(t, "New assignment 'Kinematics' has been posted for Physics", n.Message)
	}
	assert.True(t, recipients[e1.Value().UserID])
	assert.True(t, recipients[e2.Value().UserID])
	assert.True(t, recipients[e3.Value().UserID])

	t.Run("bad due date", func(t *testing.T) {
		_, err := svc.CreateAssignment(ctx, teacher.Value().ID, dto.CreateAssignmentInput{
			Title:    "Late",
			DueDate:  "01/03/2025",
			CourseID: course.Value().ID.String(),
		}, nil)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("disallowed attachment", func(t *testing.T) {
		_, err := svc.CreateAssignment(ctx, teacher.Value().ID, dto.CreateAssignmentInput{
			Title:    "Script",
			DueDate:  "2025-03-01",
			CourseID: course.Value().ID.String(),
		}, &commonDto.UploadedFile{Reader: strings.NewReader("x"), FileName: "run.exe"})
		assert.ErrorIs(t, err, apperror.ErrInvalidFileType)
	})
}

func TestMaterials(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var enrollment *fixify.Model[entity.Enrollment]
	course := testutil.Course("Physics").With(
		testutil.Enrollment(entity.EnrollmentActive).Bind(&enrollment),
	)
	teacher := fx.Teacher("Bob", "bob")
	stranger := fx.Teacher("Eve", "eve")
	fx.Apply(t, course, teacher, stranger, fx.Student("Alice", "S001").With(enrollment))

	svc := newTestService(t, db)
	ctx := context.Background()
	courseID := course.Value().ID

	t.Run("listing requires teaching the course", func(t *testing.T) {
		_, err := svc.ListMaterials(ctx, teacher.Value().ID, courseID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("file or link is required", func(t *testing.T) {
		_, err := svc.UploadMaterial(ctx, teacher.Value().ID, courseID, dto.UploadMaterialInput{Title: "Empty"}, nil)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	link, err := svc.UploadMaterial(ctx, teacher.Value().ID, courseID, dto.UploadMaterialInput{
		Title:        "Lecture recording",
		ExternalLink: "https://example.com/video",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.FileTypeLink, link.Data.FileType)
	assert.Equal(t, 1, link.Notified)

	week := 2
	draft := false
	file, err := svc.UploadMaterial(ctx, teacher.Value().ID, courseID, dto.UploadMaterialInput{
		Title:        "Slides",
		WeekNumber:   &week,
		IsPublished:  &draft,
		ExternalLink: "https://example.com/ignored",
	}, &commonDto.UploadedFile{Reader: strings.NewReader("deck"), FileName: "slides.pptx"})
	require.NoError(t, err)
	assert.Equal(t, "powerpoint", file.Data.FileType)
	assert.Equal(t, 0, file.Notified)

	list, err := svc.ListMaterials(ctx, teacher.Value().ID, courseID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, file.Data.ID, list[0].ID)

	t.Run("links cannot be downloaded by teachers", func(t *testing.T) {
		_, err := svc.DownloadMaterial(ctx, teacher.Value().ID, link.Data.ID)
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})

	t.Run("download names the file after its title", func(t *testing.T) {
		d, err := svc.DownloadMaterial(ctx, teacher.Value().ID, file.Data.ID)
		require.NoError(t, err)
		assert.Equal(t, "Slides.pptx", d.FileName)
		assert.False(t, d.Remote)
	})

	t.Run("only the owner can delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteMaterial(ctx, stranger.Value().ID, file.Data.ID), apperror.ErrForbidden)
		require.NoError(t, svc.DeleteMaterial(ctx, teacher.Value().ID, file.Data.ID))

		_, err := svc.DownloadMaterial(ctx, teacher.Value().ID, file.Data.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestCreateAnnouncementToEveryone(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	teacher := fx.Teacher("Bob", "bob")
	fx.Apply(t, teacher, fx.Student("A", "S001"), fx.Student("B", "S002"), fx.Admin("Root", "root"))

	svc := newTestService(t, db)
	res, err := svc.CreateAnnouncement(context.Background(), teacher.Value().ID, dto.CreateAnnouncementInput{
		Title:   "Campus closed",
		Content: "<p>No classes on Friday</p>",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Data.CourseID)
	assert.Equal(t, "No classes on Friday", res.Data.Content)
	assert.Equal(t, 2, res.Notified)
}

func TestGradebook(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var essay *fixify.Model[entity.Assignment]
	var aliceSub, danaSub *fixify.Model[entity.Submission]
	var aliceIn, danaIn *fixify.Model[entity.Enrollment]
	teacher := fx.Teacher("Bob", "bob").With(
		testutil.Assignment("Essay", 100, time.Now()).Bind(&essay).With(
			testutil.Submission("submissions/a.pdf").Bind(&aliceSub),
			testutil.Submission("submissions/d.pdf").Bind(&danaSub),
		),
	)
	outsider := fx.Teacher("Eve", "eve")
	course := testutil.Course("Physics").With(
		essay,
		testutil.Enrollment(entity.EnrollmentActive).Bind(&aliceIn),
		testutil.Enrollment(entity.EnrollmentDropped).Bind(&danaIn),
	)
	fx.Apply(t, teacher, outsider, course,
		fx.Student("Alice", "S001").With(aliceIn, aliceSub),
		fx.Student("Dana", "S002").With(danaIn, danaSub),
	)
	require.NoError(t, db.Model(&entity.Submission{}).
		Where("id IN ?", []uuid.UUID{aliceSub.Value().ID, danaSub.Value().ID}).
		Updates(map[string]any{"status": entity.SubmissionGraded, "marks": 80}).Error)

	svc := newTestService(t, db)
	ctx := context.Background()

	tests := []struct {
		name      string
		teacherID uuid.UUID
		courseID  uuid.UUID
		err       error
	}{
		{"teacher without content in the course", outsider.Value().ID, course.Value().ID, apperror.ErrForbidden},
		{"unknown course", teacher.Value().ID, uuid.New(), apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Gradebook(ctx, tt.teacherID, tt.courseID)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("dropped students are left out", func(t *testing.T) {
		book, err := svc.Gradebook(ctx, teacher.Value().ID, course.Value().ID)
		require.NoError(t, err)
		require.Len(t, book.Rows, 1)
		assert.Equal(t, "Alice", book.Rows[0].Student.Name)
		assert.Equal(t, 80.0, book.Rows[0].Average)
	})
}

func TestCourseStudents(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var zoe, adam, dropped *fixify.Model[entity.Enrollment]
	course := testutil.Course("Physics").With(
		testutil.Enrollment(entity.EnrollmentActive).Bind(&zoe),
		testutil.Enrollment(entity.EnrollmentActive).Bind(&adam),
		testutil.Enrollment(entity.EnrollmentDropped).Bind(&dropped),
	)
	fx.Apply(t, course,
		fx.Student("Zoe", "S001").With(zoe),
		fx.Student("Adam", "S002").With(adam),
		fx.Student("Dana", "S003").With(dropped),
	)

	svc := newTestService(t, db)
	ctx := context.Background()

	students, err := svc.CourseStudents(ctx, course.Value().ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Adam", students[0].Name)
	assert.Equal(t, "Zoe", students[1].Name)

	_, err = svc.CourseStudents(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDashboard(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var essay, quiz, foreign *fixify.Model[entity.Assignment]
	var graded, pending, elsewhere *fixify.Model[entity.Submission]
	teacher := fx.Teacher("Bob", "bob").With(
		testutil.Assignment("Essay", 100, time.Now()).Bind(&essay).With(
			testutil.Submission("submissions/a.pdf").Bind(&graded),
			testutil.Submission("submissions/b.pdf").Bind(&pending),
		),
		testutil.Assignment("Quiz", 10, time.Now()).Bind(&quiz),
	)
	other := fx.Teacher("Eve", "eve").With(
		testutil.Assignment("Lab", 10, time.Now()).Bind(&foreign).With(
			testutil.Submission("submissions/c.pdf").Bind(&elsewhere),
		),
	)
	fx.Apply(t, teacher, other,
		testutil.Course("Physics").With(essay, quiz),
		testutil.Course("Chemistry").With(foreign),
		fx.Student("Alice", "S001").With(graded, elsewhere),
		fx.Student("Carl", "S002").With(pending),
	)
	require.NoError(t, db.Model(&entity.Submission{}).Where("id = ?", graded.Value().ID).
		Updates(map[string]any{"status": entity.SubmissionGraded, "marks": 70}).Error)

	svc := newTestService(t, db)
	dash, err := svc.Dashboard(context.Background(), teacher.Value().ID)
	require.NoError(t, err)

	assert.Len(t, dash.Assignments, 2)
	assert.Len(t, dash.Courses, 2)
	assert.Equal(t, int64(2), dash.TotalSubmissions)
	assert.Equal(t, int64(1), dash.PendingSubmissions)
	assert.Equal(t, int64(1), dash.GradedSubmissions)
}

func TestCreateAnnouncementToCourse(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	var active, dropped, elsewhere *fixify.Model[entity.Enrollment]
	course := testutil.Course("Physics").With(
		testutil.Enrollment(entity.EnrollmentActive).Bind(&active),
		testutil.Enrollment(entity.EnrollmentDropped).Bind(&dropped),
	)
	other := testutil.Course("Chemistry").With(
		testutil.Enrollment(entity.EnrollmentActive).Bind(&elsewhere),
	)
	teacher := fx.Teacher("Bob", "bob")
	alice := fx.Student("Alice", "S001").With(active)
	dana := fx.Student("Dana", "S002").With(dropped)
	carl := fx.Student("Carl", "S003").With(elsewhere)
	fx.Apply(t, course, other, teacher, alice, dana, carl)

	svc := newTestService(t, db)
	ctx := context.Background()

	res, err := svc.CreateAnnouncement(ctx, teacher.Value().ID, dto.CreateAnnouncementInput{
		Title:    "Lab moved",
		Content:  "Lab is in room 4 this week",
		CourseID: course.Value().ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Data.CourseID)
	assert.Equal(t, course.Value().ID, *res.Data.CourseID)
	assert.Equal(t, 1, res.Notified)

	got := notificationsFor(t, db, alice.Value().ID)
	require.Len(t, got, 1)
	assert.Equal(t, entity.NotificationAnnouncement, got[0].Type)
	assert.Equal(t, "Lab moved", got[0].Title)
	assert.Empty(t, notificationsFor(t, db, dana.Value().ID))
	assert.Empty(t, notificationsFor(t, db, carl.Value().ID))

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.CreateAnnouncement(ctx, teacher.Value().ID, dto.CreateAnnouncementInput{
			Title:    "Lost",
			Content:  "Nobody hears this",
			CourseID: uuid.NewString(),
		})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
