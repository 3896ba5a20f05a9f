package dto

import (
	"anoa.com/educonnect/internal/entity"
	"github.com/google/uuid"
)

type CreateAssignmentInput struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description"`
	DueDate     string `form:"due_date" binding:"required,datetime=2006-01-02"`
	CourseID    string `form:"course_id" binding:"required,uuid"`
	MaxMarks    int    `form:"max_marks" binding:"omitempty,gt=0"`
}

type GradeInput struct {
	Marks    *float64 `json:"marks" binding:"required"`
	Feedback string   `json:"feedback"`
}

type BulkGradeItem struct {
	SubmissionID string   `json:"submission_id" binding:"required,uuid"`
	Marks        *float64 `json:"marks" binding:"required"`
	Feedback     string   `json:"feedback"`
}

type BulkGradeInput struct {
	Grades []BulkGradeItem `json:"grades" binding:"required,min=1,dive"`
}

type UploadMaterialInput struct {
	Title        string `form:"title" binding:"required,max=200"`
	Description  string `form:"description"`
	WeekNumber   *int   `form:"week_number" binding:"omitempty,min=1"`
	IsPublished  *bool  `form:"is_published"`
	ExternalLink string `form:"external_link" binding:"omitempty,url"`
}

type CreateAnnouncementInput struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
	// CourseID is empty for an announcement to every student.
	CourseID string `json:"course_id" binding:"omitempty,uuid"`
}

type DashboardResponse struct {
	Assignments        []*entity.Assignment `json:"assignments"`
	Courses            []*entity.Course     `json:"courses"`
	TotalSubmissions   int64                `json:"total_submissions"`
	PendingSubmissions int64                `json:"pending_submissions"`
	GradedSubmissions  int64                `json:"graded_submissions"`
}

// PublishResult is returned by operations that notify students.
type PublishResult[T any] struct {
	Data     T   `json:"data"`
	Notified int `json:"notified"`
}

type ReviewStats struct {
	TotalStudents  int     `json:"total_students"`
	SubmittedCount int     `json:"submitted_count"`
	GradedCount    int     `json:"graded_count"`
	AverageMarks   float64 `json:"average_marks"`
}

type SubmissionReview struct {
	Assignment  *entity.Assignment   `json:"assignment"`
	Submissions []*entity.Submission `json:"submissions"`
	Stats       ReviewStats          `json:"stats"`
}

type GradebookCell struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	Title        string    `json:"title"`
	MaxMarks     int       `json:"max_marks"`
	Status       string    `json:"status"`
	Marks        *float64  `json:"marks"`
	Percentage   *float64  `json:"percentage"`
}

type GradebookRow struct {
	Student       *entity.User    `json:"student"`
	Grades        []GradebookCell `json:"grades"`
	TotalMarks    float64         `json:"total_marks"`
	TotalPossible int             `json:"total_possible"`
	GradedCount   int             `json:"graded_count"`
	Average       float64         `json:"average"`
}

type GradebookResponse struct {
	Course      *entity.Course       `json:"course"`
	Assignments []*entity.Assignment `json:"assignments"`
	Rows        []GradebookRow       `json:"rows"`
}
