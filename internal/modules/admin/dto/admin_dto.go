package dto

import (
	"anoa.com/educonnect/internal/entity"
	courseRepo "anoa.com/educonnect/internal/modules/course/repository"
)

const DefaultPassword = "password123"

type CreateUserInput struct {
	Name          string `json:"name" form:"name" binding:"required,max=100"`
	Role          string `json:"role" form:"role" binding:"required,oneof=admin teacher student"`
	Username      string `json:"username" form:"username" binding:"omitempty,min=3,max=80"`
	StudentNumber string `json:"student_number" form:"student_number" binding:"omitempty,max=20"`
	// Password falls back to DefaultPassword when empty.
	Password string `json:"password" form:"password" binding:"omitempty,min=6"`
}

// UpdateUserInput changes only the fields that are set.
type UpdateUserInput struct {
	Name          string `json:"name" form:"name" binding:"omitempty,max=100"`
	Role          string `json:"role" form:"role" binding:"omitempty,oneof=admin teacher student"`
	Username      string `json:"username" form:"username" binding:"omitempty,min=3,max=80"`
	StudentNumber string `json:"student_number" form:"student_number" binding:"omitempty,max=20"`
	Password      string `json:"password" form:"password" binding:"omitempty,min=6"`
}

type ListUsersQuery struct {
	Role string `form:"role" binding:"omitempty,oneof=admin teacher student"`
}

type CourseInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type CourseListItem struct {
	courseRepo.CourseSummary
	HasTeacher bool `json:"has_teacher"`
}

type EnrollInput struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	CourseID  string `json:"course_id" binding:"required,uuid"`
}

type DashboardStats struct {
	Students    int64 `json:"students"`
	Teachers    int64 `json:"teachers"`
	Courses     int64 `json:"courses"`
	Assignments int64 `json:"assignments"`
	Submissions int64 `json:"submissions"`
	OpenIssues  int64 `json:"open_issues"`
}

type DashboardResponse struct {
	Stats             DashboardStats             `json:"stats"`
	RecentUsers       []*entity.User             `json:"recent_users"`
	RecentEnrollments []*entity.Enrollment       `json:"recent_enrollments"`
	CourseStats       []courseRepo.CourseSummary `json:"course_stats"`
}
