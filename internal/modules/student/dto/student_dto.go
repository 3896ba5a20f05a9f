package dto

import (
	"anoa.com/educonnect/internal/entity"
)

type SubmitInput struct {
	Notes string `form:"notes"`
}

// AssignmentView pairs an assignment with the student's own submission, if any.
type AssignmentView struct {
	Assignment *entity.Assignment `json:"assignment"`
	Submission *entity.Submission `json:"submission"`
}

type DashboardResponse struct {
	Courses       []*entity.Course              `json:"courses"`
	Assignments   []*entity.Assignment          `json:"assignments"`
	Submissions   map[string]*entity.Submission `json:"submissions"`
	Announcements []*entity.Announcement        `json:"announcements"`
}

type MaterialGroup struct {
	Label      string                    `json:"label"`
	WeekNumber *int                      `json:"week_number"`
	Materials  []*entity.LectureMaterial `json:"materials"`
}

type CourseMaterialsResponse struct {
	Course *entity.Course  `json:"course"`
	Weeks  []MaterialGroup `json:"weeks"`
}

type SearchTokenResponse struct {
	Token string `json:"token"`
	Index string `json:"index"`
}
