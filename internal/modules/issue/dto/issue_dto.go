package dto

type ReportIssueInput struct {
	Description string `json:"description" binding:"required,max=2000"`
}

type ListIssuesQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=open resolved"`
}
