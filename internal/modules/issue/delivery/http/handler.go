package handler

import (
	"net/http"

	"anoa.com/educonnect/internal/modules/issue/dto"
	issueService "anoa.com/educonnect/internal/modules/issue/service"
	"anoa.com/educonnect/pkg/response"
	"anoa.com/educonnect/pkg/validator"
	"github.com/gin-gonic/gin"
)

type IssueHandler struct {
	issueService issueService.IssueService
}

func NewIssueHandler(issueService issueService.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

func (h *IssueHandler) Report(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.ReportIssueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.issueService.Report(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "issue reported successfully", "data": res})
}

func (h *IssueHandler) List(c *gin.Context) {
	var query dto.ListIssuesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.issueService.List(c.Request.Context(), query.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *IssueHandler) Resolve(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.issueService.Resolve(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "issue resolved", "data": res})
}
