package handler

import (
	"net/http"

	"anoa.com/educonnect/internal/modules/teacher/dto"
	teacherService "anoa.com/educonnect/internal/modules/teacher/service"
	"anoa.com/educonnect/pkg/request"
	"anoa.com/educonnect/pkg/response"
	"anoa.com/educonnect/pkg/validator"
	"github.com/gin-gonic/gin"
)

type TeacherHandler struct {
	teacherService teacherService.TeacherService
	maxUploadBytes int64
}

func NewTeacherHandler(teacherService teacherService.TeacherService, maxUploadBytes int64) *TeacherHandler {
	return &TeacherHandler{
		teacherService: teacherService,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *TeacherHandler) Dashboard(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.teacherService.Dashboard(c.Request.Context(), teacherID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *TeacherHandler) CreateAssignment(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateAssignmentInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	file, closer, err := request.FormFile(c, "file", h.maxUploadBytes)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	res, err := h.teacherService.CreateAssignment(c.Request.Context(), teacherID, input, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *TeacherHandler) ListAssignments(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.teacherService.ListAssignments(c.Request.Context(), teacherID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *TeacherHandler) CourseStudents(c *gin.Context) {
	courseID, err := response.ParamUUID(c, "course_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.teacherService.CourseStudents(c.Request.Context(), courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *TeacherHandler) ReviewSubmissions(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	assignmentID, err := response.ParamUUID(c, "assignment_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.teacherService.ReviewSubmissions(c.Request.Context(), teacherID, assignmentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *TeacherHandler) DownloadSubmission(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	submissionID, err := response.ParamUUID(c, "submission_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := h.teacherService.DownloadSubmission(c.Request.Context(), teacherID, submissionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.SendFile(c, file)
}

func (h *TeacherHandler) Grade(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	submissionID, err := response.ParamUUID(c, "submission_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.GradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.teacherService.Grade(c.Request.Context(), teacherID, submissionID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "submission graded successfully", "data": res})
}

func (h *TeacherHandler) BulkGrade(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	assignmentID, err := response.ParamUUID(c, "assignment_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.BulkGradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	graded, err := h.teacherService.BulkGrade(c.Request.Context(), teacherID, assignmentID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "submissions graded successfully", "graded": graded})
}

func (h *TeacherHandler) Gradebook(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	courseID, err := response.ParamUUID(c, "course_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.teacherService.Gradebook(c.Request.Context(), teacherID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *TeacherHandler) ListMaterials(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	courseID, err := response.ParamUUID(c, "course_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.teacherService.ListMaterials(c.Request.Context(), teacherID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *TeacherHandler) UploadMaterial(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	courseID, err := response.ParamUUID(c, "course_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UploadMaterialInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	file, closer, err := request.FormFile(c, "file", h.maxUploadBytes)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	res, err := h.teacherService.UploadMaterial(c.Request.Context(), teacherID, courseID, input, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *TeacherHandler) DeleteMaterial(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	materialID, err := response.ParamUUID(c, "material_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.teacherService.DeleteMaterial(c.Request.Context(), teacherID, materialID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "material deleted successfully"})
}

func (h *TeacherHandler) DownloadMaterial(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	materialID, err := response.ParamUUID(c, "material_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := h.teacherService.DownloadMaterial(c.Request.Context(), teacherID, materialID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.SendFile(c, file)
}

func (h *TeacherHandler) CreateAnnouncement(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateAnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.teacherService.CreateAnnouncement(c.Request.Context(), teacherID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *TeacherHandler) ListAnnouncements(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.teacherService.ListAnnouncements(c.Request.Context(), teacherID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
