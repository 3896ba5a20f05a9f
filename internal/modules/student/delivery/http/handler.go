package handler

import (
	"net/http"

	"anoa.com/educonnect/internal/modules/student/dto"
	studentService "anoa.com/educonnect/internal/modules/student/service"
	commonDto "anoa.com/educonnect/pkg/dto"
	"anoa.com/educonnect/pkg/request"
	"anoa.com/educonnect/pkg/response"
	"anoa.com/educonnect/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StudentHandler struct {
	studentService studentService.StudentService
	maxUploadBytes int64
}

func NewStudentHandler(studentService studentService.StudentService, maxUploadBytes int64) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *StudentHandler) Dashboard(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studentService.Dashboard(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *StudentHandler) Assignments(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studentService.Assignments(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *StudentHandler) Grades(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studentService.Grades(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *StudentHandler) Submit(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	assignmentID, err := response.ParamUUID(c, "assignment_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SubmitInput
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

	res, err := h.studentService.Submit(c.Request.Context(), studentID, assignmentID, input, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "assignment submitted successfully", "data": res})
}

// download runs fetch with the caller and the UUID path parameter, then
// streams or redirects to the result.
func (h *StudentHandler) download(c *gin.Context, param string, fetch func(studentID, id uuid.UUID) (*commonDto.FileDownload, error)) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamUUID(c, param)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := fetch(studentID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.SendFile(c, file)
}

func (h *StudentHandler) DownloadSubmission(c *gin.Context) {
	h.download(c, "submission_id", func(studentID, id uuid.UUID) (*commonDto.FileDownload, error) {
		return h.studentService.DownloadSubmission(c.Request.Context(), studentID, id)
	})
}

func (h *StudentHandler) DownloadAssignment(c *gin.Context) {
	h.download(c, "assignment_id", func(studentID, id uuid.UUID) (*commonDto.FileDownload, error) {
		return h.studentService.DownloadAssignment(c.Request.Context(), studentID, id)
	})
}

func (h *StudentHandler) DownloadMaterial(c *gin.Context) {
	h.download(c, "material_id", func(studentID, id uuid.UUID) (*commonDto.FileDownload, error) {
		return h.studentService.DownloadMaterial(c.Request.Context(), studentID, id)
	})
}

func (h *StudentHandler) CourseMaterials(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	courseID, err := response.ParamUUID(c, "course_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studentService.CourseMaterials(c.Request.Context(), studentID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *StudentHandler) SearchToken(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studentService.SearchToken(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
