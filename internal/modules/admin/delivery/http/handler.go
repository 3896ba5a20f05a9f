package handler

import (
	"net/http"

	"anoa.com/educonnect/internal/modules/admin/dto"
	adminService "anoa.com/educonnect/internal/modules/admin/service"
	enrollmentService "anoa.com/educonnect/internal/modules/enrollment/service"
	"anoa.com/educonnect/pkg/request"
	"anoa.com/educonnect/pkg/response"
	"anoa.com/educonnect/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService      adminService.AdminService
	enrollmentService enrollmentService.EnrollmentService
	maxUploadBytes    int64
}

func NewAdminHandler(adminService adminService.AdminService, enrollmentService enrollmentService.EnrollmentService, maxUploadBytes int64) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		enrollmentService: enrollmentService,
		maxUploadBytes:    maxUploadBytes,
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	res, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query dto.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.adminService.ListUsers(c.Request.Context(), query.Role)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input dto.CreateUserInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	picture, closer, err := request.FormFile(c, "profile_pic", h.maxUploadBytes)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	res, err := h.adminService.CreateUser(c.Request.Context(), input, picture)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user created successfully", "data": res})
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateUserInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	picture, closer, err := request.FormFile(c, "profile_pic", h.maxUploadBytes)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	res, err := h.adminService.UpdateUser(c.Request.Context(), id, input, picture)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated successfully", "data": res})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), actorID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

func (h *AdminHandler) ListCourses(c *gin.Context) {
	res, err := h.adminService.ListCourses(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *AdminHandler) CreateCourse(c *gin.Context) {
	var input dto.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.adminService.CreateCourse(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "course created successfully", "data": res})
}

func (h *AdminHandler) UpdateCourse(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.adminService.UpdateCourse(c.Request.Context(), id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course updated successfully", "data": res})
}

func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.adminService.DeleteCourse(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course deleted successfully"})
}

func (h *AdminHandler) ListEnrollments(c *gin.Context) {
	res, err := h.enrollmentService.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *AdminHandler) Enroll(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.EnrollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	// binding already checked both are uuids
	res, err := h.enrollmentService.Enroll(c.Request.Context(), adminID,
		uuid.MustParse(input.StudentID), uuid.MustParse(input.CourseID))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "student enrolled successfully", "data": res})
}

func (h *AdminHandler) DropEnrollment(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.enrollmentService.Drop(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "enrollment dropped"})
}
