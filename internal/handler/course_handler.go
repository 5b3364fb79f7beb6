package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-gpa-api/internal/models"
	"github.com/noah-isme/course-gpa-api/internal/service"
	appErrors "github.com/noah-isme/course-gpa-api/pkg/errors"
	"github.com/noah-isme/course-gpa-api/pkg/response"
)

const (
	msgCourseDeleted = "Course deleted successfully"
	msgResetDone     = "Reset completed"
)

type courseService interface {
	List(ctx context.Context) ([]models.Course, error)
	GetByName(ctx context.Context, name string) (*models.Course, error)
	Create(ctx context.Context, req service.CourseRequest) (*models.CourseResult, error)
	Update(ctx context.Context, id int, req service.CourseRequest) (*models.CourseResult, error)
	Delete(ctx context.Context, id int) error
	Reset(ctx context.Context) error
}

// CourseHandler handles course endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// GetByName godoc
// @Summary Get course by name (case-insensitive)
// @Tags Courses
// @Produce json
// @Param name path string true "Course name"
// @Success 200 {object} models.Course
// @Failure 404 {object} response.ErrorBody
// @Router /courses/{name} [get]
func (h *CourseHandler) GetByName(c *gin.Context) {
	course, err := h.service.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CourseRequest true "Course payload"
// @Success 201 {object} models.CourseResult
// @Failure 400 {object} response.ErrorBody
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.CourseRequest true "Course payload"
// @Success 200 {object} models.CourseResult
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Produce plain
// @Param id path int true "Course ID"
// @Success 200 {string} string
// @Failure 404 {object} response.ErrorBody
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, msgCourseDeleted)
}

// Reset empties the store. Only mounted for test deployments.
func (h *CourseHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, msgResetDone)
}

func courseID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course id: "+raw))
		return 0, false
	}
	return id, true
}
