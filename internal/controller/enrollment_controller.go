package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	CourseService     *service.CourseService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService, courseService *service.CourseService) *EnrollmentController {
	return &EnrollmentController{
		EnrollmentService: enrollmentService,
		CourseService:     courseService,
	}
}

type enrollRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// Enroll godoc
// @Summary Enroll the authenticated user into a course
// @Tags enrollments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body enrollRequest true "Course to enroll into"
// @Success 201 {object} util.Response{data=model.Course} "Created"
// @Failure 404 {object} util.Response "Course not found"
// @Failure 409 {object} util.Response "Already enrolled"
// @Router /api/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req enrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.EnrollmentService.Enroll(claims.UserID, req.CourseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// CheckEnrollment godoc
// @Summary Check whether the user is enrolled in a course
// @Tags enrollments
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId query int true "Course ID"
// @Success 200 {object} util.Response{data=object} "Success"
// @Router /api/enrollments/check [get]
func (c *EnrollmentController) CheckEnrollment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	courseID := util.MustParseUint(ctx.Query("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "courseId parameter is required")
		return
	}

	enrolled, err := c.EnrollmentService.IsEnrolled(claims.UserID, courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"enrolled": enrolled})
}

// ListEnrolledCourses godoc
// @Summary Courses the authenticated user is enrolled in
// @Tags enrollments
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course} "Success"
// @Router /api/enrolled-courses [get]
func (c *EnrollmentController) ListEnrolledCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	courses, err := c.CourseService.ListEnrolled(claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
