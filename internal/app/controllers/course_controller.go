package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/app/services"
	"github.com/yigit/lms/internal/app/views"
	"github.com/yigit/lms/internal/middleware"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/helpers"
	"github.com/yigit/lms/internal/pkg/logger"
	"github.com/yigit/lms/internal/pkg/validation"
)

// Success messages shown after a completed write.
const (
	MsgLessonCreated   = "Урок был создан успешно"
	MsgCourseCreated   = "Курс был создан успешно"
	MsgCourseAssigned  = "Курс был назначен успешно"
	MsgTeacherAssigned = "Преподаватель был назначен успешно"
)

// Model keys shared by the course views.
const (
	keyCourseID      = "courseId"
	keyCurrentPage   = "currentPage"
	keyTotalPages    = "totalPages"
	keyTotalElements = "totalElements"
	keyError         = "error"
	keySuccess       = "success"
	keyFieldErrors   = "fieldErrors"
	keyFormValues    = "formValues"

	keyTeacherCourses   = "teacherCourses"
	keyTeacherCourse    = "teacherCourse"
	keyStudentCourses   = "studentCoursesDto"
	keyStudentCourse    = "studentCourseDto"
	keyCreateLessonDto  = "createLessonDto"
	keyCreateCourseDto  = "createCourseDto"
	keyAssignCourseDto  = "assignCourseDto"
	keyAssignTeacherDto = "assignTeacherDto"
)

// PrincipalHandler is a course page handler. The caller's principal is
// resolved by the auth middleware and passed in explicitly.
type PrincipalHandler func(ctx *gin.Context, principal *models.Principal)

// CourseOwnership checks that a teacher owns a course.
type CourseOwnership interface {
	ValidateCourseOwnership(ctx context.Context, courseID, teacherID int64) error
}

// CourseController serves the course, lesson and enrolment pages.
type CourseController struct {
	courseService services.CourseService
	lessonService services.LessonService
	ownership     CourseOwnership
	validator     *validation.FormValidator
	renderer      views.Renderer
}

// NewCourseController creates a new CourseController
func NewCourseController(
	courseService services.CourseService,
	lessonService services.LessonService,
	ownership CourseOwnership,
	validator *validation.FormValidator,
	renderer views.Renderer,
) *CourseController {
	return &CourseController{
		courseService: courseService,
		lessonService: lessonService,
		ownership:     ownership,
		validator:     validator,
		renderer:      renderer,
	}
}

// --- Teacher pages ---

// GetCreateLessonPage renders the empty lesson form of an owned course.
// GET /courses/teacher/:id/create/lesson
func (c *CourseController) GetCreateLessonPage(ctx *gin.Context, principal *models.Principal) {
	courseID, ok := c.ownedCourseID(ctx, principal)
	if !ok {
		return
	}

	c.render(ctx, views.TeacherCreateLesson, http.StatusOK, views.Model{
		keyCourseID:        courseID,
		keyCreateLessonDto: dto.CreateLessonDto{},
	})
}

// CreateLesson adds a lesson to the course named in the path. A course id
// in the form body is never consulted.
// POST /courses/teacher/:id/create/lesson
func (c *CourseController) CreateLesson(ctx *gin.Context, principal *models.Principal) {
	courseID, ok := c.ownedCourseID(ctx, principal)
	if !ok {
		return
	}

	var form dto.CreateLessonDto
	model := views.Model{keyCourseID: courseID}
	if !c.bindForm(ctx, views.TeacherCreateLesson, keyCreateLessonDto, &form, model) {
		return
	}

	if _, err := c.lessonService.Create(ctx.Request.Context(), form, courseID); err != nil {
		c.handleWriteError(ctx, views.TeacherCreateLesson, keyCreateLessonDto, form, model, err)
		return
	}

	model[keySuccess] = MsgLessonCreated
	model[keyCreateLessonDto] = dto.CreateLessonDto{}
	c.render(ctx, views.TeacherCreateLesson, http.StatusOK, model)
}

// GetTeacherCourse shows an owned course with its lessons and students.
// GET /courses/teacher/:id
func (c *CourseController) GetTeacherCourse(ctx *gin.Context, principal *models.Principal) {
	courseID, ok := c.ownedCourseID(ctx, principal)
	if !ok {
		return
	}

	course, err := c.courseService.GetTeacherCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.render(ctx, views.TeacherCourse, http.StatusOK, views.Model{keyTeacherCourse: course})
}

// GET /courses/teacher
func (c *CourseController) GetTeacherCourses(ctx *gin.Context, principal *models.Principal) {
	page, err := c.courseService.GetTeacherCourses(ctx.Request.Context(), principal.UserID, helpers.ParsePageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.render(ctx, views.TeacherCourses, http.StatusOK, views.Model{
		keyCurrentPage:    page.CurrentPage(),
		keyTotalPages:     page.TotalPages,
		keyTotalElements:  page.TotalElements,
		keyTeacherCourses: page.Items,
	})
}

// --- Student pages ---

// GetStudentCourse shows a course the caller is enrolled in.
// GET /courses/:id
func (c *CourseController) GetStudentCourse(ctx *gin.Context, principal *models.Principal) {
	courseID, ok := parseCourseID(ctx)
	if !ok {
		return
	}

	course, err := c.courseService.GetStudentCourse(ctx.Request.Context(), courseID, principal.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.render(ctx, views.StudentCourse, http.StatusOK, views.Model{keyStudentCourse: course})
}

// GET /courses
func (c *CourseController) GetStudentCourses(ctx *gin.Context, principal *models.Principal) {
	page, err := c.courseService.GetStudentCourses(ctx.Request.Context(), principal.UserID, helpers.ParsePageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.render(ctx, views.StudentCourses, http.StatusOK, views.Model{
		keyCurrentPage:    page.CurrentPage(),
		keyTotalPages:     page.TotalPages,
		keyTotalElements:  page.TotalElements,
		keyStudentCourses: page.Items,
	})
}

// --- Admin pages ---

// GET /courses/create
func (c *CourseController) GetCreatePage(ctx *gin.Context, _ *models.Principal) {
	c.render(ctx, views.AdminCreateCourse, http.StatusOK, views.Model{keyCreateCourseDto: dto.CreateCourseDto{}})
}

// Create adds a course without a teacher.
// POST /courses/create
func (c *CourseController) Create(ctx *gin.Context, _ *models.Principal) {
	var form dto.CreateCourseDto
	model := views.Model{}
	if !c.bindForm(ctx, views.AdminCreateCourse, keyCreateCourseDto, &form, model) {
		return
	}

	if _, err := c.courseService.Create(ctx.Request.Context(), form); err != nil {
		c.handleWriteError(ctx, views.AdminCreateCourse, keyCreateCourseDto, form, model, err)
		return
	}

	model[keySuccess] = MsgCourseCreated
	model[keyCreateCourseDto] = dto.CreateCourseDto{}
	c.render(ctx, views.AdminCreateCourse, http.StatusOK, model)
}

// GET /courses/assign
func (c *CourseController) GetAssignPage(ctx *gin.Context, _ *models.Principal) {
	c.render(ctx, views.AdminAssignCourse, http.StatusOK, views.Model{keyAssignCourseDto: dto.AssignCourseDto{}})
}

// Assign enrols students into a course.
// POST /courses/assign
func (c *CourseController) Assign(ctx *gin.Context, _ *models.Principal) {
	var form dto.AssignCourseDto
	model := views.Model{}
	if !c.bindForm(ctx, views.AdminAssignCourse, keyAssignCourseDto, &form, model) {
		return
	}

	if err := c.courseService.Assign(ctx.Request.Context(), form); err != nil {
		c.handleWriteError(ctx, views.AdminAssignCourse, keyAssignCourseDto, form, model, err)
		return
	}

	model[keySuccess] = MsgCourseAssigned
	model[keyAssignCourseDto] = dto.AssignCourseDto{}
	c.render(ctx, views.AdminAssignCourse, http.StatusOK, model)
}

// GET /courses/assign/teacher
func (c *CourseController) GetAssignTeacherPage(ctx *gin.Context, _ *models.Principal) {
	c.render(ctx, views.AdminAssignTeacher, http.StatusOK, views.Model{keyAssignTeacherDto: dto.AssignTeacherDto{}})
}

// AssignTeacher sets or replaces the teacher of a course.
// POST /courses/assign/teacher
func (c *CourseController) AssignTeacher(ctx *gin.Context, _ *models.Principal) {
	var form dto.AssignTeacherDto
	model := views.Model{}
	if !c.bindForm(ctx, views.AdminAssignTeacher, keyAssignTeacherDto, &form, model) {
		return
	}

	if err := c.courseService.AssignTeacher(ctx.Request.Context(), form); err != nil {
		c.handleWriteError(ctx, views.AdminAssignTeacher, keyAssignTeacherDto, form, model, err)
		return
	}

	model[keySuccess] = MsgTeacherAssigned
	model[keyAssignTeacherDto] = dto.AssignTeacherDto{}
	c.render(ctx, views.AdminAssignTeacher, http.StatusOK, model)
}

// --- helpers ---

func (c *CourseController) render(ctx *gin.Context, view string, status int, model views.Model) {
	c.renderer.Render(ctx, views.View{Name: view, Status: status, Model: model})
}

// bindForm binds and validates form into ptr. On failure it re-renders view
// with the field errors, the partially bound form and the raw values, and
// returns false.
func (c *CourseController) bindForm(ctx *gin.Context, view, formKey string, ptr interface{}, model views.Model) bool {
	errs := c.validator.Bind(ctx, ptr)
	if !errs.HasErrors() {
		return true
	}

	model[keyFieldErrors] = errs
	model[formKey] = ptr
	model[keyFormValues] = validation.FormValues(ctx)
	c.render(ctx, view, http.StatusBadRequest, model)
	return false
}

// handleWriteError re-renders view with the message of a business error.
// Any other error is left to the central error handler.
func (c *CourseController) handleWriteError(ctx *gin.Context, view, formKey string, form interface{}, model views.Model, err error) {
	be, ok := apperrors.AsBusinessError(err)
	if !ok {
		middleware.HandleAPIError(ctx, err)
		return
	}

	logger.Warn().Err(be.Err).
		Str("view", view).
		Str("code", be.Code).
		Msg(be.Message)

	model[keyError] = be.Message
	model[formKey] = form
	c.render(ctx, view, http.StatusUnprocessableEntity, model)
}

// ownedCourseID parses the path course id and checks that the principal
// teaches it. It writes the error response itself and returns false on any
// failure.
func (c *CourseController) ownedCourseID(ctx *gin.Context, principal *models.Principal) (int64, bool) {
	courseID, ok := parseCourseID(ctx)
	if !ok {
		return 0, false
	}

	err := c.ownership.ValidateCourseOwnership(ctx.Request.Context(), courseID, principal.UserID)
	switch {
	case err == nil:
		return courseID, true
	case errors.Is(err, apperrors.ErrCourseNotFound), errors.Is(err, apperrors.ErrPermissionDenied):
		// Unknown and foreign courses look the same to the caller.
		middleware.AbortForbidden(ctx)
	default:
		middleware.HandleAPIError(ctx, err)
	}
	return 0, false
}

func parseCourseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid course ID")
		errorDetail = errorDetail.WithDetails("Course ID must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
