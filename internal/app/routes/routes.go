package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lms/internal/app/controllers"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/middleware"
)

// Route binds one method and path to a handler that requires a role.
type Route struct {
	Method  string
	Path    string
	Role    models.Role
	Handler controllers.PrincipalHandler
}

// CourseRoutes is the full course page surface. Every entry requires a
// valid token and exactly the listed role.
func CourseRoutes(cc *controllers.CourseController) []Route {
	return []Route{
		// Teacher
		{http.MethodGet, "/courses/teacher/:id/create/lesson", models.RoleTeacher, cc.GetCreateLessonPage},
		{http.MethodPost, "/courses/teacher/:id/create/lesson", models.RoleTeacher, cc.CreateLesson},
		{http.MethodGet, "/courses/teacher/:id", models.RoleTeacher, cc.GetTeacherCourse},
		{http.MethodGet, "/courses/teacher", models.RoleTeacher, cc.GetTeacherCourses},

		// Student
		{http.MethodGet, "/courses/:id", models.RoleStudent, cc.GetStudentCourse},
		{http.MethodGet, "/courses", models.RoleStudent, cc.GetStudentCourses},

		// Admin
		{http.MethodGet, "/courses/create", models.RoleAdmin, cc.GetCreatePage},
		{http.MethodPost, "/courses/create", models.RoleAdmin, cc.Create},
		{http.MethodGet, "/courses/assign", models.RoleAdmin, cc.GetAssignPage},
		{http.MethodPost, "/courses/assign", models.RoleAdmin, cc.Assign},
		{http.MethodGet, "/courses/assign/teacher", models.RoleAdmin, cc.GetAssignTeacherPage},
		{http.MethodPost, "/courses/assign/teacher", models.RoleAdmin, cc.AssignTeacher},
	}
}

// Register attaches JWTAuth and RoleRequired in front of every route.
func Register(router gin.IRouter, authMiddleware *middleware.AuthMiddleware, table []Route) {
	for _, r := range table {
		router.Handle(r.Method, r.Path,
			authMiddleware.JWTAuth(),
			authMiddleware.RoleRequired(r.Role),
			withPrincipal(r.Handler),
		)
	}
}

func withPrincipal(h controllers.PrincipalHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"),
			))
			return
		}
		h(c, principal)
	}
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	courseController *controllers.CourseController,
	authMiddleware *middleware.AuthMiddleware,
	metrics *middleware.HTTPMetrics,
) {
	Register(router, authMiddleware, CourseRoutes(courseController))

	// Health check endpoint (public)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.APIResponse{
			Data:      gin.H{"status": "ok"},
			Timestamp: time.Now(),
		})
	})

	if metrics != nil {
		router.GET("/metrics", metrics.Handler())
	}
}
