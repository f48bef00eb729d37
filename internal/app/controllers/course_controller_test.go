package controllers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lms/internal/app/controllers"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/app/routes"
	"github.com/yigit/lms/internal/app/views"
	"github.com/yigit/lms/internal/middleware"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/auth"
	"github.com/yigit/lms/internal/pkg/helpers"
	"github.com/yigit/lms/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- spies ---

type spyCourseService struct {
	calls []string

	createErr        error
	assignErr        error
	assignTeacherErr error
	teacherCourses   []*models.Course
	studentCourse    *dto.StudentCourseDto

	lastAssignTeacher dto.AssignTeacherDto
}

func (s *spyCourseService) Create(_ context.Context, req dto.CreateCourseDto) (*models.Course, error) {
	s.calls = append(s.calls, "Create")
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Course{ID: 1, Title: req.Title}, nil
}

func (s *spyCourseService) Assign(_ context.Context, _ dto.AssignCourseDto) error {
	s.calls = append(s.calls, "Assign")
	return s.assignErr
}

func (s *spyCourseService) AssignTeacher(_ context.Context, req dto.AssignTeacherDto) error {
	s.calls = append(s.calls, "AssignTeacher")
	s.lastAssignTeacher = req
	return s.assignTeacherErr
}

func (s *spyCourseService) GetTeacherCourse(_ context.Context, courseID int64) (*dto.TeacherCourseResponse, error) {
	s.calls = append(s.calls, "GetTeacherCourse")
	return &dto.TeacherCourseResponse{Course: &models.Course{ID: courseID}}, nil
}

func (s *spyCourseService) GetTeacherCourses(_ context.Context, _ int64, req dto.PageRequest) (*dto.Page[*models.Course], error) {
	s.calls = append(s.calls, "GetTeacherCourses")
	req = helpers.NormalizePageRequest(req)
	total := len(s.teacherCourses)
	start := min(req.Page*req.Size, total)
	end := min(start+req.Size, total)
	return helpers.NewPage(s.teacherCourses[start:end], req, int64(total)), nil
}

func (s *spyCourseService) GetStudentCourse(_ context.Context, _, _ int64) (*dto.StudentCourseDto, error) {
	s.calls = append(s.calls, "GetStudentCourse")
	if s.studentCourse == nil {
		return nil, apperrors.ErrCourseNotFound
	}
	return s.studentCourse, nil
}

func (s *spyCourseService) GetStudentCourses(_ context.Context, _ int64, req dto.PageRequest) (*dto.Page[dto.StudentCourseSummary], error) {
	s.calls = append(s.calls, "GetStudentCourses")
	return helpers.NewPage[dto.StudentCourseSummary](nil, req, 0), nil
}

type spyLessonService struct {
	calls        int
	lastCourseID int64
	lastForm     dto.CreateLessonDto
	err          error
}

func (s *spyLessonService) Create(_ context.Context, req dto.CreateLessonDto, courseID int64) (*models.Lesson, error) {
	s.calls++
	s.lastCourseID = courseID
	s.lastForm = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Lesson{ID: 1, CourseID: courseID, Title: req.Title}, nil
}

// ownerTable maps course id to teacher id.
type ownerTable map[int64]int64

func (o ownerTable) ValidateCourseOwnership(_ context.Context, courseID, teacherID int64) error {
	owner, ok := o[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if owner != teacherID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// --- harness ---

const (
	teacherID int64 = 7
	otherID   int64 = 8
)

type harness struct {
	t       *testing.T
	router  *gin.Engine
	jwt     *auth.JWTService
	courses *spyCourseService
	lessons *spyLessonService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fv, err := validation.NewFormValidator("ru")
	if err != nil {
		t.Fatalf("NewFormValidator: %v", err)
	}
	jwtSvc := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "lms.test"})

	h := &harness{
		t:       t,
		router:  gin.New(),
		jwt:     jwtSvc,
		courses: &spyCourseService{},
		lessons: &spyLessonService{},
	}
	cc := controllers.NewCourseController(h.courses, h.lessons, ownerTable{5: teacherID, 6: otherID}, fv, views.JSONRenderer{})
	routes.Register(h.router, middleware.NewAuthMiddleware(jwtSvc), routes.CourseRoutes(cc))
	return h
}

type viewResponse struct {
	View  string                 `json:"view"`
	Model map[string]interface{} `json:"model"`
}

func (h *harness) do(method, path string, role models.Role, form url.Values) (*httptest.ResponseRecorder, viewResponse) {
	h.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		tok, _, err := h.jwt.GenerateToken(&models.Principal{UserID: teacherID, Roles: []models.Role{role}})
		if err != nil {
			h.t.Fatalf("GenerateToken: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var vr viewResponse
	if strings.Contains(w.Body.String(), `"view"`) {
		if err := json.Unmarshal(w.Body.Bytes(), &vr); err != nil {
			h.t.Fatalf("decode body: %v (%s)", err, w.Body.String())
		}
	}
	return w, vr
}

func (h *harness) serviceCalls() int {
	return len(h.courses.calls) + h.lessons.calls
}

// --- tests ---

func TestRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(http.MethodGet, "/courses", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got=%d want=401", w.Code)
	}
	if h.serviceCalls() != 0 {
		t.Fatalf("service called without a token")
	}
}

func TestWrongRoleIsForbiddenBeforeAnyServiceCall(t *testing.T) {
	cases := []struct {
		method string
		path   string
		role   models.Role
	}{
		{http.MethodPost, "/courses/create", models.RoleStudent},
		{http.MethodPost, "/courses/assign", models.RoleTeacher},
		{http.MethodPost, "/courses/assign/teacher", models.RoleStudent},
		{http.MethodPost, "/courses/teacher/5/create/lesson", models.RoleAdmin},
		{http.MethodGet, "/courses/teacher", models.RoleStudent},
		{http.MethodGet, "/courses/1", models.RoleTeacher},
		{http.MethodGet, "/courses", models.RoleAdmin},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			h := newHarness(t)
			form := url.Values{"title": {"Valid title"}, "content": {"Long enough content"}, "courseId": {"1"}, "teacherId": {"2"}, "studentIds": {"3"}}
			w, _ := h.do(tc.method, tc.path, tc.role, form)
			if w.Code != http.StatusForbidden {
				t.Fatalf("status: got=%d want=403", w.Code)
			}
			if h.serviceCalls() != 0 {
				t.Fatalf("service called: courses=%v lessons=%d", h.courses.calls, h.lessons.calls)
			}
		})
	}
}

func TestInvalidFormRerendersWithInput(t *testing.T) {
	h := newHarness(t)

	w, vr := h.do(http.MethodPost, "/courses/create", models.RoleAdmin, url.Values{"title": {"ab"}, "description": {"short"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d want=400", w.Code)
	}
	if vr.View != views.AdminCreateCourse {
		t.Fatalf("view: got=%q", vr.View)
	}
	fieldErrors, _ := vr.Model["fieldErrors"].(map[string]interface{})
	if _, ok := fieldErrors["title"]; !ok {
		t.Fatalf("missing title error: %v", vr.Model["fieldErrors"])
	}
	form, _ := vr.Model["createCourseDto"].(map[string]interface{})
	if form["title"] != "ab" || form["description"] != "short" {
		t.Fatalf("input not retained: %v", form)
	}
	if len(h.courses.calls) != 0 {
		t.Fatalf("service called on invalid form: %v", h.courses.calls)
	}
}

func TestBlankInputIsRejected(t *testing.T) {
	cases := []struct {
		name  string
		path  string
		role  models.Role
		form  url.Values
		field string
	}{
		{"course title", "/courses/create", models.RoleAdmin, url.Values{"title": {"     "}}, "title"},
		{"padded short title", "/courses/create", models.RoleAdmin, url.Values{"title": {"  ab  "}}, "title"},
		{"lesson title", "/courses/teacher/5/create/lesson", models.RoleTeacher, url.Values{"title": {"   "}, "content": {"Values and types in Go"}}, "title"},
		{"lesson content", "/courses/teacher/5/create/lesson", models.RoleTeacher, url.Values{"title": {"Variables"}, "content": {"          "}}, "content"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			w, vr := h.do(http.MethodPost, tc.path, tc.role, tc.form)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status: got=%d want=400", w.Code)
			}
			fieldErrors, _ := vr.Model["fieldErrors"].(map[string]interface{})
			if _, ok := fieldErrors[tc.field]; !ok {
				t.Fatalf("missing %s error: %v", tc.field, fieldErrors)
			}
			if h.serviceCalls() != 0 {
				t.Fatalf("service called on blank input")
			}
		})
	}
}

func TestMalformedNumberKeepsRawValue(t *testing.T) {
	h := newHarness(t)

	w, vr := h.do(http.MethodPost, "/courses/assign/teacher", models.RoleAdmin, url.Values{"courseId": {"abc"}, "teacherId": {"2"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d want=400", w.Code)
	}
	fieldErrors, _ := vr.Model["fieldErrors"].(map[string]interface{})
	if _, ok := fieldErrors["form"]; !ok {
		t.Fatalf("missing form-level error: %v", fieldErrors)
	}
	raw, _ := vr.Model["formValues"].(map[string]interface{})
	if got, _ := raw["courseId"].([]interface{}); len(got) != 1 || got[0] != "abc" {
		t.Fatalf("raw value not echoed: %v", raw)
	}
	if len(h.courses.calls) != 0 {
		t.Fatalf("service called: %v", h.courses.calls)
	}
}

func TestTeacherCoursesPagination(t *testing.T) {
	h := newHarness(t)
	for i := int64(1); i <= 25; i++ {
		h.courses.teacherCourses = append(h.courses.teacherCourses, &models.Course{ID: i, Title: fmt.Sprintf("Course %d", i)})
	}

	w, vr := h.do(http.MethodGet, "/courses/teacher?page=0&size=10", models.RoleTeacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got=%d", w.Code)
	}
	items, _ := vr.Model["teacherCourses"].([]interface{})
	if len(items) != 10 || vr.Model["currentPage"] != float64(1) || vr.Model["totalPages"] != float64(3) || vr.Model["totalElements"] != float64(25) {
		t.Fatalf("unexpected page model: %v", vr.Model)
	}

	_, vr = h.do(http.MethodGet, "/courses/teacher?page=3&size=10", models.RoleTeacher, nil)
	items, ok := vr.Model["teacherCourses"].([]interface{})
	if !ok || len(items) != 0 {
		t.Fatalf("page past the end should be an empty list, got %v", vr.Model["teacherCourses"])
	}

	w, vr = h.do(http.MethodGet, "/courses/teacher?page=1000000000000000000&size=10", models.RoleTeacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("huge page status: got=%d", w.Code)
	}
	items, ok = vr.Model["teacherCourses"].([]interface{})
	if !ok || len(items) != 0 {
		t.Fatalf("huge page should be an empty list, got %v", vr.Model["teacherCourses"])
	}
	if vr.Model["totalElements"] != float64(25) {
		t.Fatalf("huge page metadata: %v", vr.Model)
	}
}

func TestCreateLessonIgnoresForgedCourseID(t *testing.T) {
	h := newHarness(t)

	form := url.Values{"title": {"Variables"}, "content": {"Values and types in Go"}, "courseId": {"6"}}
	w, vr := h.do(http.MethodPost, "/courses/teacher/5/create/lesson", models.RoleTeacher, form)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", w.Code, w.Body.String())
	}
	if h.lessons.calls != 1 || h.lessons.lastCourseID != 5 {
		t.Fatalf("lesson created under course %d (%d calls)", h.lessons.lastCourseID, h.lessons.calls)
	}
	if vr.Model["success"] != controllers.MsgLessonCreated {
		t.Fatalf("success: got=%v", vr.Model["success"])
	}
}

func TestOwnershipDenied(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/courses/teacher/6/create/lesson", http.StatusForbidden},
		{http.MethodGet, "/courses/teacher/6/create/lesson", http.StatusForbidden},
		{http.MethodGet, "/courses/teacher/6", http.StatusForbidden},
		{http.MethodGet, "/courses/teacher/99", http.StatusForbidden},
		{http.MethodPost, "/courses/teacher/99/create/lesson", http.StatusForbidden},
		{http.MethodGet, "/courses/teacher/abc", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			h := newHarness(t)
			form := url.Values{"title": {"Variables"}, "content": {"Values and types in Go"}}
			w, _ := h.do(tc.method, tc.path, models.RoleTeacher, form)
			if w.Code != tc.want {
				t.Fatalf("status: got=%d want=%d", w.Code, tc.want)
			}
			if h.serviceCalls() != 0 {
				t.Fatalf("service called: courses=%v lessons=%d", h.courses.calls, h.lessons.calls)
			}
		})
	}
}

func TestBusinessErrorMessageIsShown(t *testing.T) {
	h := newHarness(t)
	msg := "Курс с таким названием уже существует"
	h.courses.createErr = apperrors.NewBusinessError(apperrors.ErrCourseAlreadyExists, msg)

	w, vr := h.do(http.MethodPost, "/courses/create", models.RoleAdmin, url.Values{"title": {"Go basics"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got=%d want=422", w.Code)
	}
	if vr.Model["error"] != msg {
		t.Fatalf("error: got=%v want=%q", vr.Model["error"], msg)
	}
	if _, ok := vr.Model["success"]; ok {
		t.Fatalf("success must not be set on failure")
	}
	form, _ := vr.Model["createCourseDto"].(map[string]interface{})
	if form["title"] != "Go basics" {
		t.Fatalf("input not retained: %v", form)
	}
}

func TestUnexpectedErrorIsNotSwallowed(t *testing.T) {
	h := newHarness(t)
	h.courses.assignErr = errors.New("connection reset by peer")

	w, vr := h.do(http.MethodPost, "/courses/assign", models.RoleAdmin, url.Values{"courseId": {"1"}, "studentIds": {"3", "4"}})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got=%d want=500", w.Code)
	}
	if vr.View != "" {
		t.Fatalf("infrastructure fault rendered as a view: %v", vr)
	}
}

func TestAssignTeacherSuccess(t *testing.T) {
	h := newHarness(t)

	w, vr := h.do(http.MethodPost, "/courses/assign/teacher", models.RoleAdmin, url.Values{"courseId": {"1"}, "teacherId": {"2"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", w.Code, w.Body.String())
	}
	if vr.View != views.AdminAssignTeacher || vr.Model["success"] != "Преподаватель был назначен успешно" {
		t.Fatalf("unexpected view: %+v", vr)
	}
	if h.courses.lastAssignTeacher != (dto.AssignTeacherDto{CourseID: 1, TeacherID: 2}) {
		t.Fatalf("service got %+v", h.courses.lastAssignTeacher)
	}
	form, _ := vr.Model["assignTeacherDto"].(map[string]interface{})
	if form["courseId"] != float64(0) || form["teacherId"] != float64(0) {
		t.Fatalf("form should be reset after success: %v", form)
	}
}

func TestStudentCourse(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(http.MethodGet, "/courses/3", models.RoleStudent, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("not enrolled: got=%d want=404", w.Code)
	}

	h.courses.studentCourse = &dto.StudentCourseDto{ID: 3, Title: "Go basics", Lessons: []*models.Lesson{}}
	w, vr := h.do(http.MethodGet, "/courses/3", models.RoleStudent, nil)
	if w.Code != http.StatusOK || vr.View != views.StudentCourse {
		t.Fatalf("status=%d view=%q", w.Code, vr.View)
	}
	course, _ := vr.Model["studentCourseDto"].(map[string]interface{})
	if course["title"] != "Go basics" {
		t.Fatalf("unexpected model: %v", vr.Model)
	}
}

func TestAdminPagesRenderEmptyForms(t *testing.T) {
	cases := map[string]struct {
		view string
		key  string
	}{
		"/courses/create":         {views.AdminCreateCourse, "createCourseDto"},
		"/courses/assign":         {views.AdminAssignCourse, "assignCourseDto"},
		"/courses/assign/teacher": {views.AdminAssignTeacher, "assignTeacherDto"},
	}

	for path, tc := range cases {
		t.Run(path, func(t *testing.T) {
			h := newHarness(t)
			w, vr := h.do(http.MethodGet, path, models.RoleAdmin, nil)
			if w.Code != http.StatusOK || vr.View != tc.view {
				t.Fatalf("status=%d view=%q", w.Code, vr.View)
			}
			if _, ok := vr.Model[tc.key]; !ok {
				t.Fatalf("missing %s in %v", tc.key, vr.Model)
			}
		})
	}
}
