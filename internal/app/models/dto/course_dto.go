package dto

import "github.com/yigit/lms/internal/app/models"

// --- Form DTOs ---

// CreateCourseDto is the admin "create course" form.
type CreateCourseDto struct {
	Title       string `form:"title" json:"title" validate:"required,notblank,min=3,max=255" example:"Основы программирования"`
	Description string `form:"description" json:"description" validate:"max=2000" example:"Вводный курс"`
}

// AssignCourseDto enrols one or more students into a course.
type AssignCourseDto struct {
	CourseID   int64   `form:"courseId" json:"courseId" validate:"required,gt=0" example:"1"`
	StudentIDs []int64 `form:"studentIds" json:"studentIds" validate:"required,min=1,max=100,dive,gt=0" example:"3,4"`
}

// AssignTeacherDto sets the teacher of a course.
type AssignTeacherDto struct {
	CourseID  int64 `form:"courseId" json:"courseId" validate:"required,gt=0" example:"1"`
	TeacherID int64 `form:"teacherId" json:"teacherId" validate:"required,gt=0" example:"2"`
}

// --- View DTOs ---

// TeacherCourseResponse is what a teacher sees on the course detail page.
type TeacherCourseResponse struct {
	Course   *models.Course   `json:"course"`
	Lessons  []*models.Lesson `json:"lessons"`
	Students []*models.User   `json:"students"`
}

// StudentCourseDto is the course detail page of an enrolled student.
type StudentCourseDto struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	TeacherName string           `json:"teacherName,omitempty"`
	Lessons     []*models.Lesson `json:"lessons"`
}

// StudentCourseSummary is one row of the student's course list.
type StudentCourseSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	TeacherName string `json:"teacherName,omitempty"`
	LessonCount int    `json:"lessonCount"`
}
