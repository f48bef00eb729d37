package services

import (
	"context"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
)

// Services defined in this package:
// - CourseService: course creation, enrolment, teacher assignment and course pages
// - LessonService: lesson creation inside a course

// CourseStore is the persistence used by the course service.
// *repositories.CourseRepository satisfies it.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	ListByTeacher(ctx context.Context, teacherID int64, req dto.PageRequest) ([]*models.Course, int64, error)
	ListByStudent(ctx context.Context, studentID int64, req dto.PageRequest) ([]dto.StudentCourseSummary, int64, error)
	AddStudents(ctx context.Context, courseID int64, studentIDs []int64) (int64, error)
	SetTeacher(ctx context.Context, courseID, teacherID int64) error
	IsStudentEnrolled(ctx context.Context, courseID, studentID int64) (bool, error)
	ListStudents(ctx context.Context, courseID int64) ([]*models.User, error)
}

// LessonStore is the persistence used by the lesson service.
type LessonStore interface {
	Create(ctx context.Context, lesson *models.Lesson) (int64, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Lesson, error)
}

// UserStore reads accounts owned by the external identity system.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
}
