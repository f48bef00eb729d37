package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/helpers"
	"github.com/yigit/lms/internal/pkg/logger"
)

// User facing messages of course business errors.
const (
	MsgCourseNotFound      = "Курс не найден"
	MsgCourseAlreadyExists = "Курс с таким названием уже существует"
	MsgTeacherNotFound     = "Преподаватель не найден"
	MsgUserNotTeacher      = "Пользователь не является преподавателем"
)

// CourseService defines the interface for course-related operations
type CourseService interface {
	Create(ctx context.Context, req dto.CreateCourseDto) (*models.Course, error)
	Assign(ctx context.Context, req dto.AssignCourseDto) error
	AssignTeacher(ctx context.Context, req dto.AssignTeacherDto) error
	GetTeacherCourse(ctx context.Context, courseID int64) (*dto.TeacherCourseResponse, error)
	GetTeacherCourses(ctx context.Context, teacherID int64, req dto.PageRequest) (*dto.Page[*models.Course], error)
	GetStudentCourse(ctx context.Context, courseID, studentID int64) (*dto.StudentCourseDto, error)
	GetStudentCourses(ctx context.Context, studentID int64, req dto.PageRequest) (*dto.Page[dto.StudentCourseSummary], error)
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	courses CourseStore
	lessons LessonStore
	users   UserStore
}

// NewCourseService creates a new course service instance
func NewCourseService(courses CourseStore, lessons LessonStore, users UserStore) CourseService {
	return &courseServiceImpl{
		courses: courses,
		lessons: lessons,
		users:   users,
	}
}

// Create stores a new course without a teacher.
func (s *courseServiceImpl) Create(ctx context.Context, req dto.CreateCourseDto) (*models.Course, error) {
	course := &models.Course{Title: strings.TrimSpace(req.Title)}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		course.Description = &desc
	}

	if _, err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, apperrors.ErrCourseAlreadyExists) {
			return nil, apperrors.NewBusinessError(err, MsgCourseAlreadyExists).WithCode(string(dto.ErrorCodeResourceAlreadyExists))
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	logger.Info().Int64("courseID", course.ID).Str("title", course.Title).Msg("Course created")
	return course, nil
}

// Assign enrols the listed students. Every id must belong to a student;
// repeated ids and existing enrolments are ignored.
func (s *courseServiceImpl) Assign(ctx context.Context, req dto.AssignCourseDto) error {
	ids := uniqueIDs(req.StudentIDs)

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	byID := make(map[int64]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return apperrors.NewBusinessError(apperrors.ErrUserNotFound, fmt.Sprintf("Студент с id %d не найден", id)).
				WithCode(string(dto.ErrorCodeResourceNotFound))
		}
		if u.Role != models.RoleStudent {
			return apperrors.NewBusinessError(apperrors.ErrUserNotStudent, fmt.Sprintf("Пользователь с id %d не является студентом", id))
		}
	}

	added, err := s.courses.AddStudents(ctx, req.CourseID, ids)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return apperrors.NewBusinessError(err, MsgCourseNotFound).WithCode(string(dto.ErrorCodeResourceNotFound))
		}
		return fmt.Errorf("assign students: %w", err)
	}

	logger.Info().Int64("courseID", req.CourseID).Int("requested", len(ids)).Int64("added", added).Msg("Students assigned to course")
	return nil
}

// AssignTeacher makes the given teacher the owner of the course, replacing
// any previous teacher.
func (s *courseServiceImpl) AssignTeacher(ctx context.Context, req dto.AssignTeacherDto) error {
	teacher, err := s.users.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.NewBusinessError(err, MsgTeacherNotFound).WithCode(string(dto.ErrorCodeResourceNotFound))
		}
		return fmt.Errorf("load teacher: %w", err)
	}
	if teacher.Role != models.RoleTeacher {
		return apperrors.NewBusinessError(apperrors.ErrUserNotTeacher, MsgUserNotTeacher)
	}

	if err := s.courses.SetTeacher(ctx, req.CourseID, req.TeacherID); err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return apperrors.NewBusinessError(err, MsgCourseNotFound).WithCode(string(dto.ErrorCodeResourceNotFound))
		}
		return fmt.Errorf("assign teacher: %w", err)
	}

	logger.Info().Int64("courseID", req.CourseID).Int64("teacherID", req.TeacherID).Msg("Teacher assigned to course")
	return nil
}

// GetTeacherCourse returns a course with its lessons and enrolled students.
func (s *courseServiceImpl) GetTeacherCourse(ctx context.Context, courseID int64) (*dto.TeacherCourseResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	students, err := s.courses.ListStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return &dto.TeacherCourseResponse{
		Course:   course,
		Lessons:  lessons,
		Students: students,
	}, nil
}

func (s *courseServiceImpl) GetTeacherCourses(ctx context.Context, teacherID int64, req dto.PageRequest) (*dto.Page[*models.Course], error) {
	req = helpers.NormalizePageRequest(req)

	courses, total, err := s.courses.ListByTeacher(ctx, teacherID, req)
	if err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return helpers.NewPage(courses, req, total), nil
}

// GetStudentCourse returns a course page for an enrolled student. Courses the
// student is not enrolled in are reported as not found.
func (s *courseServiceImpl) GetStudentCourse(ctx context.Context, courseID, studentID int64) (*dto.StudentCourseDto, error) {
	enrolled, err := s.courses.IsStudentEnrolled(ctx, courseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check enrolment: %w", err)
	}
	if !enrolled {
		return nil, apperrors.ErrCourseNotFound
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	res := &dto.StudentCourseDto{
		ID:          course.ID,
		Title:       course.Title,
		TeacherName: course.Teacher.FullName(),
		Lessons:     lessons,
	}
	if course.Description != nil {
		res.Description = *course.Description
	}
	return res, nil
}

func (s *courseServiceImpl) GetStudentCourses(ctx context.Context, studentID int64, req dto.PageRequest) (*dto.Page[dto.StudentCourseSummary], error) {
	req = helpers.NormalizePageRequest(req)

	courses, total, err := s.courses.ListByStudent(ctx, studentID, req)
	if err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return helpers.NewPage(courses, req, total), nil
}

// uniqueIDs drops repeated ids keeping first occurrence order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
