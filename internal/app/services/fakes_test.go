package services

import (
	"context"
	"sort"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/pkg/apperrors"
)

type memStore struct {
	courses    map[int64]*models.Course
	lessons    map[int64][]*models.Lesson
	users      map[int64]*models.User
	enrolments map[int64]map[int64]bool
	nextID     int64

	addStudentsCalls int
	failWith         error
}

func newMemStore() *memStore {
	return &memStore{
		courses:    map[int64]*models.Course{},
		lessons:    map[int64][]*models.Lesson{},
		users:      map[int64]*models.User{},
		enrolments: map[int64]map[int64]bool{},
	}
}

func (m *memStore) addUser(id int64, role models.Role, first, last string) {
	m.users[id] = &models.User{ID: id, Role: role, FirstName: first, LastName: last}
}

func (m *memStore) addCourse(id int64, title string, teacherID *int64) *models.Course {
	c := &models.Course{ID: id, Title: title, TeacherID: teacherID}
	m.courses[id] = c
	if id >= m.nextID {
		m.nextID = id
	}
	return c
}

// courseStore

type courseStore struct{ *memStore }

func (s courseStore) Create(_ context.Context, course *models.Course) (int64, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	for _, c := range s.courses {
		if c.Title == course.Title {
			return 0, apperrors.ErrCourseAlreadyExists
		}
	}
	s.nextID++
	course.ID = s.nextID
	s.courses[course.ID] = course
	return course.ID, nil
}

func (s courseStore) GetByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	cp := *c
	if c.TeacherID != nil {
		cp.Teacher = s.users[*c.TeacherID]
	}
	return &cp, nil
}

func (s courseStore) sortedCourses(keep func(*models.Course) bool) []*models.Course {
	var out []*models.Course
	for _, c := range s.courses {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func pageOf[T any](all []T, req dto.PageRequest) []T {
	start := int(req.Offset())
	if start >= len(all) {
		return []T{}
	}
	end := start + int(req.Limit())
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func (s courseStore) ListByTeacher(_ context.Context, teacherID int64, req dto.PageRequest) ([]*models.Course, int64, error) {
	all := s.sortedCourses(func(c *models.Course) bool { return c.IsTaughtBy(teacherID) })
	return pageOf(all, req), int64(len(all)), nil
}

func (s courseStore) ListByStudent(_ context.Context, studentID int64, req dto.PageRequest) ([]dto.StudentCourseSummary, int64, error) {
	var all []dto.StudentCourseSummary
	for _, c := range s.sortedCourses(func(c *models.Course) bool { return s.enrolments[c.ID][studentID] }) {
		all = append(all, dto.StudentCourseSummary{ID: c.ID, Title: c.Title, LessonCount: len(s.lessons[c.ID])})
	}
	return pageOf(all, req), int64(len(all)), nil
}

func (s courseStore) AddStudents(_ context.Context, courseID int64, studentIDs []int64) (int64, error) {
	s.addStudentsCalls++
	if _, ok := s.courses[courseID]; !ok {
		return 0, apperrors.ErrCourseNotFound
	}
	if s.enrolments[courseID] == nil {
		s.enrolments[courseID] = map[int64]bool{}
	}
	var added int64
	for _, id := range studentIDs {
		if !s.enrolments[courseID][id] {
			s.enrolments[courseID][id] = true
			added++
		}
	}
	return added, nil
}

func (s courseStore) SetTeacher(_ context.Context, courseID, teacherID int64) error {
	c, ok := s.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	c.TeacherID = &teacherID
	return nil
}

func (s courseStore) IsStudentEnrolled(_ context.Context, courseID, studentID int64) (bool, error) {
	return s.enrolments[courseID][studentID], nil
}

func (s courseStore) ListStudents(_ context.Context, courseID int64) ([]*models.User, error) {
	out := []*models.User{}
	for id := range s.enrolments[courseID] {
		out = append(out, s.users[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// lessonStore

type lessonStore struct{ *memStore }

func (s lessonStore) Create(_ context.Context, lesson *models.Lesson) (int64, error) {
	if _, ok := s.courses[lesson.CourseID]; !ok {
		return 0, apperrors.ErrCourseNotFound
	}
	s.nextID++
	lesson.ID = s.nextID
	s.lessons[lesson.CourseID] = append(s.lessons[lesson.CourseID], lesson)
	return lesson.ID, nil
}

func (s lessonStore) ListByCourse(_ context.Context, courseID int64) ([]*models.Lesson, error) {
	return append([]*models.Lesson{}, s.lessons[courseID]...), nil
}

// userStore

type userStore struct{ *memStore }

func (s userStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (s userStore) GetByIDs(_ context.Context, ids []int64) ([]*models.User, error) {
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newServices(m *memStore) (CourseService, LessonService) {
	return NewCourseService(courseStore{m}, lessonStore{m}, userStore{m}), NewLessonService(lessonStore{m})
}
