package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/db"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/dberrors"
	"github.com/yigit/lms/internal/pkg/logger"
)

const courseTitleKey = "courses_title_key"

// CourseRepository handles course database operations
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db, sb: statementBuilder()}
}

// Create inserts a new course and fills in its id and timestamps.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	sql, args, err := r.sb.Insert("courses").
		Columns("title", "description", "teacher_id").
		Values(course.Title, course.Description, course.TeacherID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return 0, fmt.Errorf("failed to build create course query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, courseTitleKey) {
			return 0, apperrors.ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Str("title", course.Title).Msg("Error executing create course query")
		return 0, fmt.Errorf("error creating course: %w", err)
	}
	return course.ID, nil
}

func (r *CourseRepository) getByIDQuery(id int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.title", "c.description", "c.teacher_id", "c.created_at", "c.updated_at",
		"t.email", "t.first_name", "t.last_name", "t.role", "t.created_at",
	).
		From("courses c").
		LeftJoin("users t ON t.id = c.teacher_id").
		Where(squirrel.Eq{"c.id": id})
}

// GetByID retrieves a course with its teacher, if one is assigned.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.getByIDQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	var (
		course                     models.Course
		email, firstName, lastName *string
		role                       *models.Role
		teacherCreatedAt           *time.Time
	)
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&course.ID, &course.Title, &course.Description, &course.TeacherID, &course.CreatedAt, &course.UpdatedAt,
		&email, &firstName, &lastName, &role, &teacherCreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}

	if course.TeacherID != nil && email != nil {
		course.Teacher = &models.User{
			ID:        *course.TeacherID,
			Email:     *email,
			FirstName: deref(firstName),
			LastName:  deref(lastName),
		}
		if role != nil {
			course.Teacher.Role = *role
		}
		if teacherCreatedAt != nil {
			course.Teacher.CreatedAt = *teacherCreatedAt
		}
	}
	return &course, nil
}

func (r *CourseRepository) listByTeacherQuery(teacherID int64, req dto.PageRequest) squirrel.SelectBuilder {
	return r.sb.Select("id", "title", "description", "teacher_id", "created_at", "updated_at").
		From("courses").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		OrderBy("id ASC").
		Limit(req.Limit()).
		Offset(req.Offset())
}

// ListByTeacher returns one page of the courses taught by teacherID and the
// total number of such courses.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID int64, req dto.PageRequest) ([]*models.Course, int64, error) {
	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("courses").Where(squirrel.Eq{"teacher_id": teacherID}))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.listByTeacherQuery(teacherID, req).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list teacher courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("teacherID", teacherID).Msg("Error executing list teacher courses query")
		return nil, 0, fmt.Errorf("error querying teacher courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c := &models.Course{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.TeacherID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating course rows: %w", err)
	}
	return courses, total, nil
}

func (r *CourseRepository) listByStudentQuery(studentID int64, req dto.PageRequest) squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.title",
		"COALESCE(TRIM(t.first_name || ' ' || t.last_name), '')",
		"(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id)",
	).
		From("course_students cs").
		Join("courses c ON c.id = cs.course_id").
		LeftJoin("users t ON t.id = c.teacher_id").
		Where(squirrel.Eq{"cs.student_id": studentID}).
		OrderBy("c.id ASC").
		Limit(req.Limit()).
		Offset(req.Offset())
}

// ListByStudent returns one page of the courses a student is enrolled in
// and the total enrolment count.
func (r *CourseRepository) ListByStudent(ctx context.Context, studentID int64, req dto.PageRequest) ([]dto.StudentCourseSummary, int64, error) {
	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("course_students").Where(squirrel.Eq{"student_id": studentID}))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.listByStudentQuery(studentID, req).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list student courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing list student courses query")
		return nil, 0, fmt.Errorf("error querying student courses: %w", err)
	}
	defer rows.Close()

	courses := []dto.StudentCourseSummary{}
	for rows.Next() {
		var s dto.StudentCourseSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.TeacherName, &s.LessonCount); err != nil {
			return nil, 0, fmt.Errorf("error scanning student course row: %w", err)
		}
		courses = append(courses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating student course rows: %w", err)
	}
	return courses, total, nil
}

func (r *CourseRepository) addStudentsQuery(courseID int64, studentIDs []int64) squirrel.InsertBuilder {
	q := r.sb.Insert("course_students").Columns("course_id", "student_id")
	for _, id := range studentIDs {
		q = q.Values(courseID, id)
	}
	return q.Suffix("ON CONFLICT (course_id, student_id) DO NOTHING")
}

// AddStudents enrols students into a course. Existing enrolments are left
// untouched; the number of new enrolments is returned.
func (r *CourseRepository) AddStudents(ctx context.Context, courseID int64, studentIDs []int64) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}

	var added int64
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		lockSQL, lockArgs, err := r.sb.Select("id").From("courses").Where(squirrel.Eq{"id": courseID}).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build course lock query: %w", err)
		}
		var id int64
		if err := tx.QueryRow(ctx, lockSQL, lockArgs...).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrCourseNotFound
			}
			return fmt.Errorf("error locking course: %w", err)
		}

		sql, args, err := r.addStudentsQuery(courseID, studentIDs).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build enrol students query: %w", err)
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error enrolling students: %w", err)
		}
		added = tag.RowsAffected()
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrCourseNotFound) {
			logger.Error().Err(err).Int64("courseID", courseID).Msg("Error adding students to course")
		}
		return 0, err
	}
	return added, nil
}

// SetTeacher replaces the teacher of a course.
func (r *CourseRepository) SetTeacher(ctx context.Context, courseID, teacherID int64) error {
	sql, args, err := r.sb.Update("courses").
		Set("teacher_id", teacherID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set teacher query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Int64("teacherID", teacherID).Msg("Error setting course teacher")
		return fmt.Errorf("error setting course teacher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// IsStudentEnrolled reports whether studentID is enrolled in courseID.
func (r *CourseRepository) IsStudentEnrolled(ctx context.Context, courseID, studentID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("course_students").
		Where(squirrel.Eq{"course_id": courseID, "student_id": studentID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build enrolment query: %w", err)
	}

	var enrolled bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&enrolled); err != nil {
		return false, fmt.Errorf("error checking enrolment: %w", err)
	}
	return enrolled, nil
}

// ListStudents returns the students enrolled in a course ordered by name.
func (r *CourseRepository) ListStudents(ctx context.Context, courseID int64) ([]*models.User, error) {
	sql, args, err := r.sb.Select("u.id", "u.email", "u.first_name", "u.last_name", "u.role", "u.created_at").
		From("course_students cs").
		Join("users u ON u.id = cs.student_id").
		Where(squirrel.Eq{"cs.course_id": courseID}).
		OrderBy("u.last_name ASC", "u.first_name ASC", "u.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing list students query")
		return nil, fmt.Errorf("error querying course students: %w", err)
	}
	defer rows.Close()

	students := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

func (r *CourseRepository) count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count query")
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return total, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
