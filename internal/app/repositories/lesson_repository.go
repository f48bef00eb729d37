package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/dberrors"
	"github.com/yigit/lms/internal/pkg/logger"
)

const lessonCourseFK = "lessons_course_id_fkey"

// LessonRepository handles lesson database operations
type LessonRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLessonRepository creates a new LessonRepository
func NewLessonRepository(db *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{db: db, sb: statementBuilder()}
}

// Create inserts a lesson and fills in its id and timestamps.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) (int64, error) {
	sql, args, err := r.sb.Insert("lessons").
		Columns("course_id", "title", "content").
		Values(lesson.CourseID, lesson.Title, lesson.Content).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create lesson SQL")
		return 0, fmt.Errorf("failed to build create lesson query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err, lessonCourseFK) {
			return 0, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", lesson.CourseID).Msg("Error executing create lesson query")
		return 0, fmt.Errorf("error creating lesson: %w", err)
	}
	return lesson.ID, nil
}

func (r *LessonRepository) listByCourseQuery(courseID int64) squirrel.SelectBuilder {
	return r.sb.Select("id", "course_id", "title", "content", "created_at", "updated_at").
		From("lessons").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("created_at ASC", "id ASC")
}

// ListByCourse returns the lessons of a course in creation order.
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Lesson, error) {
	sql, args, err := r.listByCourseQuery(courseID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list lessons query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing list lessons query")
		return nil, fmt.Errorf("error querying lessons: %w", err)
	}
	defer rows.Close()

	lessons := []*models.Lesson{}
	for rows.Next() {
		l := &models.Lesson{}
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning lesson row: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson rows: %w", err)
	}
	return lessons, nil
}
