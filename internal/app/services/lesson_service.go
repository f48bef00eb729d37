package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/logger"
)

// LessonService defines the interface for lesson-related operations
type LessonService interface {
	Create(ctx context.Context, req dto.CreateLessonDto, courseID int64) (*models.Lesson, error)
}

type lessonServiceImpl struct {
	lessons LessonStore
}

// NewLessonService creates a new lesson service instance
func NewLessonService(lessons LessonStore) LessonService {
	return &lessonServiceImpl{lessons: lessons}
}

// Create adds a lesson to courseID. The course comes from the caller, never
// from the submitted form.
func (s *lessonServiceImpl) Create(ctx context.Context, req dto.CreateLessonDto, courseID int64) (*models.Lesson, error) {
	lesson := &models.Lesson{
		CourseID: courseID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
	}

	if _, err := s.lessons.Create(ctx, lesson); err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, apperrors.NewBusinessError(err, MsgCourseNotFound).WithCode(string(dto.ErrorCodeResourceNotFound))
		}
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	logger.Info().Int64("courseID", courseID).Int64("lessonID", lesson.ID).Msg("Lesson created")
	return lesson, nil
}
