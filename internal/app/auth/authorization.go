package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/logger"
)

// CourseLookup loads a course by id. *repositories.CourseRepository
// satisfies it.
type CourseLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// AuthorizationService handles resource-level authorization. Role checks
// happen earlier, in the route middleware.
type AuthorizationService struct {
	courses CourseLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(courses CourseLookup) *AuthorizationService {
	return &AuthorizationService{courses: courses}
}

// CanModifyCourse checks if the teacher is the one assigned to the course.
func (s *AuthorizationService) CanModifyCourse(ctx context.Context, courseID, teacherID int64) (bool, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return false, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error getting course by ID in CanModifyCourse")
		return false, fmt.Errorf("failed to check course ownership: %w", err)
	}
	return course.IsTaughtBy(teacherID), nil
}

// ValidateCourseOwnership validates if the teacher owns the course or returns
// an error. Unknown and foreign courses both yield apperrors.ErrPermissionDenied
// so a teacher cannot tell which course ids exist.
func (s *AuthorizationService) ValidateCourseOwnership(ctx context.Context, courseID, teacherID int64) error {
	canModify, err := s.CanModifyCourse(ctx, courseID, teacherID)
	if errors.Is(err, apperrors.ErrCourseNotFound) {
		logger.Warn().Int64("courseID", courseID).Int64("teacherID", teacherID).Msg("Ownership check on unknown course")
		return apperrors.ErrPermissionDenied
	}
	if err != nil {
		return err
	}
	if !canModify {
		logger.Warn().Int64("courseID", courseID).Int64("teacherID", teacherID).Msg("Teacher does not own course")
		return apperrors.ErrPermissionDenied
	}
	return nil
}
