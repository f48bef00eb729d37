package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/lms/internal/app/models"
	appRepos "github.com/yigit/lms/internal/app/repositories"
	"github.com/yigit/lms/internal/pkg/apperrors"
)

// DemoUsers are created for local runs. Accounts normally come from the
// external identity system; ids printed here can be fed to cmd/devtoken.
var DemoUsers = []appModels.User{
	{Email: "admin@lms.local", FirstName: "Admin", LastName: "User", Role: appModels.RoleAdmin},
	{Email: "teacher@lms.local", FirstName: "Анна", LastName: "Петрова", Role: appModels.RoleTeacher},
	{Email: "student@lms.local", FirstName: "Иван", LastName: "Иванов", Role: appModels.RoleStudent},
}

const demoCourseTitle = "Основы программирования"

// CreateDefaultData creates the demo users and one course taught by the demo
// teacher with the demo student enrolled. It is safe to run repeatedly.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	courseRepo := appRepos.NewCourseRepository(dbPool)

	lgr.Info().Msg("Checking/Creating demo data (users/course)...")
	var finalErr error

	ids := make(map[appModels.Role]int64, len(DemoUsers))
	for i := range DemoUsers {
		u := DemoUsers[i]
		id, err := userRepo.EnsureUser(ctx, &u)
		if err != nil {
			lgr.Error().Err(err).Str("email", u.Email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		ids[u.Role] = id
		lgr.Info().Int64("userID", id).Str("email", u.Email).Str("role", string(u.Role)).Msg("Demo user ready")
	}

	teacherID, student := ids[appModels.RoleTeacher], ids[appModels.RoleStudent]
	if teacherID == 0 || student == 0 {
		return finalErr
	}

	description := "Демонстрационный курс"
	course := &appModels.Course{Title: demoCourseTitle, Description: &description}
	courseID, err := courseRepo.Create(ctx, course)
	if errors.Is(err, apperrors.ErrCourseAlreadyExists) {
		lgr.Info().Str("title", demoCourseTitle).Msg("Demo course already exists")
		return finalErr
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo course")
		return errors.Join(finalErr, err)
	}

	if err := courseRepo.SetTeacher(ctx, courseID, teacherID); err != nil {
		lgr.Error().Err(err).Msg("Error assigning demo teacher")
		finalErr = errors.Join(finalErr, err)
	}
	if _, err := courseRepo.AddStudents(ctx, courseID, []int64{student}); err != nil {
		lgr.Error().Err(err).Msg("Error enrolling demo student")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Int64("courseID", courseID).Msg("Demo course created")
	return finalErr
}
