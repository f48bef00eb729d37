// Command devtoken mints an access token for local testing. Sign-in is
// handled by an external identity provider; this signs with the same secret.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/config"
	"github.com/yigit/lms/internal/pkg/auth"
	"github.com/yigit/lms/internal/pkg/helpers"
	"github.com/yigit/lms/internal/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "devtoken",
		Usage: "mint a signed access token for a user id and role set",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "configs/config.yaml", Usage: "path to the config file"},
			&cli.Int64Flag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "user id"},
			&cli.StringFlag{Name: "email", Usage: "email claim"},
			&cli.StringSliceFlag{Name: "role", Aliases: []string{"r"}, Required: true, Usage: "TEACHER, STUDENT or ADMIN; repeatable"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime, defaults to the configured expiration"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("devtoken failed")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	principal, err := principalFromFlags(c.Int64("user"), c.String("email"), c.StringSlice("role"))
	if err != nil {
		return err
	}

	ttl := c.Duration("ttl")
	if ttl <= 0 {
		ttl = helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: ttl,
		TokenIssuer:    cfg.JWT.Issuer,
	})
	token, expiresAt, err := jwtService.GenerateToken(principal)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Fprintln(c.App.Writer, token)
	logger.Info().Int64("userID", principal.UserID).Time("expiresAt", expiresAt).Msg("Token issued")
	return nil
}

func principalFromFlags(userID int64, email string, roles []string) (*models.Principal, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("user id must be positive, got %d", userID)
	}
	p := &models.Principal{UserID: userID, Email: email}
	for _, r := range roles {
		role := models.Role(strings.ToUpper(strings.TrimSpace(r)))
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q", r)
		}
		p.Roles = append(p.Roles, role)
	}
	return p, nil
}
